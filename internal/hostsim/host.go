package hostsim

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/five82/typetune/internal/logging"
	"github.com/five82/typetune/internal/protocol"
)

// Option customises a Host.
type Option func(*Host)

// WithSettings sets the toggles the host starts with.
func WithSettings(s protocol.Settings) Option {
	return func(h *Host) { h.settings = s }
}

// WithExportDelay delays each export-result by the duration returned for
// its format. Uneven delays make answers arrive out of request order.
func WithExportDelay(delay func(protocol.ExportFormat) time.Duration) Option {
	return func(h *Host) { h.exportDelay = delay }
}

// Host is a scripted stand-in for the design tool's engine. It speaks the
// host side of the envelope protocol but computes nothing: results are
// pushed by the caller and export code is rendered from them.
type Host struct {
	conn        io.ReadWriteCloser
	exportDelay func(protocol.ExportFormat) time.Duration

	writeMu sync.Mutex

	mu        sync.Mutex
	settings  protocol.Settings
	selection []protocol.ResultEntry
	selected  bool
	received  []protocol.Outbound
	applied   Applied

	wg sync.WaitGroup
}

// Applied counts apply requests the host has handled.
type Applied struct {
	Selected int
	Page     int
}

// New returns a host speaking over conn. Call Run to start serving.
func New(conn io.ReadWriteCloser, opts ...Option) *Host {
	h := &Host{conn: conn}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run answers panel requests until the stream ends or ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = h.conn.Close() })
	defer stop()
	defer h.wg.Wait()

	scanner := bufio.NewScanner(h.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		msg, err := protocol.DecodeOutbound(scanner.Bytes())
		if err != nil {
			logging.Debug("host dropped frame", logging.Err(err))
			continue
		}
		h.mu.Lock()
		h.received = append(h.received, msg)
		h.mu.Unlock()
		if err := h.handle(ctx, msg); err != nil {
			if closedErr(err) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil && !closedErr(err) && ctx.Err() == nil {
		return fmt.Errorf("host read: %w", err)
	}
	return nil
}

func closedErr(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

func (h *Host) handle(ctx context.Context, msg protocol.Outbound) error {
	switch m := msg.(type) {
	case protocol.Init:
		h.mu.Lock()
		settings := h.settings
		h.mu.Unlock()
		if err := h.Push(protocol.SettingsMessage{Settings: settings}); err != nil {
			return err
		}
		return h.pushSelection()
	case protocol.UpdateSettings:
		h.mu.Lock()
		h.settings = m.Settings.Apply(h.settings)
		settings := h.settings
		h.mu.Unlock()
		return h.Push(protocol.SettingsMessage{Settings: settings})
	case protocol.ApplySelected:
		h.apply(false)
		return h.pushSelection()
	case protocol.ApplyPage:
		h.apply(true)
		return h.pushSelection()
	case protocol.ExportCode:
		return h.export(ctx, m)
	default:
		return nil
	}
}

// apply marks the optimized values as the layers' current ones.
func (h *Host) apply(page bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if page {
		h.applied.Page++
	} else {
		h.applied.Selected++
	}
	for i, r := range h.selection {
		h.selection[i].Before = protocol.BeforeValues{
			LineHeight:    fmt.Sprintf("%gpx", r.After.LineHeight),
			LetterSpacing: fmt.Sprintf("%g%%", r.After.LetterSpacingPercent),
		}
	}
}

func (h *Host) export(ctx context.Context, req protocol.ExportCode) error {
	h.mu.Lock()
	entry, ok := find(h.selection, req.NodeID)
	h.mu.Unlock()
	if !ok {
		logging.Warn("host export for unknown node", logging.String("node_id", req.NodeID))
		return nil
	}
	res := protocol.ExportResult{Code: Render(req.Format, entry), RequestID: req.RequestID}

	var delay time.Duration
	if h.exportDelay != nil {
		delay = h.exportDelay(req.Format)
	}
	if delay <= 0 {
		return h.Push(res)
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			if err := h.Push(res); err != nil {
				logging.Debug("host delayed export failed", logging.Err(err))
			}
		}
	}()
	return nil
}

// Select replaces the host selection and pushes its results. An empty
// call models a selection with no eligible text layers.
func (h *Host) Select(results ...protocol.ResultEntry) error {
	h.mu.Lock()
	h.selection = append([]protocol.ResultEntry{}, results...)
	h.selected = true
	h.mu.Unlock()
	return h.pushSelection()
}

// Deselect clears the selection and pushes no-selection.
func (h *Host) Deselect() error {
	h.mu.Lock()
	h.selection = nil
	h.selected = false
	h.mu.Unlock()
	return h.Push(protocol.NoSelection{})
}

func (h *Host) pushSelection() error {
	h.mu.Lock()
	selected := h.selected
	results := append([]protocol.ResultEntry{}, h.selection...)
	h.mu.Unlock()
	if !selected {
		return h.Push(protocol.NoSelection{})
	}
	return h.Push(protocol.CalculationResults{Results: results})
}

// Push writes one envelope to the panel.
func (h *Host) Push(msg protocol.Inbound) error {
	data, err := protocol.EncodeInbound(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if _, err := h.conn.Write(data); err != nil {
		return fmt.Errorf("host write %s: %w", msg.Type(), err)
	}
	return nil
}

// Settings returns the host's current toggles.
func (h *Host) Settings() protocol.Settings {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settings
}

// Received returns every request decoded so far, in arrival order.
func (h *Host) Received() []protocol.Outbound {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]protocol.Outbound, len(h.received))
	copy(out, h.received)
	return out
}

// Applied returns the apply counters.
func (h *Host) Applied() Applied {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.applied
}

// Close closes the host end of the stream.
func (h *Host) Close() error {
	return h.conn.Close()
}

func find(results []protocol.ResultEntry, nodeID string) (protocol.ResultEntry, bool) {
	for _, r := range results {
		if r.NodeID == nodeID {
			return r, true
		}
	}
	return protocol.ResultEntry{}, false
}
