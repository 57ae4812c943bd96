package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/five82/typetune/internal/logging"
	"github.com/five82/typetune/internal/metrics"
	"github.com/five82/typetune/internal/protocol"
)

const defaultMaxFrame = 1 << 20

// Handler receives one inbound envelope. Handlers run on the bridge's read
// goroutine, one envelope at a time, in arrival order.
type Handler func(protocol.Inbound)

// Sender is the outbound half of the bridge.
type Sender interface {
	Send(msg protocol.Outbound)
}

// Ensure Bridge implements Sender at compile time.
var _ Sender = (*Bridge)(nil)

// Option customises a Bridge.
type Option func(*Bridge)

// WithMaxFrameSize caps the size of a single inbound frame. Larger frames
// are dropped.
func WithMaxFrameSize(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.maxFrame = n
		}
	}
}

type registration struct {
	id     uint64
	fn     Handler
	active atomic.Bool
	// calling is held for reading from the active check until fn returns.
	calling sync.RWMutex
	// running is set while fn executes on the reader goroutine.
	running atomic.Bool
}

// invoke calls fn unless the registration was withdrawn.
func (r *registration) invoke(msg protocol.Inbound) {
	r.calling.RLock()
	defer r.calling.RUnlock()
	if !r.active.Load() {
		return
	}
	r.running.Store(true)
	defer r.running.Store(false)
	r.fn(msg)
}

// withdraw deactivates the registration and waits for a call that passed
// the active check but has not started fn yet. A call already inside fn,
// including the one unregistering itself, is not waited for.
func (r *registration) withdraw() {
	r.active.Store(false)
	if r.running.Load() {
		return
	}
	r.calling.Lock()
	r.calling.Unlock()
}

// Bridge moves envelopes between the panel and the host over one stream.
type Bridge struct {
	conn     io.ReadWriteCloser
	maxFrame int

	mu       sync.Mutex
	handlers []*registration
	nextID   uint64
	pending  []protocol.Outbound
	wake     chan struct{}

	closed     chan struct{}
	closeOnce  sync.Once
	writerDone chan struct{}
}

// New wraps conn and starts the writer. Call Run to start reading.
func New(conn io.ReadWriteCloser, opts ...Option) *Bridge {
	b := &Bridge{
		conn:       conn,
		maxFrame:   defaultMaxFrame,
		wake:       make(chan struct{}, 1),
		closed:     make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.writeLoop()
	return b
}

// Send queues msg for the host and returns immediately. There is no
// acknowledgement; encode and write failures are logged and counted.
func (b *Bridge) Send(msg protocol.Outbound) {
	if msg == nil {
		return
	}
	select {
	case <-b.closed:
		logging.Debug("send after close", logging.String("type", msg.Type()))
		metrics.RecordSendError()
		return
	default:
	}

	b.mu.Lock()
	b.pending = append(b.pending, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// OnMessage registers h for every subsequent inbound envelope. The returned
// function unregisters it; it is safe to call more than once and from any
// goroutine, including from inside a handler. Once it returns no new
// invocation of h begins: an envelope being dispatched concurrently reaches
// h only if h was already running.
func (b *Bridge) OnMessage(h Handler) (unregister func()) {
	if h == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	reg := &registration{id: b.nextID, fn: h}
	reg.active.Store(true)
	b.handlers = append(b.handlers, reg)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			reg.withdraw()
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, r := range b.handlers {
				if r == reg {
					b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
					break
				}
			}
		})
	}
}

// Run reads frames until the stream ends, ctx is cancelled or Close is
// called. A clean end of stream returns nil.
func (b *Bridge) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { b.Close() })
	defer stop()

	reader := bufio.NewReaderSize(b.conn, 64*1024)
	for {
		frame, oversize, err := b.readFrame(reader)
		if err != nil {
			if errors.Is(err, io.EOF) || b.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if oversize {
			logging.Envelope(logging.Dropped, "", logging.String("reason", metrics.DropOversize))
			metrics.RecordDropped(metrics.DropOversize)
			continue
		}
		if len(frame) == 0 {
			continue
		}
		b.dispatch(frame)
	}
}

// Close stops the writer after it drains queued envelopes and closes the
// stream. It is safe to call more than once.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.closed)
		<-b.writerDone
		err = b.conn.Close()
	})
	return err
}

func (b *Bridge) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

func (b *Bridge) dispatch(frame []byte) {
	msg, err := protocol.DecodeInbound(frame)
	if err != nil {
		reason := dropReason(err)
		logging.Envelope(logging.Dropped, "", logging.String("reason", reason), logging.Err(err))
		metrics.RecordDropped(reason)
		return
	}
	logging.Envelope(logging.Inbound, msg.Type())
	metrics.RecordReceived(msg.Type())

	b.mu.Lock()
	regs := make([]*registration, len(b.handlers))
	copy(regs, b.handlers)
	b.mu.Unlock()

	for _, reg := range regs {
		reg.invoke(msg)
	}
}

func (b *Bridge) writeLoop() {
	defer close(b.writerDone)
	for {
		select {
		case <-b.wake:
			b.flush()
		case <-b.closed:
			b.flush()
			return
		}
	}
}

func (b *Bridge) flush() {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, msg := range batch {
		data, err := protocol.EncodeOutbound(msg)
		if err != nil {
			logging.Warn("encode envelope failed", logging.String("type", msg.Type()), logging.Err(err))
			metrics.RecordSendError()
			continue
		}
		data = append(data, '\n')
		if _, err := b.conn.Write(data); err != nil {
			logging.Warn("write envelope failed", logging.String("type", msg.Type()), logging.Err(err))
			metrics.RecordSendError()
			continue
		}
		logging.Envelope(logging.Outbound, msg.Type(), outboundFields(msg)...)
		metrics.RecordSent(msg.Type())
	}
}

// readFrame returns the next newline-terminated frame. Frames longer than
// maxFrame are consumed and reported as oversize.
func (b *Bridge) readFrame(r *bufio.Reader) ([]byte, bool, error) {
	var buf []byte
	oversize := false
	for {
		line, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, false, err
		}
		if !oversize {
			if len(buf)+len(line) > b.maxFrame {
				oversize = true
				buf = nil
			} else {
				buf = append(buf, line...)
			}
		}
		if !isPrefix {
			return buf, oversize, nil
		}
	}
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrMissingEnvelope):
		return metrics.DropMissingEnvelope
	case errors.Is(err, protocol.ErrUnknownType):
		return metrics.DropUnknownType
	default:
		return metrics.DropMalformed
	}
}
