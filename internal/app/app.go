package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/typetune/internal/bridge"
	"github.com/five82/typetune/internal/config"
	"github.com/five82/typetune/internal/hostsim"
	"github.com/five82/typetune/internal/logging"
	"github.com/five82/typetune/internal/metrics"
	"github.com/five82/typetune/internal/prefs"
	"github.com/five82/typetune/internal/protocol"
	"github.com/five82/typetune/internal/state"
	"github.com/five82/typetune/internal/ui"
)

const demoSceneInterval = 6 * time.Second

// Options configure the TypeTune panel.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/typetune/prefs.toml
	Demo       bool   // talk to an in-process scripted host instead of dialing
}

// Run boots the panel and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, _ := prefs.Load(prefsPath)

	if err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     "json",
		OutputPath: cfg.LogFile,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logging.Sync() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		done, err := metrics.Serve(ctx, cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("serve metrics on %s: %w", cfg.MetricsAddr, err)
		}
		go func() {
			if err := <-done; err != nil {
				logging.Warn("metrics server stopped", logging.Err(err))
			}
		}()
	}

	b, label, err := connect(ctx, cfg, opts.Demo)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	format := cfg.ExportFormat
	if userPrefs.ExportFormat != "" {
		format = userPrefs.ExportFormat
	}
	panel := state.New(state.Options{Format: format, Policy: cfg.Correlation})

	model := ui.New(ui.Options{
		Panel:        panel,
		Sender:       b,
		CopyFeedback: cfg.CopyFeedback,
		Prefs:        userPrefs,
		PrefsPath:    prefsPath,
		LogPath:      cfg.LogFile,
		HostLabel:    label,
	})
	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if !opts.Demo && stdioHost(cfg.HostAddr) {
		// stdin and stdout carry envelopes; draw on the controlling terminal.
		tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("open terminal for stdio host: %w", err)
		}
		defer func() { _ = tty.Close() }()
		progOpts = append(progOpts, tea.WithInput(tty), tea.WithOutput(tty))
	}
	program := tea.NewProgram(model, progOpts...)

	session := NewSession(b, panel)
	if err := session.Start(func(msg protocol.Inbound) {
		program.Send(ui.InboundMsg{Msg: msg})
	}); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	logging.Info("panel ready",
		logging.String("host", label),
		logging.String("correlation", string(cfg.Correlation)),
		logging.String("format", string(format)),
	)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		err := b.Run(ctx)
		if err != nil {
			logging.Warn("host connection failed", logging.Err(err))
		} else {
			logging.Info("host closed the connection")
		}
		program.Send(ui.HostClosedMsg{Err: err})
	}()

	_, runErr := program.Run()
	session.Stop()
	cancel()
	_ = b.Close()
	<-readDone

	if errors.Is(runErr, tea.ErrProgramKilled) {
		// Cancelled by signal.
		return nil
	}
	if runErr != nil {
		return fmt.Errorf("run ui: %w", runErr)
	}
	return nil
}

// connect opens the bridge. In demo mode the host is a hostsim.Host on the
// other end of an in-memory pipe, cycling through sample selections.
func connect(ctx context.Context, cfg config.Config, demo bool) (*bridge.Bridge, string, error) {
	if !demo {
		b, err := bridge.Dial(ctx, cfg.HostAddr)
		if err != nil {
			return nil, "", err
		}
		return b, cfg.HostAddr, nil
	}

	panelEnd, hostEnd := net.Pipe()
	host := hostsim.New(hostEnd, hostsim.WithExportDelay(demoExportDelay))
	go func() {
		if err := host.Run(ctx); err != nil {
			logging.Warn("demo host stopped", logging.Err(err))
		}
	}()
	go func() {
		_ = host.Play(ctx, demoSceneInterval, hostsim.SampleScenes())
	}()
	return bridge.New(panelEnd), "demo host", nil
}

func stdioHost(addr string) bool {
	ep, err := bridge.ParseEndpoint(addr)
	return err == nil && ep.Network == bridge.NetworkStdio
}

// demoExportDelay makes the slower formats answer late, so quick tab
// switches produce out-of-order results the correlator has to sort out.
func demoExportDelay(format protocol.ExportFormat) time.Duration {
	switch format {
	case protocol.FormatCSS:
		return 400 * time.Millisecond
	case protocol.FormatCSSFluid:
		return 250 * time.Millisecond
	default:
		return 80 * time.Millisecond
	}
}
