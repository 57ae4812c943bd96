package bridge

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/typetune/internal/protocol"
)

func newPipeBridge(t *testing.T, opts ...Option) (*Bridge, net.Conn) {
	t.Helper()
	panelSide, hostSide := net.Pipe()
	b := New(panelSide, opts...)
	t.Cleanup(func() {
		_ = hostSide.Close()
		_ = b.Close()
	})
	return b, hostSide
}

func startRun(t *testing.T, b *Bridge) <-chan error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	return done
}

func writeLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	require.NoError(t, conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
}

func recv(t *testing.T, ch <-chan protocol.Inbound) protocol.Inbound {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for envelope")
		return nil
	}
}

func TestBridge_SendWritesFramesInCallOrder(t *testing.T) {
	b, host := newPipeBridge(t)

	b.Send(protocol.Init{})
	b.Send(protocol.UpdateSettings{Settings: protocol.PatchFor(protocol.SettingAutoApply, true)})
	b.Send(protocol.ExportCode{NodeID: "A", Format: protocol.FormatCSS, RequestID: "r1"})
	b.Send(protocol.ApplyPage{})

	require.NoError(t, host.SetReadDeadline(time.Now().Add(2*time.Second)))
	scanner := bufio.NewScanner(host)
	var types []string
	for len(types) < 4 && scanner.Scan() {
		msg, err := protocol.DecodeOutbound(scanner.Bytes())
		require.NoError(t, err)
		types = append(types, msg.Type())
	}
	require.Equal(t, []string{"init", "update-settings", "export-code", "apply-page"}, types)
}

func TestBridge_SendSkipsUnencodableEnvelope(t *testing.T) {
	b, host := newPipeBridge(t)

	b.Send(protocol.ExportCode{Format: protocol.FormatCSS}) // no node
	b.Send(protocol.ApplySelected{})

	require.NoError(t, host.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(host).ReadString('\n')
	require.NoError(t, err)
	require.JSONEq(t, `{"pluginMessage":{"type":"apply-selected"}}`, strings.TrimSpace(line))
}

func TestBridge_DispatchesInArrivalOrderAndDropsBadFrames(t *testing.T) {
	b, host := newPipeBridge(t)
	got := make(chan protocol.Inbound, 8)
	b.OnMessage(func(msg protocol.Inbound) { got <- msg })
	done := startRun(t, b)

	writeLine(t, host, `{"pluginMessage":{"type":"settings","settings":{"autoApply":true,"writeVariables":false}}}`)
	writeLine(t, host, `not json at all`)
	writeLine(t, host, `{"pluginMessage":{"type":"selection-preview"}}`)
	writeLine(t, host, `{"somethingElse":true}`)
	writeLine(t, host, ``)
	writeLine(t, host, `{"pluginMessage":{"type":"calculation-results","results":[{"nodeId":"A"}]}}`)
	writeLine(t, host, `{"pluginMessage":{"type":"export-result","code":"line-height: 24px;"}}`)

	require.Equal(t, protocol.SettingsMessage{Settings: protocol.Settings{AutoApply: true}}, recv(t, got))
	results := recv(t, got).(protocol.CalculationResults)
	require.Equal(t, "A", results.Results[0].NodeID)
	require.Equal(t, protocol.ExportResult{Code: "line-height: 24px;"}, recv(t, got))

	require.NoError(t, host.Close())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after host closed")
	}
	require.Empty(t, got)
}

func TestBridge_UnregisterStopsDelivery(t *testing.T) {
	b, host := newPipeBridge(t)
	first := make(chan protocol.Inbound, 4)
	second := make(chan protocol.Inbound, 4)
	unregisterFirst := b.OnMessage(func(msg protocol.Inbound) { first <- msg })
	b.OnMessage(func(msg protocol.Inbound) { second <- msg })
	startRun(t, b)

	writeLine(t, host, `{"pluginMessage":{"type":"no-selection"}}`)
	require.Equal(t, protocol.NoSelection{}, recv(t, first))
	require.Equal(t, protocol.NoSelection{}, recv(t, second))

	unregisterFirst()
	unregisterFirst()

	writeLine(t, host, `{"pluginMessage":{"type":"export-result","code":"x"}}`)
	require.Equal(t, protocol.ExportResult{Code: "x"}, recv(t, second))
	require.Empty(t, first)
}

func TestBridge_UnregisterFromInsideHandler(t *testing.T) {
	b, host := newPipeBridge(t)
	calls := make(chan protocol.Inbound, 4)
	var unregister func()
	unregister = b.OnMessage(func(msg protocol.Inbound) {
		calls <- msg
		unregister()
	})
	marker := make(chan protocol.Inbound, 4)
	b.OnMessage(func(msg protocol.Inbound) { marker <- msg })
	startRun(t, b)

	writeLine(t, host, `{"pluginMessage":{"type":"no-selection"}}`)
	writeLine(t, host, `{"pluginMessage":{"type":"no-selection"}}`)
	recv(t, marker)
	recv(t, marker)
	require.Len(t, calls, 1)
}

func TestBridge_UnregisterSkipsPendingSibling(t *testing.T) {
	b, host := newPipeBridge(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	first := make(chan protocol.Inbound, 4)
	second := make(chan protocol.Inbound, 4)
	b.OnMessage(func(msg protocol.Inbound) {
		if _, ok := msg.(protocol.NoSelection); ok {
			close(entered)
			<-release
		}
		first <- msg
	})
	unregisterSecond := b.OnMessage(func(msg protocol.Inbound) { second <- msg })
	startRun(t, b)

	writeLine(t, host, `{"pluginMessage":{"type":"no-selection"}}`)
	<-entered
	unregisterSecond()
	close(release)

	writeLine(t, host, `{"pluginMessage":{"type":"export-result","code":"x"}}`)
	recv(t, first)
	recv(t, first)
	require.Empty(t, second)
}

func TestRegistration_WithdrawWaitsForCommittedCall(t *testing.T) {
	calls := 0
	reg := &registration{fn: func(protocol.Inbound) { calls++ }}
	reg.active.Store(true)

	// A dispatch that passed the active check but has not entered fn yet.
	reg.calling.RLock()
	withdrawn := make(chan struct{})
	go func() {
		reg.withdraw()
		close(withdrawn)
	}()

	select {
	case <-withdrawn:
		t.Fatal("withdraw returned while a call was committed")
	case <-time.After(50 * time.Millisecond):
	}
	reg.calling.RUnlock()

	select {
	case <-withdrawn:
	case <-time.After(2 * time.Second):
		t.Fatal("withdraw never returned")
	}
	reg.invoke(protocol.NoSelection{})
	require.Zero(t, calls)
}

func TestRegistration_WithdrawInsideCallDoesNotBlock(t *testing.T) {
	var reg *registration
	calls := 0
	reg = &registration{fn: func(protocol.Inbound) {
		calls++
		reg.withdraw()
	}}
	reg.active.Store(true)

	done := make(chan struct{})
	go func() {
		reg.invoke(protocol.NoSelection{})
		reg.invoke(protocol.NoSelection{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("self-withdraw deadlocked")
	}
	require.Equal(t, 1, calls)
}

func TestBridge_DropsOversizeFrameAndContinues(t *testing.T) {
	b, host := newPipeBridge(t, WithMaxFrameSize(64))
	got := make(chan protocol.Inbound, 4)
	b.OnMessage(func(msg protocol.Inbound) { got <- msg })
	startRun(t, b)

	big := `{"pluginMessage":{"type":"export-result","code":"` + strings.Repeat("x", 256) + `"}}`
	writeLine(t, host, big)
	writeLine(t, host, `{"pluginMessage":{"type":"no-selection"}}`)

	require.Equal(t, protocol.NoSelection{}, recv(t, got))
	require.Empty(t, got)
}

func TestBridge_RunStopsOnContextCancel(t *testing.T) {
	b, _ := newPipeBridge(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}

	// Sends after close are dropped without blocking.
	b.Send(protocol.Init{})
}

func TestParseEndpoint(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in      string
		want    Endpoint
		wantErr bool
	}{
		{in: "unix:///tmp/typetune.sock", want: Endpoint{Network: "unix", Address: "/tmp/typetune.sock"}},
		{in: "unix:host.sock", want: Endpoint{Network: "unix", Address: "host.sock"}},
		{in: "unix://~/host.sock", want: Endpoint{Network: "unix", Address: home + "/host.sock"}},
		{in: "tcp://127.0.0.1:7571", want: Endpoint{Network: "tcp", Address: "127.0.0.1:7571"}},
		{in: " localhost:9000 ", want: Endpoint{Network: "tcp", Address: "localhost:9000"}},
		{in: "stdio", want: Endpoint{Network: NetworkStdio}},
		{in: " STDIO ", want: Endpoint{Network: NetworkStdio}},
		{in: "", wantErr: true},
		{in: "unix://", wantErr: true},
		{in: "ws://example.com", wantErr: true},
		{in: "no-port", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseEndpoint(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}
}

func TestDial_ConnectsOverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	b, err := Dial(context.Background(), "tcp://"+ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	var host net.Conn
	select {
	case host = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatalf("host never accepted")
	}
	t.Cleanup(func() { _ = host.Close() })

	b.Send(protocol.Init{})
	require.NoError(t, host.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(host).ReadString('\n')
	require.NoError(t, err)
	require.JSONEq(t, `{"pluginMessage":{"type":"init"}}`, strings.TrimSpace(line))
}

func TestStdio_CarriesFramesBothWays(t *testing.T) {
	panelIn, hostOut := io.Pipe()
	hostIn, panelOut := io.Pipe()
	b := New(Stdio(panelIn, panelOut))
	t.Cleanup(func() {
		_ = hostOut.Close()
		_ = hostIn.Close()
		_ = b.Close()
	})
	got := make(chan protocol.Inbound, 1)
	b.OnMessage(func(msg protocol.Inbound) { got <- msg })
	startRun(t, b)

	b.Send(protocol.Init{})
	line, err := bufio.NewReader(hostIn).ReadString('\n')
	require.NoError(t, err)
	require.JSONEq(t, `{"pluginMessage":{"type":"init"}}`, strings.TrimSpace(line))

	_, err = hostOut.Write([]byte(`{"pluginMessage":{"type":"no-selection"}}` + "\n"))
	require.NoError(t, err)
	require.Equal(t, protocol.NoSelection{}, recv(t, got))
}

func TestStdio_CloseClosesBothEnds(t *testing.T) {
	in := &closeRecorder{}
	out := &closeRecorder{}
	require.NoError(t, Stdio(in, out).Close())
	require.True(t, in.closed)
	require.True(t, out.closed)
}

type closeRecorder struct {
	closed bool
}

func (c *closeRecorder) Read([]byte) (int, error)    { return 0, io.EOF }
func (c *closeRecorder) Write(p []byte) (int, error) { return len(p), nil }
func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}
