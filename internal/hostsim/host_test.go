package hostsim

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/typetune/internal/protocol"
)

type panelEnd struct {
	t       *testing.T
	conn    net.Conn
	scanner *bufio.Scanner
}

func (p *panelEnd) send(msg protocol.Outbound) {
	p.t.Helper()
	data, err := protocol.EncodeOutbound(msg)
	require.NoError(p.t, err)
	_, err = p.conn.Write(append(data, '\n'))
	require.NoError(p.t, err)
}

func (p *panelEnd) next() protocol.Inbound {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.True(p.t, p.scanner.Scan(), "no frame from host: %v", p.scanner.Err())
	msg, err := protocol.DecodeInbound(p.scanner.Bytes())
	require.NoError(p.t, err)
	return msg
}

func startHost(t *testing.T, opts ...Option) (*Host, *panelEnd) {
	t.Helper()
	panelConn, hostConn := net.Pipe()
	host := New(hostConn, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- host.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = panelConn.Close()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("host did not stop")
		}
	})
	return host, &panelEnd{t: t, conn: panelConn, scanner: bufio.NewScanner(panelConn)}
}

func TestInitSendsSettingsThenNoSelection(t *testing.T) {
	_, panel := startHost(t, WithSettings(protocol.Settings{WriteVariables: true}))

	panel.send(protocol.Init{})
	assert.Equal(t, protocol.SettingsMessage{Settings: protocol.Settings{WriteVariables: true}}, panel.next())
	assert.Equal(t, protocol.NoSelection{}, panel.next())
}

func TestUpdateSettingsMergesAndBroadcasts(t *testing.T) {
	host, panel := startHost(t, WithSettings(protocol.Settings{WriteVariables: true}))

	panel.send(protocol.UpdateSettings{Settings: protocol.PatchFor(protocol.SettingAutoApply, true)})
	want := protocol.Settings{AutoApply: true, WriteVariables: true}
	assert.Equal(t, protocol.SettingsMessage{Settings: want}, panel.next())
	assert.Equal(t, want, host.Settings())
}

func TestExportEchoesRequestID(t *testing.T) {
	host, panel := startHost(t)
	entry := SampleScenes()[0][0]

	go func() { _ = host.Select(entry) }()
	res, ok := panel.next().(protocol.CalculationResults)
	require.True(t, ok)
	require.Len(t, res.Results, 1)

	panel.send(protocol.ExportCode{NodeID: entry.NodeID, Format: protocol.FormatIOS, RequestID: "abc"})
	got, ok := panel.next().(protocol.ExportResult)
	require.True(t, ok)
	assert.Equal(t, "abc", got.RequestID)
	assert.Equal(t, Render(protocol.FormatIOS, entry), got.Code)
}

func TestDelayedExportsArriveOutOfOrder(t *testing.T) {
	host, panel := startHost(t, WithExportDelay(func(f protocol.ExportFormat) time.Duration {
		if f == protocol.FormatCSS {
			return 100 * time.Millisecond
		}
		return 0
	}))
	entry := SampleScenes()[0][0]
	go func() { _ = host.Select(entry) }()
	panel.next()

	panel.send(protocol.ExportCode{NodeID: entry.NodeID, Format: protocol.FormatCSS, RequestID: "1"})
	panel.send(protocol.ExportCode{NodeID: entry.NodeID, Format: protocol.FormatIOS, RequestID: "2"})

	first := panel.next().(protocol.ExportResult)
	second := panel.next().(protocol.ExportResult)
	assert.Equal(t, "2", first.RequestID)
	assert.Equal(t, "1", second.RequestID)
}

func TestApplyRepushesSelection(t *testing.T) {
	host, panel := startHost(t)
	entry := SampleScenes()[0][0]
	go func() { _ = host.Select(entry) }()
	panel.next()

	panel.send(protocol.ApplySelected{})
	res := panel.next().(protocol.CalculationResults)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "53px", res.Results[0].Before.LineHeight)
	assert.Equal(t, "-2%", res.Results[0].Before.LetterSpacing)

	panel.send(protocol.ApplyPage{})
	panel.next()
	assert.Equal(t, Applied{Selected: 1, Page: 1}, host.Applied())
	assert.Len(t, host.Received(), 2)
}

func TestEmptySelectionAndDeselect(t *testing.T) {
	host, panel := startHost(t)

	go func() { _ = host.Select() }()
	res, ok := panel.next().(protocol.CalculationResults)
	require.True(t, ok)
	assert.Empty(t, res.Results)

	go func() { _ = host.Deselect() }()
	assert.Equal(t, protocol.NoSelection{}, panel.next())
}

func TestUnknownNodeExportIsIgnored(t *testing.T) {
	host, panel := startHost(t)
	panel.send(protocol.ExportCode{NodeID: "9:9", Format: protocol.FormatCSS})
	panel.send(protocol.Init{})

	// The first reply is for init; the export produced nothing.
	_, ok := panel.next().(protocol.SettingsMessage)
	assert.True(t, ok)
	panel.next()
	assert.Len(t, host.Received(), 2)
}

func TestRender(t *testing.T) {
	entry := protocol.ResultEntry{
		FontInfo: "Inter Regular",
		FontSize: 16,
		After: protocol.AfterValues{
			LineHeight:      24,
			LineHeightRaw:   24,
			LetterSpacing:   -0.16,
			LetterSpacingEm: -0.01,
		},
	}
	tests := []struct {
		format protocol.ExportFormat
		want   string
	}{
		{protocol.FormatCSS, "/* Inter Regular */\nline-height: 24px;\nletter-spacing: -0.16px;"},
		{protocol.FormatCSSFluid, "/* Inter Regular */\nline-height: 1.5;\nletter-spacing: -0.01em;"},
		{protocol.FormatIOS, "// Inter Regular\n.lineSpacing(8)\n.kerning(-0.16)"},
		{protocol.FormatAndroid, "<!-- Inter Regular -->\nandroid:lineHeight=\"24sp\"\nandroid:letterSpacing=\"-0.01\""},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.format, entry))
		})
	}
}

func TestPlayLoopsScenes(t *testing.T) {
	host, panel := startHost(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scenes := []Scene{{SampleScenes()[0][0]}, nil}
	go func() { _ = host.Play(ctx, 10*time.Millisecond, scenes) }()

	_, ok := panel.next().(protocol.CalculationResults)
	assert.True(t, ok)
	assert.Equal(t, protocol.NoSelection{}, panel.next())
	_, ok = panel.next().(protocol.CalculationResults)
	assert.True(t, ok)
	cancel()
}
