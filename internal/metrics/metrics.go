// Package metrics provides Prometheus metrics for the TypeTune panel.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	envelopesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "typetune_envelopes_sent_total",
			Help: "Envelopes written to the host, by type",
		},
		[]string{"type"},
	)

	envelopesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "typetune_envelopes_received_total",
			Help: "Envelopes decoded from the host, by type",
		},
		[]string{"type"},
	)

	envelopesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "typetune_envelopes_dropped_total",
			Help: "Inbound frames dropped without effect, by reason",
		},
		[]string{"reason"},
	)

	sendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "typetune_send_errors_total",
			Help: "Outbound envelopes that could not be encoded or written",
		},
	)

	exportResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "typetune_export_results_total",
			Help: "Export results by outcome (accepted, stale)",
		},
		[]string{"outcome"},
	)

	clipboardWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "typetune_clipboard_writes_total",
			Help: "Clipboard writes by status",
		},
		[]string{"status"},
	)
)

// Drop reasons.
const (
	DropMissingEnvelope = "missing_envelope"
	DropUnknownType     = "unknown_type"
	DropMalformed       = "malformed"
	DropOversize        = "oversize"
)

// RecordSent counts an envelope written to the host.
func RecordSent(envelopeType string) {
	envelopesSent.WithLabelValues(envelopeType).Inc()
}

// RecordReceived counts an envelope accepted from the host.
func RecordReceived(envelopeType string) {
	envelopesReceived.WithLabelValues(envelopeType).Inc()
}

// RecordDropped counts an inbound frame that was discarded.
func RecordDropped(reason string) {
	envelopesDropped.WithLabelValues(reason).Inc()
}

// RecordSendError counts a failed outbound write.
func RecordSendError() {
	sendErrors.Inc()
}

// RecordExportResult counts an export-result by whether it was displayed.
func RecordExportResult(accepted bool) {
	outcome := "stale"
	if accepted {
		outcome = "accepted"
	}
	exportResults.WithLabelValues(outcome).Inc()
}

// RecordClipboardWrite counts a copy attempt.
func RecordClipboardWrite(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	clipboardWrites.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled. It returns once the
// listener is bound so startup errors reach the caller.
func Serve(ctx context.Context, addr string) (<-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return ServeListener(ctx, ln), nil
}

// ServeListener serves /metrics on an existing listener until ctx is
// cancelled. The returned channel yields the server's exit error.
func ServeListener(ctx context.Context, ln net.Listener) <-chan error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return done
}
