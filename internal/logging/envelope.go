package logging

import "go.uber.org/zap"

// Direction of an envelope relative to the panel.
type Direction string

const (
	Inbound  Direction = "in"
	Outbound Direction = "out"
	Dropped  Direction = "drop"
)

// EnvelopeMessage is the log message used for every protocol trace entry.
// The protocol log overlay filters on it.
const EnvelopeMessage = "envelope"

// Envelope records one protocol envelope at debug level.
func Envelope(dir Direction, envelopeType string, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("dir", string(dir)),
		zap.String("type", envelopeType),
	}
	L().Debug(EnvelopeMessage, append(base, fields...)...)
}
