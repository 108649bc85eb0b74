package logging

import "github.com/rs/zerolog"

// Diagnostics is the sink for contract violations inside the indexing core.
// Implementations must not panic; callers continue with a safe default
// after reporting.
type Diagnostics interface {
	Warn(msg string)
	Error(msg string)
}

// ZerologDiagnostics reports diagnostics through a zerolog logger.
// Messages are passed through Redact so emails do not reach the log verbatim.
type ZerologDiagnostics struct {
	logger zerolog.Logger
}

// NewDiagnostics returns a Diagnostics writing to logger.
func NewDiagnostics(logger zerolog.Logger) *ZerologDiagnostics {
	return &ZerologDiagnostics{logger: logger}
}

// ComponentDiagnostics returns a Diagnostics bound to the global logger
// with a component field.
func ComponentDiagnostics(name string) *ZerologDiagnostics {
	return NewDiagnostics(Component(name))
}

func (d *ZerologDiagnostics) Warn(msg string) {
	d.logger.Warn().Msg(Redact(msg))
}

func (d *ZerologDiagnostics) Error(msg string) {
	d.logger.Error().Msg(Redact(msg))
}

// Nop discards every diagnostic.
type Nop struct{}

func (Nop) Warn(string)  {}
func (Nop) Error(string) {}
