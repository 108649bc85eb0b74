// Package testutil provides helpers shared by package tests.
package testutil

import (
	"strings"
	"sync"
)

// Diagnostic is one recorded Warn or Error call.
type Diagnostic struct {
	Level   string
	Message string
}

// Recorder is a logging.Diagnostics that keeps every call for assertions.
type Recorder struct {
	mu      sync.Mutex
	entries []Diagnostic
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Warn(msg string) {
	r.record("warn", msg)
}

func (r *Recorder) Error(msg string) {
	r.record("error", msg)
}

func (r *Recorder) record(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Diagnostic{Level: level, Message: msg})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.entries...)
}

// Errors returns the messages recorded at error level.
func (r *Recorder) Errors() []string {
	return r.messages("error")
}

// Warnings returns the messages recorded at warn level.
func (r *Recorder) Warnings() []string {
	return r.messages("warn")
}

// HasError reports whether any error message contains substr.
func (r *Recorder) HasError(substr string) bool {
	for _, msg := range r.Errors() {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// Reset drops everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

func (r *Recorder) messages(level string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
