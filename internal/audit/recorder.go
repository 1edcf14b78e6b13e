// Package audit records sign-in attempts.
package audit

import (
	"context"
	"strings"
	"unicode/utf8"
)

const maxMessageBytes = 512

// Entry is one sign-in attempt.
type Entry struct {
	Provider string
	Email    string
	Backend  string
	Success  bool
	Message  string
}

func (e Entry) normalize() Entry {
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	if len(e.Message) > maxMessageBytes {
		// cut on a rune boundary; postgres rejects invalid UTF-8
		cut := maxMessageBytes
		for cut > 0 && !utf8.RuneStart(e.Message[cut]) {
			cut--
		}
		e.Message = e.Message[:cut]
	}
	return e
}

// Recorder persists sign-in attempts. Recording failures must not fail the
// sign-in; callers log and move on.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NopRecorder discards entries.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }
