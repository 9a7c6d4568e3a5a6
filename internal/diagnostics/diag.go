package diagnostics

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Time           time.Time      `json:"time"`
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Device         string         `json:"device,omitempty"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

func (s Severity) level() zerolog.Level {
	switch s {
	case Err:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Log keeps the most recent diagnostics and fans new ones out to subscribers.
type Log struct {
	mu   sync.Mutex
	ring []Diagnostic
	next int
	full bool
	subs map[int]func(Diagnostic)
	id   int
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = 64
	}
	return &Log{ring: make([]Diagnostic, capacity), subs: map[int]func(Diagnostic){}}
}

// Push records d, logs it and notifies subscribers.
func (l *Log) Push(d Diagnostic) {
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	log.WithLevel(d.Severity.level()).Str("code", d.Code).Str("device", d.Device).
		Str("detail", d.Detail).Msg(d.Summary)

	l.mu.Lock()
	l.ring[l.next] = d
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}
	subs := make([]func(Diagnostic), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(d)
	}
}

// Recent returns the retained diagnostics, oldest first.
func (l *Log) Recent() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.full {
		return append([]Diagnostic(nil), l.ring[:l.next]...)
	}
	out := make([]Diagnostic, 0, len(l.ring))
	out = append(out, l.ring[l.next:]...)
	return append(out, l.ring[:l.next]...)
}

// Subscribe registers fn for future diagnostics and returns its cancel func.
func (l *Log) Subscribe(fn func(Diagnostic)) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.id++
	id := l.id
	l.subs[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}
