package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

// Message is an emitted message with its severity.
type Message struct {
	Text     string
	Severity validator.Severity
}

// Log emits messages as log records. Errors are logged at warn level since
// they do not stop the run.
type Log struct {
	Logger *slog.Logger
}

// NewLog creates a Log emitter. A nil logger uses slog.Default.
func NewLog(l *slog.Logger) *Log {
	if l == nil {
		l = slog.Default()
	}
	return &Log{Logger: l}
}

func (e *Log) Emit(ctx context.Context, message string, severity validator.Severity) {
	level := slog.LevelInfo
	switch severity {
	case validator.SeverityError, validator.SeverityWarning:
		level = slog.LevelWarn
	}
	e.Logger.Log(ctx, level, message, logger.Severity(string(severity)))
}

// Memory queues messages until they are drained.
type Memory struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Emit(_ context.Context, message string, severity validator.Severity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Text: message, Severity: severity})
}

// Messages returns the queued messages without removing them.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}

// Drain returns and removes the queued messages of the given severity, or of
// every severity when none is given.
func (m *Memory) Drain(severity ...validator.Severity) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(severity) == 0 {
		out := m.messages
		m.messages = nil
		return out
	}

	var out, keep []Message
	for _, msg := range m.messages {
		if slices.Contains(severity, msg.Severity) {
			out = append(out, msg)
		} else {
			keep = append(keep, msg)
		}
	}
	m.messages = keep
	return out
}

// Channel sends messages to a buffered Go channel, dropping them when it is full.
type Channel struct {
	ch      chan Message
	dropped atomic.Int64
}

// NewChannel creates a Channel emitter with the given buffer size.
func NewChannel(buffer int) *Channel {
	if buffer < 0 {
		buffer = 0
	}
	return &Channel{ch: make(chan Message, buffer)}
}

func (c *Channel) Emit(_ context.Context, message string, severity validator.Severity) {
	select {
	case c.ch <- Message{Text: message, Severity: severity}:
	default:
		c.dropped.Add(1)
	}
}

// Messages returns the receive side of the channel.
func (c *Channel) Messages() <-chan Message { return c.ch }

// Dropped returns how many messages were discarded because the buffer was full.
func (c *Channel) Dropped() int64 { return c.dropped.Load() }

// Multi emits to every emitter in order.
type Multi []validator.Emitter

func (m Multi) Emit(ctx context.Context, message string, severity validator.Severity) {
	for _, e := range m {
		if e != nil {
			e.Emit(ctx, message, severity)
		}
	}
}
