package notification

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level is the severity shown on a toast
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Toast is a short user-visible message
type Toast struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier shows toasts to the shopper
type Notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// Nop discards every toast
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Info(string)    {}
func (Nop) Error(string)   {}

// LogNotifier writes toasts to the log
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "toast").Logger()}
}

func (n *LogNotifier) Success(message string) { n.logger.Info().Str("toast", string(LevelSuccess)).Msg(message) }
func (n *LogNotifier) Info(message string)    { n.logger.Info().Str("toast", string(LevelInfo)).Msg(message) }
func (n *LogNotifier) Error(message string)   { n.logger.Warn().Str("toast", string(LevelError)).Msg(message) }

// DefaultQueueSize bounds how many undelivered toasts a Queue keeps
const DefaultQueueSize = 20

// Queue buffers toasts until the HTTP layer drains them into a response.
// When full, the oldest toast is dropped.
type Queue struct {
	mu     sync.Mutex
	toasts []Toast
	size   int
	now    func() time.Time
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{size: size, now: time.Now}
}

func (q *Queue) Success(message string) { q.push(LevelSuccess, message) }
func (q *Queue) Info(message string)    { q.push(LevelInfo, message) }
func (q *Queue) Error(message string)   { q.push(LevelError, message) }

func (q *Queue) push(level Level, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.toasts) == q.size {
		q.toasts = q.toasts[1:]
	}
	q.toasts = append(q.toasts, Toast{Level: level, Message: message, At: q.now()})
}

// Drain returns the buffered toasts oldest first and empties the queue
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.toasts
	q.toasts = nil
	if out == nil {
		return []Toast{}
	}
	return out
}

// Multi fans a toast out to several notifiers
type Multi []Notifier

func (m Multi) Success(message string) {
	for _, n := range m {
		n.Success(message)
	}
}

func (m Multi) Info(message string) {
	for _, n := range m {
		n.Info(message)
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}
