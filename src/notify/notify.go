package notify

import (
	"sync"
	"time"

	"market-buzz/src/interfaces"
	"market-buzz/src/logger"
	"market-buzz/src/models"
)

// -----------------------------------------------------------------------------

// New builds a notification stamped with the current time.
func New(level, message string) models.MNotification {
	return models.MNotification{Level: level, Message: message, Timestamp: time.Now().UTC()}
}

// -----------------------------------------------------------------------------
// LogNotifier writes notifications to the component log.
// -----------------------------------------------------------------------------

type LogNotifier struct {
	Logger *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.NewLogger(nil, "Notifier")
	}
	return &LogNotifier{Logger: log}
}

func (n *LogNotifier) Notify(msg models.MNotification) {
	switch msg.Level {
	case models.NotifyError:
		n.Logger.Error("%s", msg.Message)
	case models.NotifyWarning:
		n.Logger.Warning("%s", msg.Message)
	default:
		n.Logger.Info("%s", msg.Message)
	}
}

// -----------------------------------------------------------------------------
// MultiNotifier fans a notification out to several notifiers.
// -----------------------------------------------------------------------------

type MultiNotifier struct {
	mu        sync.RWMutex
	notifiers []interfaces.INotifier
}

func NewMultiNotifier(notifiers ...interfaces.INotifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, n := range notifiers {
		m.Add(n)
	}
	return m
}

// Add registers another target. Nil targets are ignored.
func (m *MultiNotifier) Add(n interfaces.INotifier) {
	if n == nil {
		return
	}
	m.mu.Lock()
	m.notifiers = append(m.notifiers, n)
	m.mu.Unlock()
}

func (m *MultiNotifier) Notify(msg models.MNotification) {
	m.mu.RLock()
	targets := append([]interfaces.INotifier(nil), m.notifiers...)
	m.mu.RUnlock()

	for _, n := range targets {
		n.Notify(msg)
	}
}

// -----------------------------------------------------------------------------
// Recorder keeps every notification in memory. Used by tests and by the MCP
// server, which has nobody to push to.
// -----------------------------------------------------------------------------

type Recorder struct {
	mu   sync.Mutex
	msgs []models.MNotification
}

func (r *Recorder) Notify(msg models.MNotification) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

// Messages returns a copy of what was recorded so far.
func (r *Recorder) Messages() []models.MNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.MNotification(nil), r.msgs...)
}
