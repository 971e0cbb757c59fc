// Package notifysvc implements core.NotificationSink.
package notifysvc

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/masomo-sync/core"
)

var (
	// mockable
	afterFunc = func(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) }
	now       = time.Now
	newID     = func() string { return uuid.New().String() }
)

type stopper interface {
	Stop() bool
}

// Notification is one visible toast.
type Notification struct {
	ID        string
	Message   string
	Severity  core.Severity
	ShownAt   time.Time
	ExpiresAt time.Time
}

// Stack keeps every visible notification. Each one is dismissed after its own duration,
// independently of the others. A zero duration keeps it until Dismiss is called.
// Stack is safe for concurrent use.
type Stack struct {
	mu     sync.Mutex
	items  map[string]Notification
	timers map[string]stopper
	seq    map[string]int
	next   int

	// OnChange, if set, is called with the visible notifications after every change.
	OnChange func([]Notification)
}

var _ core.NotificationSink = (*Stack)(nil)

func NewStack() *Stack {
	return &Stack{
		items:  make(map[string]Notification),
		timers: make(map[string]stopper),
		seq:    make(map[string]int),
	}
}

func (s *Stack) Show(message string, severity core.Severity, duration time.Duration) {
	s.Push(message, severity, duration)
}

// Push shows a notification and returns its id.
func (s *Stack) Push(message string, severity core.Severity, duration time.Duration) string {
	n := Notification{
		ID:       newID(),
		Message:  message,
		Severity: severity,
		ShownAt:  now(),
	}
	if duration > 0 {
		n.ExpiresAt = n.ShownAt.Add(duration)
	}

	s.mu.Lock()
	s.items[n.ID] = n
	s.seq[n.ID] = s.next
	s.next++
	if duration > 0 {
		id := n.ID
		s.timers[id] = afterFunc(duration, func() { s.Dismiss(id) })
	}
	active := s.activeLocked()
	s.mu.Unlock()

	s.changed(active)
	return n.ID
}

// Dismiss removes a notification; unknown ids are ignored.
func (s *Stack) Dismiss(id string) {
	s.mu.Lock()
	if _, ok := s.items[id]; !ok {
		s.mu.Unlock()
		return
	}
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	delete(s.items, id)
	delete(s.seq, id)
	active := s.activeLocked()
	s.mu.Unlock()

	s.changed(active)
}

// Active returns the visible notifications, oldest first.
func (s *Stack) Active() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Stack) activeLocked() []Notification {
	ns := make([]Notification, 0, len(s.items))
	for _, n := range s.items {
		ns = append(ns, n)
	}
	sort.Slice(ns, func(i, j int) bool { return s.seq[ns[i].ID] < s.seq[ns[j].ID] })
	return ns
}

func (s *Stack) changed(active []Notification) {
	if s.OnChange != nil {
		s.OnChange(active)
	}
}

// LogSink writes notifications through a core.Logger: errors as warnings, the rest as info.
type LogSink struct {
	Logger core.Logger
}

var _ core.NotificationSink = LogSink{}

func (l LogSink) Show(message string, severity core.Severity, _ time.Duration) {
	if severity == core.SeverityError {
		l.Logger.Warn(message)
		return
	}
	l.Logger.Info(message)
}

// Tee shows every notification on all its sinks.
type Tee []core.NotificationSink

func (t Tee) Show(message string, severity core.Severity, duration time.Duration) {
	for _, sink := range t {
		sink.Show(message, severity, duration)
	}
}
