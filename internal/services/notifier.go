package services

import (
	"slices"
	"sync"
	"time"

	"ledgervault/internal/metrics"
	"ledgervault/internal/models"
)

// DefaultToastDuration is how long a toast stays visible.
const DefaultToastDuration = 4000 * time.Millisecond

// Notifier is the process-wide toast queue. Every toast expires on its own
// timer; ids increase monotonically so two toasts pushed in the same
// millisecond never collide.
type Notifier struct {
	mu       sync.Mutex
	toasts   []models.Toast
	timers   map[uint64]*time.Timer
	nextID   uint64
	duration time.Duration
	onChange func([]models.Toast)
	metrics  metrics.Recorder
	closed   bool
}

// NewNotifier creates a notifier. A non-positive duration disables auto-expiry.
func NewNotifier(duration time.Duration, recorder metrics.Recorder) *Notifier {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Notifier{
		timers:   make(map[uint64]*time.Timer),
		duration: duration,
		metrics:  recorder,
	}
}

func (n *Notifier) Push(message string, severity models.Severity) models.Toast {
	n.mu.Lock()
	n.nextID++
	toast := models.Toast{
		ID:        n.nextID,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
	if n.closed {
		n.mu.Unlock()
		return toast
	}

	n.toasts = append(n.toasts, toast)
	if n.duration > 0 {
		id := toast.ID
		n.timers[id] = time.AfterFunc(n.duration, func() { n.Expire(id) })
	}
	snapshot, callback := n.snapshotLocked()
	n.mu.Unlock()

	n.metrics.IncrementCounter(metrics.ToastPushed, map[string]string{"severity": string(severity)})
	if callback != nil {
		callback(snapshot)
	}
	return toast
}

func (n *Notifier) Success(message string) models.Toast {
	return n.Push(message, models.SeveritySuccess)
}

func (n *Notifier) Error(message string) models.Toast {
	return n.Push(message, models.SeverityError)
}

func (n *Notifier) Info(message string) models.Toast {
	return n.Push(message, models.SeverityInfo)
}

// Expire removes a toast. Unknown ids are ignored.
func (n *Notifier) Expire(id uint64) {
	n.mu.Lock()
	idx := slices.IndexFunc(n.toasts, func(t models.Toast) bool { return t.ID == id })
	if idx < 0 {
		n.mu.Unlock()
		return
	}

	n.toasts = slices.Delete(n.toasts, idx, idx+1)
	if timer, ok := n.timers[id]; ok {
		timer.Stop()
		delete(n.timers, id)
	}
	snapshot, callback := n.snapshotLocked()
	n.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

// Active returns the visible toasts, oldest first.
func (n *Notifier) Active() []models.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.toasts)
}

// OnChange registers a callback invoked with a snapshot after every push or expiry.
// It runs outside the notifier's lock.
func (n *Notifier) OnChange(fn func([]models.Toast)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Close stops all pending timers and drops the queue. Later pushes are not shown.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
	n.toasts = nil
	n.closed = true
}

func (n *Notifier) snapshotLocked() ([]models.Toast, func([]models.Toast)) {
	if n.onChange == nil {
		return nil, nil
	}
	return slices.Clone(n.toasts), n.onChange
}
