package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event types pushed through the dispatcher.
const (
	TypeLeaveApproved      = "leave_approved"
	TypeLeaveRejected      = "leave_rejected"
	TypeAppointmentMoved   = "appointment_reassigned"
	TypeAppointmentBooked  = "appointment_booked"
	TypeReassignmentFailed = "reassignment_failed"
)

// Event is a single notification destined for one user.
type Event struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	ObjectID  int64     `json:"object_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is the delivery surface used by the services. Implementations
// must not block the caller.
type Notifier interface {
	Notify(userID int64, eventType, content string, objectID int64)
	Close()
}

// Sender performs the actual delivery of a single event (push, email,
// persistence). The dispatcher calls it from worker goroutines.
type Sender interface {
	Send(event Event) error
}

// LogSender writes events to the structured log. It stands in until a real
// push or email channel is configured.
type LogSender struct{}

func (LogSender) Send(event Event) error {
	log.Info().
		Str("event_id", event.ID).
		Int64("user_id", event.UserID).
		Str("type", event.Type).
		Int64("object_id", event.ObjectID).
		Str("content", event.Content).
		Msg("Notification dispatched")
	return nil
}

// Dispatcher fans events out to a worker pool over a buffered channel.
// When the buffer is full the event is dropped and logged rather than
// blocking the request path.
type Dispatcher struct {
	sender Sender
	queue  chan Event
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDispatcher starts workers draining the queue. bufferSize and workers
// fall back to sane defaults when non-positive.
func NewDispatcher(sender Sender, bufferSize, workers int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if workers <= 0 {
		workers = 4
	}
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Event, bufferSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.queue {
		if err := d.sender.Send(event); err != nil {
			log.Error().Err(err).
				Str("event_id", event.ID).
				Int64("user_id", event.UserID).
				Str("type", event.Type).
				Msg("Failed to deliver notification")
		}
	}
}

func (d *Dispatcher) Notify(userID int64, eventType, content string, objectID int64) {
	event := Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      eventType,
		Content:   content,
		ObjectID:  objectID,
		CreatedAt: time.Now().UTC(),
	}
	select {
	case d.queue <- event:
	default:
		log.Warn().
			Int64("user_id", userID).
			Str("type", eventType).
			Msg("Notification queue full, event dropped")
	}
}

// Close stops accepting events and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
