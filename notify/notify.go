package notify

// Publisher pushes a lifecycle event to the logical channel of one customer.
// Delivery is at-most-once, best effort: callers fire it after their
// transaction commits and never block on it, and clients re-fetch
// authoritative state on demand anyway.
type Publisher interface {
	Publish(customerID string, event Event)
}

// Event is a named payload pushed over the realtime channel.
type Event interface {
	Name() string
}

// BookingStatusEvent announces a booking status change (approval, rejection,
// cancellation, completion cascade).
type BookingStatusEvent struct {
	BookingID uint   `json:"bookingId"`
	Status    string `json:"status"`
}

func (BookingStatusEvent) Name() string { return "booking-status-updated" }

// TaskProgressEvent announces the {completed, total} task counters of a job
// card after a task completion.
type TaskProgressEvent struct {
	BookingID uint  `json:"bookingId"`
	JobCardID uint  `json:"jobCardId"`
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

func (TaskProgressEvent) Name() string { return "task-progress-updated" }

// NopPublisher drops every event; useful where no realtime channel exists.
type NopPublisher struct{}

func (NopPublisher) Publish(string, Event) {}
