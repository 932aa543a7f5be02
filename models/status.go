package models

import "fmt"

// BookingStatus is the closed set of booking lifecycle states.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// bookingTransitions is the full edge set of the booking state machine.
// Terminal states (rejected, cancelled, completed) have no outgoing edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingApproved, BookingRejected, BookingCancelled},
	BookingApproved: {BookingCompleted, BookingCancelled},
}

// CanTransition reports whether to is a legal next state.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the state has no outgoing transitions.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch s := BookingStatus(raw); s {
	case BookingPending, BookingApproved, BookingRejected, BookingCancelled, BookingCompleted:
		return s, nil
	}
	return "", fmt.Errorf("unknown booking status %q", raw)
}

// JobStatus is the closed set of job card lifecycle states.
type JobStatus string

const (
	JobOpen               JobStatus = "open"
	JobInProgress         JobStatus = "in_progress"
	JobReadyForCompletion JobStatus = "ready_for_completion"
	JobCompleted          JobStatus = "completed"
)

// jobTransitions: the normal path is open -> in_progress ->
// ready_for_completion -> completed. A manager finalizing without per-task
// tracking may jump straight to completed, and a job whose tasks all finish
// before anyone pressed "start" may reach ready_for_completion from open.
var jobTransitions = map[JobStatus][]JobStatus{
	JobOpen:               {JobInProgress, JobReadyForCompletion, JobCompleted},
	JobInProgress:         {JobReadyForCompletion, JobCompleted},
	JobReadyForCompletion: {JobCompleted},
}

func (s JobStatus) CanTransition(to JobStatus) bool {
	for _, t := range jobTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

func (s JobStatus) Terminal() bool {
	return len(jobTransitions[s]) == 0
}

func ParseJobStatus(raw string) (JobStatus, error) {
	switch s := JobStatus(raw); s {
	case JobOpen, JobInProgress, JobReadyForCompletion, JobCompleted:
		return s, nil
	}
	return "", fmt.Errorf("unknown job status %q", raw)
}

// InvoiceStatus covers the single mutable bit of an invoice.
type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

// AvailabilityStatus is the mechanic availability flag flipped on assignment.
// It is advisory, not authoritative for scheduling.
type AvailabilityStatus string

const (
	MechanicAvailable AvailabilityStatus = "available"
	MechanicBusy      AvailabilityStatus = "busy"
)
