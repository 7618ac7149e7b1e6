package order

import (
	"errors"
	"time"
)

var (
	ErrInvalidStatus     = errors.New("order: unknown status")
	ErrInvalidTransition = errors.New("order: status transition not allowed")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the explicit lifecycle graph. Completed and cancelled are
// terminal; there is no way back from either.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ParseStatus validates a raw status value against the fixed set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle graph permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the order along the lifecycle graph and stamps LastUpdated.
// Cancelling does not restock the batch; stock stays consumed.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if !o.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.Status = next
	o.LastUpdated = now
	return nil
}
