package orders

type Status string

const (
	StatusPending   Status = "pending"   // placed, awaiting payment
	StatusPaid      Status = "paid"      // payment recorded
	StatusShipped   Status = "shipped"   // handed to the carrier
	StatusCompleted Status = "completed" // received; terminal
	StatusCancelled Status = "cancelled" // stock returned; terminal
)

// transitions lists the only legal moves. Anything else is ignored.
var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusCompleted},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) Cancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CountsAsSale reports whether orders in this status contribute to sales totals.
func (s Status) CountsAsSale() bool {
	return s == StatusShipped || s == StatusCompleted
}
