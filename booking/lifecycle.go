package booking

// Status is the booking lifecycle state. pending is the sole initial state
// unless instant-book short-circuits straight to confirmed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// ActiveStatuses are the states that hold dates against a property.
var ActiveStatuses = []string{string(StatusPending), string(StatusConfirmed)}

// Actor is who is asking for a transition.
type Actor string

const (
	ActorGuest  Actor = "guest"
	ActorHost   Actor = "host"
	ActorSystem Actor = "system"
)

// transitions maps from-state to to-state to the actors allowed to drive it.
var transitions = map[Status]map[Status][]Actor{
	StatusPending: {
		StatusConfirmed: {ActorHost},
		StatusRejected:  {ActorHost},
		StatusCancelled: {ActorGuest},
	},
	StatusConfirmed: {
		StatusCancelled: {ActorGuest, ActorHost},
		StatusCompleted: {ActorSystem},
	},
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// CheckTransition validates a requested status change. An undefined edge is
// InvalidTransition; a defined edge requested by the wrong actor is
// Forbidden. Guard violations never mutate anything.
func CheckTransition(from, to Status, actor Actor) error {
	allowed, ok := transitions[from][to]
	if !ok {
		return errInvalidTransition(from, to)
	}
	for _, a := range allowed {
		if a == actor {
			return nil
		}
	}
	return errForbidden("status", string(actor)+" may not set a booking to "+string(to))
}
