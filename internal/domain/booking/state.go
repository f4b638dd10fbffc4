package booking

import (
	"time"

	"github.com/shareit/service-booking/pkg/domain"
)

// State is a named listing shape relative to "now".
type State int

const (
	StateAll State = iota
	StateCurrent
	StatePast
	StateFuture
	StateWaiting
	StateRejected
)

var stateTokens = map[string]State{
	"ALL":      StateAll,
	"CURRENT":  StateCurrent,
	"PAST":     StatePast,
	"FUTURE":   StateFuture,
	"WAITING":  StateWaiting,
	"REJECTED": StateRejected,
}

// ParseState resolves a case-sensitive state token. An empty token means ALL.
func ParseState(token string) (State, error) {
	if token == "" {
		return StateAll, nil
	}
	s, ok := stateTokens[token]
	if !ok {
		return 0, domain.NewUnknownStateError(token)
	}
	return s, nil
}

func (s State) String() string {
	switch s {
	case StateAll:
		return "ALL"
	case StateCurrent:
		return "CURRENT"
	case StatePast:
		return "PAST"
	case StateFuture:
		return "FUTURE"
	case StateWaiting:
		return "WAITING"
	case StateRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Filter converts the state into a store filter evaluated at now.
func (s State) Filter(now time.Time) Filter {
	switch s {
	case StateCurrent:
		return ActiveAt(now)
	case StatePast:
		return EndedBefore(now)
	case StateFuture:
		return StartedAfter(now)
	case StateWaiting:
		return WithStatus(StatusWaiting)
	case StateRejected:
		return WithStatus(StatusRejected)
	default:
		return AnyTime()
	}
}
