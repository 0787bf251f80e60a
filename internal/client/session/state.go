package session

import "github.com/dmitrijs2005/siteauth/internal/client/models"

// Status is the state machine position derived from the session fields.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusAuthenticated
	StatusUnauthenticated
	StatusSessionError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusSessionError:
		return "session_error"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. User is a copy and may be modified
// freely by the receiver.
type State struct {
	User         *models.UserProfile
	Loading      bool
	Error        string
	SessionError bool
	Status       Status
}
