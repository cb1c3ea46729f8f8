// Package access decides what a session may see and do. All role and status
// checks for routes and admin actions live here.
package access

import "stockx-backend-go/internal/models"

// Session is the resolved authentication state for one client.
type Session struct {
	User    *models.Identity `json:"user"`
	Profile *models.Profile  `json:"profile"`
	Loading bool             `json:"loading"`
}

// EventType names an auth-state change.
type EventType int

const (
	// EventResolving marks the start of identity resolution.
	EventResolving EventType = iota
	EventSignedIn
	EventProfileLoaded
	EventProfileMissing
	EventSignedOut
)

// Event is one auth-state change fed to Reduce.
type Event struct {
	Type     EventType
	Identity *models.Identity
	Profile  *models.Profile
}

// Resolving starts a lookup.
func Resolving() Event { return Event{Type: EventResolving} }

// SignedIn records a verified identity. The profile is still unknown.
func SignedIn(identity *models.Identity) Event {
	return Event{Type: EventSignedIn, Identity: identity}
}

// ProfileLoaded attaches the stored profile.
func ProfileLoaded(profile *models.Profile) Event {
	return Event{Type: EventProfileLoaded, Profile: profile}
}

// ProfileMissing marks a signed-in identity without a profile document.
func ProfileMissing() Event { return Event{Type: EventProfileMissing} }

// SignedOut clears the session.
func SignedOut() Event { return Event{Type: EventSignedOut} }

// Reduce applies ev to state and returns the next session. It never mutates state.
func Reduce(state Session, ev Event) Session {
	switch ev.Type {
	case EventResolving:
		return Session{User: state.User, Profile: state.Profile, Loading: true}
	case EventSignedIn:
		if ev.Identity == nil {
			return Session{}
		}
		// The profile is fetched next; stay loading until it arrives.
		return Session{User: ev.Identity, Loading: true}
	case EventProfileLoaded:
		if state.User == nil {
			return Session{}
		}
		return Session{User: state.User, Profile: ev.Profile}
	case EventProfileMissing:
		if state.User == nil {
			return Session{}
		}
		return Session{User: state.User}
	case EventSignedOut:
		return Session{}
	}
	return state
}

// Build folds events into a session starting from the zero state.
func Build(events ...Event) Session {
	var s Session
	for _, ev := range events {
		s = Reduce(s, ev)
	}
	return s
}
