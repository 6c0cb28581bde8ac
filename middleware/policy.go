package middleware

import "strings"

// State is the caller's authentication state as seen by the router guard.
type State int

const (
	Unauthenticated State = iota
	AuthenticatedNoRole
	AuthenticatedStudent
	AuthenticatedInstructor
	AuthenticatedAdmin
)

func (s State) String() string {
	switch s {
	case AuthenticatedNoRole:
		return "no_role"
	case AuthenticatedStudent:
		return "student"
	case AuthenticatedInstructor:
		return "instructor"
	case AuthenticatedAdmin:
		return "admin"
	default:
		return "unauthenticated"
	}
}

const (
	PathLanding             = "/"
	PathCompleteProfile     = "/complete-profile"
	PathDashboard           = "/dashboard"
	PathInstructorDashboard = "/instructor/dashboard"
)

// Action is what the guard does with a request.
type Action string

const (
	Forward  Action = "forward"
	Redirect Action = "redirect"
)

type Decision struct {
	Action   Action
	Location string
}

func forward() Decision              { return Decision{Action: Forward} }
func redirectTo(loc string) Decision { return Decision{Action: Redirect, Location: loc} }

// alwaysForward lists endpoints that authenticate by other means (webhook
// signatures) or must stay reachable for every state.
var alwaysForward = map[string]bool{
	"/api/webhook":          true,
	"/api/webhooks/addUser": true,
	"/api/user/update":      true,
	"/api/db":               true,
	"/healthz":              true,
	"/metrics":              true,
}

// Decide maps a state and request path to a guard decision. It has no side effects.
func Decide(state State, path string) Decision {
	path = cleanPath(path)
	if alwaysForward[path] {
		return forward()
	}
	switch state {
	case Unauthenticated:
		if path == PathLanding {
			return forward()
		}
		return redirectTo(PathLanding)
	case AuthenticatedNoRole:
		if path == PathCompleteProfile {
			return forward()
		}
		return redirectTo(PathCompleteProfile)
	case AuthenticatedStudent:
		if path == PathLanding || path == PathCompleteProfile {
			return redirectTo(PathDashboard)
		}
		return forward()
	case AuthenticatedInstructor:
		if path == PathLanding || path == PathCompleteProfile {
			return redirectTo(PathInstructorDashboard)
		}
		if under(path, "/instructor") || strings.HasPrefix(path, "/api/") {
			return forward()
		}
		return redirectTo(PathInstructorDashboard)
	default:
		return forward()
	}
}

func under(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func cleanPath(p string) string {
	if p == "" {
		return PathLanding
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return PathLanding
		}
	}
	return p
}
