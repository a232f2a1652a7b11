package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type Status int

const (
	Anonymous Status = iota
	Authenticated
)

func (s Status) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// State is Anonymous or Authenticated(identity, role)
type State struct {
	Status   Status
	Identity Identity
	Role     Role
}

func AnonymousState() State {
	return State{Status: Anonymous}
}

func AuthenticatedState(id Identity, role Role) State {
	return State{Status: Authenticated, Identity: id, Role: role}
}

func (s State) IsAuthenticated() bool {
	return s.Status == Authenticated
}

func (s State) Is(role Role) bool {
	return s.IsAuthenticated() && s.Role == role
}

// StateView is the JSON shape of a State
type StateView struct {
	Status string `json:"status"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

func (s State) View() StateView {
	if !s.IsAuthenticated() {
		return StateView{Status: Anonymous.String()}
	}
	return StateView{
		Status: Authenticated.String(),
		UserID: s.Identity.UserID,
		Email:  s.Identity.Email,
		Role:   s.Role,
	}
}

type stateKey struct{}

const localsKey = "auth_state"

func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// FromContext returns the request's State; Anonymous when none was attached
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(stateKey{}).(State); ok {
		return s
	}
	return AnonymousState()
}

// StateOf reads the State the middleware attached to a fiber request
func StateOf(c *fiber.Ctx) State {
	if s, ok := c.Locals(localsKey).(State); ok {
		return s
	}
	return AnonymousState()
}

// SetState attaches s to the request for StateOf and FromContext
func SetState(c *fiber.Ctx, s State) {
	c.Locals(localsKey, s)
	c.SetUserContext(WithState(c.UserContext(), s))
}
