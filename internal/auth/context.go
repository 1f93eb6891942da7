package auth

import (
	"context"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
)

// AuthType records how a request was authenticated
type AuthType string

const (
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeJWT    AuthType = "jwt"
)

// UserContext holds authenticated caller information
type UserContext struct {
	// PersonID is the staff user's person key; zero for API key callers
	PersonID uint
	Name     string
	Profile  domain.StaffProfile
	AuthType AuthType
}

// systemUser is attached to requests authenticated with the API key
func systemUser() *UserContext {
	return &UserContext{
		Name:     "System",
		Profile:  domain.StaffProfileSystem,
		AuthType: AuthTypeAPIKey,
	}
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// HasProfile checks if the caller has any of the given profiles
func (u *UserContext) HasProfile(profiles ...domain.StaffProfile) bool {
	for _, p := range profiles {
		if u.Profile == p {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the caller may run the pipeline and replace sources
func (u *UserContext) IsAdmin() bool {
	return u.HasProfile(domain.StaffProfileAdmin, domain.StaffProfileSystem)
}
