package identity

import (
	"context"
	"time"
)

// Provider is the hosted identity service used by the dashboard.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*SignUpResult, error)
	SignOut(ctx context.Context, refreshToken string) error
}

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type Session struct {
	AccessToken          string `json:"accessToken"`
	AccessTokenExpiresIn int    `json:"accessTokenExpiresIn"` // seconds
	RefreshToken         string `json:"refreshToken"`
	User                 User   `json:"user"`
}

func (s *Session) ExpiresAt(issuedAt time.Time) time.Time {
	return issuedAt.Add(time.Duration(s.AccessTokenExpiresIn) * time.Second)
}

type SignUpResult struct {
	Session                *Session
	NeedsEmailVerification bool
}

// AuthError is a sign-in or sign-up failure reported by the identity service.
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
