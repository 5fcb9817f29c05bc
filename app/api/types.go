package api

import (
	"time"

	"github.com/lysyi3m/news-digest/app/dashboard"
	"github.com/lysyi3m/news-digest/app/identity"
)

type SessionStore interface {
	Create(auth *identity.Session) (*dashboard.Session, error)
	Get(token string) (*dashboard.Session, bool)
	Remove(token string) (*dashboard.Session, bool)
	Len() int
}

var _ SessionStore = (*dashboard.Registry)(nil)

type Handler struct {
	identity identity.Provider
	sessions SessionStore
	version  string
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type signUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
}

type sessionResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"`
	ExpiresAt    time.Time     `json:"expires_at"`
	User         identity.User `json:"user"`
}
