package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-digest/app/dashboard"
	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/identity"
)

const (
	verificationSentMessage = "A verification email has been sent. Please check your inbox."
	loggedOutMessage        = "Logged out successfully!"
	sessionEndedMessage     = "Your session has ended. Please sign in again."
)

func NewHandler(provider identity.Provider, sessions SessionStore, version string) *Handler {
	return &Handler{
		identity: provider,
		sessions: sessions,
		version:  version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sessions":  h.sessions.Len(),
		"version":   h.version,
	})
}

func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email and password are required"})
		return
	}

	session, err := h.identity.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(c, err, "Sign-in failed. Please try again.")
		return
	}

	h.openSession(c, session)
}

func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, password and display name are required"})
		return
	}

	result, err := h.identity.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.respondAuthError(c, err, "Sign-up failed. Please try again.")
		return
	}

	if result.NeedsEmailVerification {
		c.JSON(http.StatusOK, gin.H{
			"needs_email_verification": true,
			"notification":             digest.Success(verificationSentMessage),
		})
		return
	}

	h.openSession(c, result.Session)
}

func (h *Handler) SignOut(c *gin.Context) {
	session := currentSession(c)

	h.sessions.Remove(session.Token())

	if err := h.identity.SignOut(c.Request.Context(), session.RefreshToken()); err != nil {
		slog.Warn("Identity sign-out failed", "user_id", session.User().ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"notification": digest.Success(loggedOutMessage)})
}

func (h *Handler) GetArticles(c *gin.Context) {
	session := currentSession(c)

	if value, ok := c.GetQuery("filter"); ok {
		filter, err := digest.ParseFilter(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		session.SetFilter(filter)
	}
	if value, ok := c.GetQuery("category"); ok {
		if value == "" {
			value = digest.CategoryAll
		}
		session.SetCategory(value)
	}
	if value, ok := c.GetQuery("q"); ok {
		session.SetSearch(value)
	}

	c.JSON(http.StatusOK, session.View())
}

func (h *Handler) LoadMore(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).LoadMore())
}

func (h *Handler) ToggleSaved(c *gin.Context) {
	h.toggle(c, currentSession(c).ToggleSaved)
}

func (h *Handler) ToggleLiked(c *gin.Context) {
	h.toggle(c, currentSession(c).ToggleLiked)
}

func (h *Handler) ToggleRead(c *gin.Context) {
	h.toggle(c, currentSession(c).ToggleRead)
}

func (h *Handler) toggle(c *gin.Context, fn func(string) (digest.Annotation, digest.Notification, error)) {
	articleID := c.Param("id")

	annotation, notification, err := fn(articleID)
	if err != nil {
		h.respondArticleError(c, articleID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article_id":   articleID,
		"state":        annotation,
		"notification": notification,
	})
}

func (h *Handler) Share(c *gin.Context) {
	articleID := c.Param("id")

	url, notification, err := currentSession(c).Share(articleID)
	if err != nil {
		h.respondArticleError(c, articleID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article_id":   articleID,
		"url":          url,
		"notification": notification,
	})
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": currentSession(c).Categories(),
	})
}

func (h *Handler) openSession(c *gin.Context, auth *identity.Session) {
	session, err := h.sessions.Create(auth)
	if session == nil {
		slog.Error("Failed to open dashboard session", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sign-in failed. Please try again."})
		return
	}
	if err != nil {
		slog.Warn("Dashboard session opened without article load", "user_id", auth.User.ID, "error", err)
	}

	c.JSON(http.StatusOK, sessionResponse{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		ExpiresIn:    auth.AccessTokenExpiresIn,
		ExpiresAt:    auth.ExpiresAt(time.Now()).UTC(),
		User:         auth.User,
	})
}

func (h *Handler) respondAuthError(c *gin.Context, err error, fallback string) {
	var authErr *identity.AuthError
	if errors.As(err, &authErr) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":        authErr.Message,
			"code":         authErr.Code,
			"notification": digest.Failure(authErr.Message),
		})
		return
	}

	slog.Error("Identity request failed", "error", err)
	c.JSON(http.StatusBadGateway, gin.H{
		"error":        fallback,
		"notification": digest.Failure(fallback),
	})
}

func (h *Handler) respondArticleError(c *gin.Context, articleID string, err error) {
	if errors.Is(err, dashboard.ErrArticleNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found", "article_id": articleID})
		return
	}
	if errors.Is(err, dashboard.ErrSessionClosed) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": sessionEndedMessage})
		return
	}

	slog.Error("Article action failed", "article_id", articleID, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func currentSession(c *gin.Context) *dashboard.Session {
	return c.MustGet(sessionKey).(*dashboard.Session)
}
