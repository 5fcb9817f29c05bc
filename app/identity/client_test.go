package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_SignIn(t *testing.T) {
	var gotBody map[string]any
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"session": {
				"accessToken": "access-1",
				"accessTokenExpiresIn": 900,
				"refreshToken": "refresh-1",
				"user": {"id": "user-1", "email": "ann@example.com", "displayName": "Ann"}
			},
			"mfa": null
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "News Digest/test", time.Second, nil)

	session, err := client.SignIn(context.Background(), "ann@example.com", "secret")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotPath != "/signin/email-password" {
		t.Errorf("Expected sign-in path, got '%s'", gotPath)
	}
	if gotBody["email"] != "ann@example.com" || gotBody["password"] != "secret" {
		t.Errorf("Unexpected request body: %v", gotBody)
	}
	if session.AccessToken != "access-1" || session.RefreshToken != "refresh-1" {
		t.Errorf("Unexpected session tokens: %+v", session)
	}
	if session.User.ID != "user-1" || session.User.DisplayName != "Ann" {
		t.Errorf("Unexpected user: %+v", session.User)
	}

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !session.ExpiresAt(issued).Equal(issued.Add(15 * time.Minute)) {
		t.Errorf("Unexpected expiry: %s", session.ExpiresAt(issued))
	}
}

func TestClient_SignInRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":401,"message":"Incorrect email or password","error":"invalid-email-password"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, nil)

	_, err := client.SignIn(context.Background(), "ann@example.com", "wrong")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %v", err)
	}
	if authErr.Message != "Incorrect email or password" {
		t.Errorf("Expected service message, got '%s'", authErr.Message)
	}
	if authErr.Code != "invalid-email-password" {
		t.Errorf("Expected error code, got '%s'", authErr.Code)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", authErr.Status)
	}
}

func TestClient_SignInFallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, nil)

	_, err := client.SignIn(context.Background(), "ann@example.com", "secret")
	if err == nil || err.Error() != "Sign-in failed. Please try again." {
		t.Errorf("Expected fallback message, got %v", err)
	}
}

func TestClient_SignInUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "", time.Second, nil)

	_, err := client.SignIn(context.Background(), "ann@example.com", "secret")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %v", err)
	}
	if authErr.Message != "Sign-in failed. Please try again." {
		t.Errorf("Expected fallback message, got '%s'", authErr.Message)
	}
}

func TestClient_SignInWithoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"session": null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, nil)

	_, err := client.SignIn(context.Background(), "ann@example.com", "secret")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %v", err)
	}
	if authErr.Code != "unverified-user" {
		t.Errorf("Expected unverified-user code, got '%s'", authErr.Code)
	}
}

func TestClient_SignUp(t *testing.T) {
	var gotBody struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Options  struct {
			DisplayName string `json:"displayName"`
		} `json:"options"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/signup/email-password" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(`{"session": null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, nil)

	result, err := client.SignUp(context.Background(), "bob@example.com", "secret", "Bob")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotBody.Options.DisplayName != "Bob" {
		t.Errorf("Expected display name 'Bob', got '%s'", gotBody.Options.DisplayName)
	}
	if !result.NeedsEmailVerification {
		t.Error("Expected email verification to be required")
	}
	if result.Session != nil {
		t.Error("Expected no session before verification")
	}
}

func TestClient_SignUpRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"status":409,"message":"Email already in use","error":"email-already-in-use"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, nil)

	_, err := client.SignUp(context.Background(), "bob@example.com", "secret", "Bob")
	if err == nil || err.Error() != "Email already in use" {
		t.Errorf("Expected service message, got %v", err)
	}
}

func TestClient_SignOut(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotToken = body["refreshToken"]
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0, nil)

	if err := client.SignOut(context.Background(), "refresh-1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gotToken != "refresh-1" {
		t.Errorf("Expected refresh token in body, got '%s'", gotToken)
	}
}
