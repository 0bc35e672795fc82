package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"qlink-client/config"
	"qlink-client/model"
)

func testConfig(base string) config.APIConfig {
	return config.APIConfig{
		LoginURL:       base + "/api/auth/login",
		RegisterURL:    base + "/api/auth/register",
		ShortenURL:     base + "/api/shorten",
		RequestTimeout: 5,
	}
}

func TestLoginDecodesTokenPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","userId":"u1"}`))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), nil)
	resp, err := client.Login(context.Background(), model.LoginRequest{Email: "user@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken != "tok" || resp.UserID != "u1" {
		t.Errorf("Login() = %+v, want tok/u1", resp)
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid email or password."}`))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), nil)
	_, err := client.Login(context.Background(), model.LoginRequest{Email: "user@example.com", Password: "wrong1"})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login() error = %v, want *api.Error", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "Invalid email or password." {
		t.Errorf("Message = %q, want server text verbatim", apiErr.Message)
	}
}

func TestServerErrorWithoutBodyHasNoMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), nil)
	err := client.Register(context.Background(), model.RegisterRequest{Username: "alice", Email: "a@b.co", Password: "secret1"})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Register() error = %v, want *api.Error", err)
	}
	if apiErr.Message != "" {
		t.Errorf("Message = %q, want empty", apiErr.Message)
	}
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := New(testConfig(srv.URL), nil)
	_, err := client.Shorten(context.Background(), model.ShortenRequest{OriginalURL: "https://example.com"})
	if err == nil {
		t.Fatal("Shorten() against closed server should fail")
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Errorf("Transport failure classified as *api.Error: %v", err)
	}
}

func TestShortenAttachesBearerWhenAuthenticated(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"shortUrl":"https://short.ly/xyz"}`))
	}))
	defer srv.Close()

	token := model.SessionToken{AccessToken: "tok", UserID: "u1"}
	client := New(testConfig(srv.URL), func() model.SessionToken { return token })

	resp, err := client.Shorten(context.Background(), model.ShortenRequest{OriginalURL: "https://example.com/a/b"})
	if err != nil {
		t.Fatalf("Shorten() error = %v", err)
	}
	if resp.ShortURL != "https://short.ly/xyz" {
		t.Errorf("ShortURL = %q", resp.ShortURL)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", gotAuth)
	}

	// A partial pair must not be sent.
	token = model.SessionToken{AccessToken: "tok"}
	if _, err := client.Shorten(context.Background(), model.ShortenRequest{OriginalURL: "https://example.com"}); err != nil {
		t.Fatalf("Shorten() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q for partial session, want none", gotAuth)
	}
}
