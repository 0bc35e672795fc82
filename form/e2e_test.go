package form

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	apiclient "qlink-client/api"
	"qlink-client/config"
	"qlink-client/guard"
	"qlink-client/model"
	"qlink-client/session"
	"qlink-client/stubserver"
)

// Full client-against-backend flow: register, log in, pass the route
// guard, shorten.
func TestEndToEndAgainstStubBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	stub := stubserver.New(config.StubConfig{JWTSecret: "test-secret", TokenTTLHours: 1},
		config.RedisConfig{OperationTimeout: 5}, rdb)
	ts := httptest.NewServer(stub.Router())
	t.Cleanup(ts.Close)

	store := session.New(filepath.Join(t.TempDir(), "session.json"), session.OriginOf(ts.URL))
	client := apiclient.New(config.APIConfig{
		LoginURL:       ts.URL + "/api/auth/login",
		RegisterURL:    ts.URL + "/api/auth/register",
		ShortenURL:     ts.URL + "/api/shorten",
		RequestTimeout: 5,
	}, store.Get)
	nav := &recordingNav{}

	// Unauthenticated: the home page must bounce to login.
	if route, redirect := guard.Decide(guard.PageProtected, store.IsAuthenticated()); !redirect || route != guard.RouteLogin {
		t.Fatalf("Decide(protected, unauthenticated) = %q/%v, want redirect to login", route, redirect)
	}

	// Register.
	register := New(model.FormRegister, Deps{API: client, Nav: nav})
	setFields(register, map[string]string{
		model.FieldUsername:        "alice",
		model.FieldEmail:           "alice@example.com",
		model.FieldPassword:        "secret1",
		model.FieldConfirmPassword: "secret1",
	})
	if err := register.Submit(context.Background()); err != nil {
		t.Fatalf("register Submit() error = %v", err)
	}
	register.Close()

	if store.IsAuthenticated() {
		t.Fatal("Registration must not establish a session")
	}
	if route, _ := nav.last(); route != guard.RouteLogin {
		t.Fatalf("Registration navigated to %q, want login", route)
	}

	// Log in.
	login := New(model.FormLogin, Deps{API: client, Sessions: store, Nav: nav})
	setFields(login, map[string]string{
		model.FieldEmail:    "alice@example.com",
		model.FieldPassword: "secret1",
	})
	if err := login.Submit(context.Background()); err != nil {
		t.Fatalf("login Submit() error = %v", err)
	}
	login.Close()

	if !store.IsAuthenticated() {
		t.Fatal("Login did not establish a session")
	}
	if route, _ := nav.last(); route != guard.RouteHome {
		t.Fatalf("Login navigated to %q, want home", route)
	}

	// Authenticated: login page bounces home, home page mounts.
	if route, redirect := guard.Decide(guard.PagePublicAuth, store.IsAuthenticated()); !redirect || route != guard.RouteHome {
		t.Fatalf("Decide(auth page, authenticated) = %q/%v, want redirect home", route, redirect)
	}
	if _, redirect := guard.Decide(guard.PageProtected, store.IsAuthenticated()); redirect {
		t.Fatal("Decide(protected, authenticated) should not redirect")
	}

	// Shorten.
	results := &fakeResults{}
	shorten := New(model.FormShorten, Deps{API: client, Results: results})
	shorten.SetField(model.FieldURL, "https://example.com/a/b")
	if err := shorten.Submit(context.Background()); err != nil {
		t.Fatalf("shorten Submit() error = %v", err)
	}
	shorten.Close()

	if results.puts != 1 || results.short == "" {
		t.Fatalf("Shorten result = %+v, want one stored short URL", results)
	}

	// Logout: clearing the pair flips the guard back.
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if route, redirect := guard.Decide(guard.PageProtected, store.IsAuthenticated()); !redirect || route != guard.RouteLogin {
		t.Fatalf("Decide after logout = %q/%v, want redirect to login", route, redirect)
	}
}
