package shop

import (
	"context"
	"path/filepath"
	"testing"
)

func TestCredentialsLifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.db")

	creds, err := OpenCredentials(path)
	if err != nil {
		t.Fatalf("open credentials: %v", err)
	}

	if tok, err := creds.Token(ctx); err != nil || tok != "" {
		t.Fatalf("fresh store token = %q, err %v", tok, err)
	}
	if u, err := creds.User(ctx); err != nil || u != nil {
		t.Fatalf("fresh store user = %v, err %v", u, err)
	}

	user := User{
		ID:       7,
		Name:     "Siti",
		Email:    "siti@example.com",
		Role:     "user",
		Customer: &Customer{Name: "Siti", Address: "Jl. Merdeka 1", BranchID: 2},
	}
	if err := creds.SetSession(ctx, "tok-abc", user); err != nil {
		t.Fatalf("set session: %v", err)
	}

	if err := creds.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Session survives a reopen, like an app restart.
	creds, err = OpenCredentials(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = creds.Close()
	}()

	tok, err := creds.Token(ctx)
	if err != nil || tok != "tok-abc" {
		t.Fatalf("token = %q, err %v", tok, err)
	}
	role, err := creds.Role(ctx)
	if err != nil || role != "user" {
		t.Fatalf("role = %q, err %v", role, err)
	}
	got, err := creds.User(ctx)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if got == nil || got.ID != 7 || got.Customer == nil || got.Customer.BranchID != 2 {
		t.Fatalf("unexpected user: %+v", got)
	}

	if err := creds.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if tok, err := creds.Token(ctx); err != nil || tok != "" {
		t.Fatalf("token after clear = %q, err %v", tok, err)
	}
	if u, err := creds.User(ctx); err != nil || u != nil {
		t.Fatalf("user after clear = %v, err %v", u, err)
	}
}

func TestCredentialsSetUserOverwrites(t *testing.T) {
	ctx := context.Background()
	creds := newTestCreds(t, "tok")

	updated := User{ID: 1, Name: "Budi Santoso", Email: "budi@example.com", Role: "user"}
	if err := creds.SetUser(ctx, updated); err != nil {
		t.Fatalf("set user: %v", err)
	}

	got, err := creds.User(ctx)
	if err != nil || got == nil {
		t.Fatalf("user: %v %v", got, err)
	}
	if got.Name != "Budi Santoso" {
		t.Errorf("name = %q, want updated name", got.Name)
	}
	// Token is untouched by a profile update.
	if tok, _ := creds.Token(ctx); tok != "tok" {
		t.Errorf("token = %q, want unchanged", tok)
	}
}
