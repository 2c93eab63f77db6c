package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mediavault/adapters/clock"
	"mediavault/adapters/hasher"
	"mediavault/adapters/idgen"
	"mediavault/adapters/memory"
	"mediavault/app"
)

func newUserService() *app.UserService {
	return app.NewUserService(
		memory.NewUserStore(),
		hasher.Fake{},
		clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		idgen.NewSequential("user-"),
		zerolog.Nop(),
	)
}

func TestUserService_Register(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice@Example.COM ", "password123", " Alice ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if u.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized alice@example.com", u.Email)
	}
	if u.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", u.Name)
	}
	if u.ID == "" {
		t.Error("ID should be set")
	}
	if u.CreatedAt.IsZero() || !u.CreatedAt.Equal(u.UpdatedAt) {
		t.Errorf("timestamps = %v / %v, want equal and set", u.CreatedAt, u.UpdatedAt)
	}
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"missing at sign", "not-an-email", "password123", app.ErrInvalidEmail},
		{"short password", "bob@example.com", "short", app.ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, "Bob")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "password123", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Same address in a different case is still taken.
	_, err := svc.Register(ctx, "ALICE@example.com", "password456", "Other")
	if !errors.Is(err, app.ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := svc.Authenticate(ctx, "Alice@Example.com", "password123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("ID = %q, want %q", u.ID, created.ID)
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrongpass"); !errors.Is(err, app.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "password123"); !errors.Is(err, app.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestUserService_GetNotFound(t *testing.T) {
	svc := newUserService()

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, app.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}
