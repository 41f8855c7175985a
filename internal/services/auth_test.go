package services

import (
	"context"
	"net/http"
	"testing"

	"votemate/internal/apperr"
	"votemate/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if res.User.Username != "alice" || res.User.Email != "alice@x.com" || res.User.Role != models.RoleUser {
		t.Errorf("unexpected user: %+v", res.User)
	}
	if res.Token == "" {
		t.Error("expected a token")
	}

	var stored models.User
	if err := env.db.First(&stored, "id = ?", res.User.UserID).Error; err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.Password == "secret1" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"same email", RegisterInput{Username: "alice2", Email: "alice@x.com", Password: "secret1"}},
		{"same email other case", RegisterInput{Username: "alice3", Email: "ALICE@x.com", Password: "secret1"}},
		{"same username", RegisterInput{Username: "alice", Email: "other@x.com", Password: "secret1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.in)
			if !apperr.Is(err, apperr.KindConflict) {
				t.Fatalf("expected ConflictError, got %v", err)
			}
			if status := apperr.As(err).HTTPStatus(); status != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", status)
			}
		})
	}

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Email: "a@x.com", Password: "secret1"}, "username"},
		{"markup only username", RegisterInput{Username: "<b></b>", Email: "a@x.com", Password: "secret1"}, "username"},
		{"missing email", RegisterInput{Username: "a", Password: "secret1"}, "email"},
		{"bad email", RegisterInput{Username: "a", Email: "not-an-email", Password: "secret1"}, "email"},
		{"email without domain dot", RegisterInput{Username: "a", Email: "a@localhost", Password: "secret1"}, "email"},
		{"short password", RegisterInput{Username: "a", Email: "a@x.com", Password: "12345"}, "password"},
		{"unknown role", RegisterInput{Username: "a", Email: "a@x.com", Password: "secret1", Role: "root"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.in)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, d := range apperr.As(err).Details {
				if d.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected detail for %s, got %+v", tt.field, apperr.As(err).Details)
			}
		})
	}
}

func TestRegisterAdminRole(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.auth.Register(context.Background(), RegisterInput{
		Username: "root", Email: "root@x.com", Password: "secret1", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if res.User.Role != models.RoleAdmin {
		t.Errorf("expected admin role, got %s", res.User.Role)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	res, err := env.auth.Login(ctx, "alice@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.User.UserID != alice.UserID || res.Token == "" {
		t.Errorf("unexpected login result: %+v", res)
	}

	_, wrongPass := env.auth.Login(ctx, "alice@x.com", "wrongpass")
	_, noUser := env.auth.Login(ctx, "nobody@x.com", "secret1")
	for _, err := range []error{wrongPass, noUser} {
		if !apperr.Is(err, apperr.KindAuthentication) {
			t.Fatalf("expected AuthenticationError, got %v", err)
		}
	}
	if wrongPass.Error() != noUser.Error() {
		t.Errorf("login failures must not reveal which emails exist: %q vs %q", wrongPass, noUser)
	}

	if _, err := env.auth.Login(ctx, "", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected ValidationError for empty credentials, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res, err := env.auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	id, err := env.auth.Resolve(ctx, res.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if *id != *res.User {
		t.Errorf("expected %+v, got %+v", res.User, id)
	}

	if _, err := env.auth.Resolve(ctx, ""); !apperr.Is(err, apperr.KindAuthentication) {
		t.Errorf("missing token: expected AuthenticationError, got %v", err)
	}
	if _, err := env.auth.Resolve(ctx, "garbage"); !apperr.Is(err, apperr.KindAuthentication) {
		t.Errorf("malformed token: expected AuthenticationError, got %v", err)
	}

	ghost, _ := env.auth.Tokens().Issue("7d2c3b4a-1e5f-4a6b-8c9d-0e1f2a3b4c5d", "ghost@x.com", "user")
	if _, err := env.auth.Resolve(ctx, ghost); !apperr.Is(err, apperr.KindAuthentication) {
		t.Errorf("unknown user: expected AuthenticationError, got %v", err)
	}
}
