package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-gamesync/internal/identity/local"
	"github.com/goliatone/go-gamesync/internal/storage/memory"
	identityiface "github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/goliatone/go-gamesync/pkg/secrets"
	"golang.org/x/crypto/bcrypt"
)

func localOpener(_ context.Context, _ Config, secret string) (identityiface.Service, error) {
	return local.New(memory.NewUserRepository(), secret, local.WithHashCost(bcrypt.MinCost))
}

type brokenService struct{ identityiface.Service }

func (brokenService) GetUserData(context.Context, string, []string) (map[string]string, error) {
	return nil, errors.New("connection reset")
}

func (brokenService) UpdateUserData(context.Context, string, map[string]string) (int, error) {
	return 0, errors.New("connection reset")
}

func newClient(t *testing.T) *Client {
	t.Helper()
	return New(Config{TitleID: "T1", Credential: secrets.Credential{Literal: "title-secret"}}, nil, localOpener)
}

func TestRecordOperationsRequireSession(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	if _, err := client.GetUserData(ctx, "GameState"); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required, got %v", err)
	}
	if _, err := client.UpdateUserData(ctx, map[string]string{"a": "b"}); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required, got %v", err)
	}
}

func TestRegisterThenLogoutRequiresAuthentication(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	session, err := client.Register(ctx, "p@example.com", "secret1", "P")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if client.SessionToken() != session.Token || client.Session().UserID != session.UserID {
		t.Fatalf("session not installed")
	}
	version, err := client.UpdateUserData(ctx, map[string]string{"DisplayName": "P2"})
	if err != nil || version != 1 {
		t.Fatalf("update: %d %v", version, err)
	}
	data, err := client.GetUserData(ctx)
	if err != nil || data["DisplayName"] != "P2" {
		t.Fatalf("get: %v %v", data, err)
	}

	client.ClearSession()
	if _, err := client.UpdateUserData(ctx, map[string]string{"DisplayName": "P3"}); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required after logout, got %v", err)
	}

	if _, err := client.Login(ctx, "p@example.com", "bad"); !errors.Is(err, identityiface.ErrInvalidCredentials) {
		t.Fatalf("expected login error to propagate, got %v", err)
	}
	if client.SessionToken() != "" {
		t.Fatalf("failed login must not install a session")
	}
	if _, err := client.Login(ctx, "p@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestInvalidSessionMapsToAuthenticationRequired(t *testing.T) {
	client := newClient(t)
	client.SetSession(identityiface.Session{Token: "forged"})
	if _, err := client.GetUserData(context.Background()); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required, got %v", err)
	}
}

func TestTransportFailuresAreBenign(t *testing.T) {
	client := New(Config{Credential: secrets.Credential{Literal: "s"}}, nil,
		func(context.Context, Config, string) (identityiface.Service, error) { return brokenService{}, nil })
	client.SetSession(identityiface.Session{Token: "tok"})
	ctx := context.Background()

	data, err := client.GetUserData(ctx, "GameState")
	if err != nil || data == nil || len(data) != 0 {
		t.Fatalf("expected empty map, got %v %v", data, err)
	}
	version, err := client.UpdateUserData(ctx, map[string]string{"a": "b"})
	if err != nil || version != 0 {
		t.Fatalf("expected version 0, got %d %v", version, err)
	}
}

func TestUninitializedLoginPropagates(t *testing.T) {
	client := New(Config{}, nil, localOpener)
	if _, err := client.Login(context.Background(), "a@example.com", "secret1"); err == nil {
		t.Fatalf("expected uninitialized error")
	}
}
