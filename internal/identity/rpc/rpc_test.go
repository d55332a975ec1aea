package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/goliatone/go-gamesync/internal/identity/local"
	"github.com/goliatone/go-gamesync/internal/storage/memory"
	"github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/viant/jsonrpc"
	"golang.org/x/crypto/bcrypt"
)

func newLoopbackClient(t *testing.T) *Client {
	t.Helper()
	svc, err := local.New(memory.NewUserRepository(), "title-secret", local.WithHashCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("local service: %v", err)
	}
	client, err := NewClient(Loopback{Handler: NewHandler(svc, nil)})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return client
}

func TestClientRoundTripsThroughHandler(t *testing.T) {
	client := newLoopbackClient(t)
	ctx := context.Background()

	reg, err := client.Register(ctx, "r@example.com", "secret1", "R")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.NewlyCreated || reg.Token == "" {
		t.Fatalf("unexpected session %+v", reg)
	}
	login, err := client.Login(ctx, "r@example.com", "secret1")
	if err != nil || login.UserID != reg.UserID {
		t.Fatalf("login: %+v %v", login, err)
	}
	version, err := client.UpdateUserData(ctx, login.Token, map[string]string{"Bio": "hello"})
	if err != nil || version != 1 {
		t.Fatalf("update: %d %v", version, err)
	}
	data, err := client.GetUserData(ctx, login.Token, []string{"Bio"})
	if err != nil || data["Bio"] != "hello" {
		t.Fatalf("get: %v %v", data, err)
	}
}

func TestClientMapsRemoteErrors(t *testing.T) {
	client := newLoopbackClient(t)
	ctx := context.Background()

	if _, err := client.Login(ctx, "none@example.com", "secret1"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := client.Register(ctx, "d@example.com", "secret1", "D"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := client.Register(ctx, "d@example.com", "secret1", "D"); !errors.Is(err, identity.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
	if _, err := client.GetUserData(ctx, "bogus", nil); !errors.Is(err, identity.ErrInvalidSession) {
		t.Fatalf("expected invalid session, got %v", err)
	}
}

func TestHandlerRejectsUnknownMethodAndBadParams(t *testing.T) {
	h := NewHandler(nil, nil)
	ctx := context.Background()

	resp := &jsonrpc.Response{}
	if rpcErr := h.Serve(ctx, &jsonrpc.Request{Method: "identity.nope"}, resp); rpcErr == nil || rpcErr.Code != jsonrpc.MethodNotFound {
		t.Fatalf("expected method not found, got %v", rpcErr)
	}
	if rpcErr := h.Serve(ctx, &jsonrpc.Request{Method: MethodLogin}, resp); rpcErr == nil || rpcErr.Code != jsonrpc.InvalidParams {
		t.Fatalf("expected invalid params, got %v", rpcErr)
	}
	bad := &jsonrpc.Request{Method: MethodLogin, Params: json.RawMessage(`[1,2]`)}
	if rpcErr := h.Serve(ctx, bad, resp); rpcErr == nil || rpcErr.Code != jsonrpc.InvalidParams {
		t.Fatalf("expected invalid params for wrong shape, got %v", rpcErr)
	}
}

func TestUnknownRemoteCodeBecomesRemoteError(t *testing.T) {
	err := fromRPCError(MethodLogin, &jsonrpc.Error{Code: jsonrpc.InternalError, Message: "db down"})
	var remote *RemoteError
	if !errors.As(err, &remote) || remote.Code != jsonrpc.InternalError {
		t.Fatalf("expected remote error, got %v", err)
	}
	if _, err := NewClient(nil); err == nil {
		t.Fatalf("expected error for nil sender")
	}
}
