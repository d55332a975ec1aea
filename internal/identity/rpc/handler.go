package rpc

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
)

// Handler exposes an identity.Service as JSON-RPC methods.
type Handler struct {
	svc    identity.Service
	logger logger.Logger
}

var _ transport.Handler = (*Handler)(nil)

func NewHandler(svc identity.Service, lgr logger.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.OrNop(lgr)}
}

// NewHandlerFunc adapts h for transports that build a handler per session.
func (h *Handler) NewHandlerFunc() transport.NewHandler {
	return func(context.Context, transport.Transport) transport.Handler { return h }
}

func (h *Handler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) *jsonrpc.Error {
	var (
		result any
		err    error
	)
	switch request.Method {
	case MethodLogin:
		var p loginParams
		if rpcErr := decodeParams(request, &p); rpcErr != nil {
			return rpcErr
		}
		result, err = h.svc.Login(ctx, p.Email, p.Password)
	case MethodRegister:
		var p registerParams
		if rpcErr := decodeParams(request, &p); rpcErr != nil {
			return rpcErr
		}
		result, err = h.svc.Register(ctx, p.Email, p.Password, p.DisplayName)
	case MethodGetUserData:
		var p getDataParams
		if rpcErr := decodeParams(request, &p); rpcErr != nil {
			return rpcErr
		}
		result, err = h.svc.GetUserData(ctx, p.Token, p.Keys)
	case MethodUpdateUserData:
		var p updateDataParams
		if rpcErr := decodeParams(request, &p); rpcErr != nil {
			return rpcErr
		}
		var version int
		version, err = h.svc.UpdateUserData(ctx, p.Token, p.Data)
		result = updateDataResult{DataVersion: version}
	default:
		return &jsonrpc.Error{Code: jsonrpc.MethodNotFound, Message: "unknown method " + request.Method}
	}
	if err != nil {
		h.logger.Debug("identity rpc call failed", logger.F("method", request.Method), logger.Err(err))
		return toRPCError(err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return &jsonrpc.Error{Code: jsonrpc.InternalError, Message: err.Error()}
	}
	response.Result = data
	return nil
}

func (h *Handler) OnNotification(context.Context, *jsonrpc.Notification) *jsonrpc.Error {
	return nil
}

func (h *Handler) OnError(_ context.Context, rpcErr *jsonrpc.Error) *jsonrpc.Error {
	if rpcErr != nil {
		h.logger.Warn("identity rpc peer error", logger.F("code", rpcErr.Code), logger.F("message", rpcErr.Message))
	}
	return nil
}

func decodeParams(request *jsonrpc.Request, out any) *jsonrpc.Error {
	if len(request.Params) == 0 {
		return &jsonrpc.Error{Code: jsonrpc.InvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(request.Params, out); err != nil {
		return &jsonrpc.Error{Code: jsonrpc.InvalidParams, Message: err.Error()}
	}
	return nil
}
