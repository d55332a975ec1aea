package rpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
)

// Loopback is an in-process Sender. Requests and responses still go through
// the JSON wire encoding.
type Loopback struct {
	Handler transport.Handler
}

func (l Loopback) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	if l.Handler == nil {
		return nil, errors.New("identity rpc: loopback without handler")
	}
	wire, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	decoded := &jsonrpc.Request{}
	if err := json.Unmarshal(wire, decoded); err != nil {
		return nil, err
	}
	response := &jsonrpc.Response{Id: decoded.Id, Jsonrpc: decoded.Jsonrpc}
	if rpcErr := l.Handler.Serve(ctx, decoded, response); rpcErr != nil {
		response.Error = rpcErr
		response.Result = nil
	}
	wire, err = json.Marshal(response)
	if err != nil {
		return nil, err
	}
	out := &jsonrpc.Response{}
	if err := json.Unmarshal(wire, out); err != nil {
		return nil, err
	}
	return out, nil
}
