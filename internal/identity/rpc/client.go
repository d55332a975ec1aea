package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport/client/http/streamable"
)

// Sender delivers a request and waits for its response. transport.Transport
// implementations satisfy it.
type Sender interface {
	Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error)
}

// Client is an identity.Service that calls a remote JSON-RPC endpoint.
type Client struct {
	sender Sender
	seq    atomic.Int64
}

var _ identity.Service = (*Client)(nil)

func NewClient(sender Sender) (*Client, error) {
	if sender == nil {
		return nil, errors.New("identity rpc: sender required")
	}
	return &Client{sender: sender}, nil
}

// Dial connects to a streamable HTTP endpoint.
func Dial(ctx context.Context, endpoint string) (*Client, error) {
	transport, err := streamable.New(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("identity rpc: dial %s: %w", endpoint, err)
	}
	return NewClient(transport)
}

func (c *Client) Login(ctx context.Context, email, password string) (identity.Session, error) {
	var session identity.Session
	err := c.call(ctx, MethodLogin, loginParams{Email: email, Password: password}, &session)
	return session, err
}

func (c *Client) Register(ctx context.Context, email, password, displayName string) (identity.Session, error) {
	var session identity.Session
	err := c.call(ctx, MethodRegister, registerParams{Email: email, Password: password, DisplayName: displayName}, &session)
	return session, err
}

func (c *Client) GetUserData(ctx context.Context, token string, keys []string) (map[string]string, error) {
	var data map[string]string
	if err := c.call(ctx, MethodGetUserData, getDataParams{Token: token, Keys: keys}, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) UpdateUserData(ctx context.Context, token string, data map[string]string) (int, error) {
	var out updateDataResult
	if err := c.call(ctx, MethodUpdateUserData, updateDataParams{Token: token, Data: data}, &out); err != nil {
		return 0, err
	}
	return out.DataVersion, nil
}

func (c *Client) call(ctx context.Context, method string, params, out any) error {
	request, err := jsonrpc.NewRequest(method, params)
	if err != nil {
		return err
	}
	request.Id = c.seq.Add(1)
	response, err := c.sender.Send(ctx, request)
	if err != nil {
		return fmt.Errorf("identity rpc %s: %w", method, err)
	}
	if response == nil {
		return fmt.Errorf("identity rpc %s: empty response", method)
	}
	if response.Error != nil {
		return fromRPCError(method, response.Error)
	}
	if len(response.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(response.Result, out); err != nil {
		return fmt.Errorf("identity rpc %s: decode result: %w", method, err)
	}
	return nil
}
