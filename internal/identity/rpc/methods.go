package rpc

import (
	"errors"

	"github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/viant/jsonrpc"
)

const (
	MethodLogin          = "identity.login"
	MethodRegister       = "identity.register"
	MethodGetUserData    = "identity.getUserData"
	MethodUpdateUserData = "identity.updateUserData"
)

// application error codes, outside the reserved -32768..-32000 range
const (
	CodeInvalidCredentials = 4001
	CodeEmailTaken         = 4009
	CodeInvalidSession     = 4010
)

type loginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type getDataParams struct {
	Token string   `json:"token"`
	Keys  []string `json:"keys,omitempty"`
}

type updateDataParams struct {
	Token string            `json:"token"`
	Data  map[string]string `json:"data"`
}

type updateDataResult struct {
	DataVersion int `json:"dataVersion"`
}

var codeErrors = map[int]error{
	CodeInvalidCredentials: identity.ErrInvalidCredentials,
	CodeEmailTaken:         identity.ErrEmailTaken,
	CodeInvalidSession:     identity.ErrInvalidSession,
}

func toRPCError(err error) *jsonrpc.Error {
	for code, sentinel := range codeErrors {
		if errors.Is(err, sentinel) {
			return &jsonrpc.Error{Code: code, Message: sentinel.Error()}
		}
	}
	return &jsonrpc.Error{Code: jsonrpc.InternalError, Message: err.Error()}
}

func fromRPCError(method string, rpcErr *jsonrpc.Error) error {
	if sentinel, ok := codeErrors[rpcErr.Code]; ok {
		return sentinel
	}
	return &RemoteError{Method: method, Code: rpcErr.Code, Message: rpcErr.Message}
}

// RemoteError is a failure reported by the identity endpoint that has no
// local sentinel.
type RemoteError struct {
	Method  string
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return "identity rpc " + e.Method + ": " + e.Message
}
