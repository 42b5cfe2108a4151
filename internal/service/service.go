// Package service maps EasyLoft domain operations onto REST calls.
//
// Every method performs exactly one transport call with a fixed method, path
// and payload shape and returns the decoded payload unchanged. Services never
// touch the token store or any cached state; that is the job of
// internal/state.
package service

import (
	"context"
	"net/url"

	"github.com/easyloft/easyloft-client/internal/api"
)

// Transport is the subset of *api.Client the services need.
type Transport interface {
	Request(ctx context.Context, method, path string, body any, auth bool, dest any) error
	Upload(ctx context.Context, path, field string, file api.File, auth bool, dest any) error
}

// Ensure api.Client implements Transport at compile time.
var _ Transport = (*api.Client)(nil)

func resourcePath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}
