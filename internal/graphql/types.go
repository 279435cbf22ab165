// Package graphql provides the HTTP transport used to send GraphQL documents
// to the Pet Library API.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Sender sends one GraphQL document per call and returns the parsed response
// body.
type Sender interface {
	Send(ctx context.Context, query string, variables map[string]any) (*Result, error)
}

// Result is the standard GraphQL response envelope. Errors is decoded but
// never acted on by the transport.
type Result struct {
	Data       json.RawMessage `json:"data"`
	Errors     gqlerror.List   `json:"errors,omitempty"`
	Extensions map[string]any  `json:"extensions,omitempty"`
}

// TransportError reports a failed round trip: the request could not be
// built or sent, or the body could not be read or parsed as JSON.
type TransportError struct {
	Op  string
	URL string
	// Status is the HTTP status code, or zero when no response was received.
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("graphql: %s %s (HTTP %d): %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("graphql: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
