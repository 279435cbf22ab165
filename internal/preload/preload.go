package preload

import (
	"context"
	"errors"
	"log"

	"github.com/jamesprial/petview/internal/graphql"
	"github.com/jamesprial/petview/internal/query"
)

// Preload validates vars and immediately starts sending op through sender in
// a new goroutine. The send is detached from ctx's cancellation: abandoning
// the handle discards the result but does not abort the request. Values
// carried by ctx (trace spans) are kept.
//
// Each call issues its own request; handles are never shared.
func Preload[T any](ctx context.Context, sender graphql.Sender, op *query.Operation[T], vars map[string]any) *Handle[T] {
	h := newHandle[T](op.Name())

	if err := op.ValidateVariables(vars); err != nil {
		h.resolve(nil, err)
		return h
	}

	h.start()
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		h.resolve(fetch(fetchCtx, sender, op, vars))
	}()
	return h
}

func fetch[T any](ctx context.Context, sender graphql.Sender, op *query.Operation[T], vars map[string]any) (*T, error) {
	res, err := sender.Send(ctx, op.Text(), vars)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, &graphql.TransportError{Op: "decode response", Err: errors.New("sender returned no result")}
	}
	if len(res.Errors) > 0 {
		log.Printf("preload: %s: server returned %d GraphQL error(s): %v", op.Name(), len(res.Errors), res.Errors)
	}
	return op.Decode(res.Data)
}
