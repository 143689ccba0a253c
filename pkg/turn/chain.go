package turn

import (
	"context"

	"turnkit/pkg/schema"
)

// Next resumes the current chain run. An interceptor calls it at most once
// to hand control to the next interceptor (or the terminal action); not
// calling it short-circuits the rest of the chain.
type Next func(ctx context.Context) error

// SendInterceptor observes or rewrites the outbound message list before
// delivery. Edits to the messages are visible to later interceptors and to
// the terminal send.
type SendInterceptor func(ctx context.Context, tc *Context, messages []*schema.Message, next Next) error

// UpdateInterceptor observes or rewrites a message replacement before it is
// applied.
type UpdateInterceptor func(ctx context.Context, tc *Context, message *schema.Message, next Next) error

// DeleteInterceptor observes a pending deletion identified by a conversation
// reference.
type DeleteInterceptor func(ctx context.Context, tc *Context, reference *schema.ConversationReference, next Next) error

// runChain executes interceptors strictly in registration order, ending in
// terminal. The index-driven walk keeps one closure per active interceptor
// frame; each continuation may fire only once.
//
// Errors from an interceptor or from terminal abort the run and reach the
// caller unmodified. Effects already committed by earlier interceptors are
// not rolled back.
func runChain[P any, H ~func(context.Context, *Context, P, Next) error](ctx context.Context, tc *Context, interceptors []H, payload P, terminal Next) error {
	var step func(ctx context.Context, index int) error
	step = func(ctx context.Context, index int) error {
		if index >= len(interceptors) {
			return terminal(ctx)
		}

		resumed := false
		next := func(ctx context.Context) error {
			if resumed {
				return NewError(ErrorInvalidState, "chain continuation invoked more than once")
			}
			resumed = true

			return step(ctx, index+1)
		}

		return interceptors[index](ctx, tc, payload, next)
	}

	return step(ctx, 0)
}
