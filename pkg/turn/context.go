// Package turn implements the per-turn dispatch core: a short-lived context
// built around one inbound message, whose send, update, and delete
// operations run through ordered interceptor chains before the adapter
// executes the terminal transport action.
package turn

import (
	"context"
	"strings"
	"sync"

	"turnkit/pkg/binding"
	"turnkit/pkg/schema"
)

// Adapter executes the terminal transport action for a turn. Its errors are
// opaque to the dispatch core and propagate to the caller unmodified.
type Adapter interface {
	Send(ctx context.Context, messages []*schema.Message) ([]schema.Receipt, error)
	Update(ctx context.Context, message *schema.Message) (schema.Receipt, error)
	Delete(ctx context.Context, reference *schema.ConversationReference) error
}

// Context is the state of one conversational turn. It is created once per
// inbound message, lives for that turn's processing, and is not reused.
//
// A Context is safe for concurrent use; only the state bag, responded flag,
// and chain registration are guarded, matching the sequential-per-turn
// execution model.
type Context struct {
	adapter Adapter
	inbound *schema.Message
	ref     schema.ConversationReference

	mu          sync.RWMutex
	responded   bool
	state       map[string]any
	sendChain   []SendInterceptor
	updateChain []UpdateInterceptor
	deleteChain []DeleteInterceptor
}

// New builds a turn context around an inbound message. The conversation
// reference is derived here, exactly once, and reused by every operation on
// the turn.
func New(adapter Adapter, inbound *schema.Message) (*Context, error) {
	if adapter == nil {
		return nil, NewError(ErrorInvalidArgument, "adapter is required")
	}
	if inbound == nil {
		return nil, NewError(ErrorInvalidArgument, "inbound message is required")
	}

	ref, err := binding.Derive(inbound)
	if err != nil {
		return nil, NewError(ErrorInvalidArgument, err.Error())
	}

	return &Context{
		adapter: adapter,
		inbound: inbound,
		ref:     ref,
		state:   make(map[string]any),
	}, nil
}

// Adapter returns the transport adapter bound to this turn.
func (c *Context) Adapter() Adapter {
	return c.adapter
}

// Inbound returns the message this turn was created for.
func (c *Context) Inbound() *schema.Message {
	return c.inbound
}

// Reference returns the conversation reference derived from the inbound
// message at construction.
func (c *Context) Reference() schema.ConversationReference {
	return c.ref
}

// Responded reports whether at least one send reached the adapter during
// this turn.
func (c *Context) Responded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.responded
}

// SetResponded marks the turn as responded. The flag is monotonic: once
// true it cannot be reset, and passing false is always an error.
func (c *Context) SetResponded(responded bool) error {
	if !responded {
		return NewError(ErrorInvalidState, "responded flag cannot be reset to false")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.responded = true

	return nil
}

// RegisterSendInterceptor appends an interceptor to the send chain and
// returns the context for chained registration. Panics on a nil handler.
func (c *Context) RegisterSendInterceptor(interceptor SendInterceptor) *Context {
	if interceptor == nil {
		panic(NewError(ErrorInvalidArgument, "nil send interceptor"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendChain = append(c.sendChain, interceptor)

	return c
}

// RegisterUpdateInterceptor appends an interceptor to the update chain and
// returns the context for chained registration. Panics on a nil handler.
func (c *Context) RegisterUpdateInterceptor(interceptor UpdateInterceptor) *Context {
	if interceptor == nil {
		panic(NewError(ErrorInvalidArgument, "nil update interceptor"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateChain = append(c.updateChain, interceptor)

	return c
}

// RegisterDeleteInterceptor appends an interceptor to the delete chain and
// returns the context for chained registration. Panics on a nil handler.
func (c *Context) RegisterDeleteInterceptor(interceptor DeleteInterceptor) *Context {
	if interceptor == nil {
		panic(NewError(ErrorInvalidArgument, "nil delete interceptor"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteChain = append(c.deleteChain, interceptor)

	return c
}

// Send stamps the turn's addressing onto every message, runs the send chain,
// and delivers the surviving payload through the adapter. The responded flag
// turns true only when the terminal send actually runs; a chain that
// short-circuits leaves it untouched.
func (c *Context) Send(ctx context.Context, messages ...*schema.Message) ([]schema.Receipt, error) {
	if len(messages) == 0 {
		return nil, NewError(ErrorInvalidArgument, "at least one message is required")
	}

	for _, message := range messages {
		if message == nil {
			return nil, NewError(ErrorInvalidArgument, "message is required")
		}
		if err := binding.Apply(message, c.ref, binding.Outgoing); err != nil {
			return nil, NewError(ErrorInvalidArgument, err.Error())
		}
	}

	var receipts []schema.Receipt
	terminal := func(ctx context.Context) error {
		sent, err := c.adapter.Send(ctx, messages)
		if err != nil {
			return err
		}

		receipts = sent

		return c.SetResponded(true)
	}

	if err := runChain(ctx, c, c.snapshotSendChain(), messages, terminal); err != nil {
		return nil, err
	}

	return receipts, nil
}

// SendText sends a single plain text reply.
func (c *Context) SendText(ctx context.Context, text string) ([]schema.Receipt, error) {
	return c.Send(ctx, schema.Text(text))
}

// Update replaces a previously sent message. The replacement must carry the
// id of the message it replaces; the turn's addressing is stamped onto it
// before the update chain runs.
func (c *Context) Update(ctx context.Context, message *schema.Message) (schema.Receipt, error) {
	if message == nil {
		return schema.Receipt{}, NewError(ErrorInvalidArgument, "message is required")
	}
	if strings.TrimSpace(message.ID) == "" {
		return schema.Receipt{}, NewError(ErrorInvalidArgument, "update message must carry its own id")
	}

	if err := binding.Apply(message, c.ref, binding.Outgoing); err != nil {
		return schema.Receipt{}, NewError(ErrorInvalidArgument, err.Error())
	}

	var receipt schema.Receipt
	terminal := func(ctx context.Context) error {
		updated, err := c.adapter.Update(ctx, message)
		if err != nil {
			return err
		}

		receipt = updated

		return nil
	}

	if err := runChain(ctx, c, c.snapshotUpdateChain(), message, terminal); err != nil {
		return schema.Receipt{}, err
	}

	return receipt, nil
}

// Delete removes a previously sent message by id. The target is the turn's
// own conversation reference with its message id overwritten by the supplied
// one.
func (c *Context) Delete(ctx context.Context, messageID string) error {
	if strings.TrimSpace(messageID) == "" {
		return NewError(ErrorInvalidArgument, "message id is required")
	}

	reference := c.ref
	reference.MessageID = messageID

	terminal := func(ctx context.Context) error {
		return c.adapter.Delete(ctx, &reference)
	}

	return runChain(ctx, c, c.snapshotDeleteChain(), &reference, terminal)
}

func (c *Context) snapshotSendChain() []SendInterceptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sendChain[:len(c.sendChain):len(c.sendChain)]
}

func (c *Context) snapshotUpdateChain() []UpdateInterceptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.updateChain[:len(c.updateChain):len(c.updateChain)]
}

func (c *Context) snapshotDeleteChain() []DeleteInterceptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.deleteChain[:len(c.deleteChain):len(c.deleteChain)]
}
