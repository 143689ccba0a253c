// Package console implements a loopback transport adapter: outbound
// messages are rendered to a writer and kept in memory so updates and
// deletions have real targets. It backs the interactive demo and
// integration-style tests; it never touches a network.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"turnkit/pkg/schema"
)

// Adapter is an in-memory turn.Adapter implementation.
type Adapter struct {
	out io.Writer
	log *slog.Logger

	mu       sync.Mutex
	sent     map[string]*schema.Message
	order    []string
	outbound []*schema.Message
}

// New builds a console adapter. out may be nil to suppress rendering.
func New(out io.Writer, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}

	return &Adapter{
		out:  out,
		log:  log.With("component", "adapter.console"),
		sent: make(map[string]*schema.Message),
	}
}

// Send assigns ids to the outbound messages, records them, and renders them.
func (a *Adapter) Send(ctx context.Context, messages []*schema.Message) ([]schema.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	receipts := make([]schema.Receipt, 0, len(messages))
	for _, message := range messages {
		if message.ID == "" {
			message.ID = uuid.NewString()
		}

		a.sent[message.ID] = message
		a.order = append(a.order, message.ID)
		a.outbound = append(a.outbound, message)
		a.render("%s\n", message.Text)
		receipts = append(receipts, schema.Receipt{MessageID: message.ID})
	}

	a.log.Debug("Delivered messages", "count", len(messages))

	return receipts, nil
}

// Update replaces a previously sent message in place.
func (a *Adapter) Update(ctx context.Context, message *schema.Message) (schema.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return schema.Receipt{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.sent[message.ID]; !ok {
		return schema.Receipt{}, fmt.Errorf("update message %s: not found", message.ID)
	}

	a.sent[message.ID] = message
	a.render("%s (edited)\n", message.Text)

	return schema.Receipt{MessageID: message.ID}, nil
}

// Delete removes a previously sent message addressed by the reference.
func (a *Adapter) Delete(ctx context.Context, reference *schema.ConversationReference) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.sent[reference.MessageID]; !ok {
		return fmt.Errorf("delete message %s: not found", reference.MessageID)
	}

	delete(a.sent, reference.MessageID)
	a.render("(message deleted)\n")

	return nil
}

// TakeOutbound drains and returns the messages delivered since the last
// call, in delivery order.
func (a *Adapter) TakeOutbound() []*schema.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	drained := a.outbound
	a.outbound = nil

	return drained
}

// Sent returns the still-live messages in delivery order, skipping deleted
// ones.
func (a *Adapter) Sent() []*schema.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	messages := make([]*schema.Message, 0, len(a.order))
	for _, id := range a.order {
		if message, ok := a.sent[id]; ok {
			messages = append(messages, message)
		}
	}

	return messages
}

func (a *Adapter) render(format string, args ...any) {
	if a.out == nil {
		return
	}

	fmt.Fprintf(a.out, format, args...)
}
