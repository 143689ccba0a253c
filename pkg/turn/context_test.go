package turn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"turnkit/pkg/schema"
)

type fakeAdapter struct {
	sendCalls int
	sent      [][]*schema.Message
	updated   []*schema.Message
	deleted   []*schema.ConversationReference
	sendErr   error
	updateErr error
	deleteErr error
}

func (a *fakeAdapter) Send(ctx context.Context, messages []*schema.Message) ([]schema.Receipt, error) {
	a.sendCalls++
	if a.sendErr != nil {
		return nil, a.sendErr
	}

	a.sent = append(a.sent, messages)
	receipts := make([]schema.Receipt, 0, len(messages))
	for i := range messages {
		receipts = append(receipts, schema.Receipt{MessageID: fmt.Sprintf("sent-%d", i)})
	}

	return receipts, nil
}

func (a *fakeAdapter) Update(ctx context.Context, message *schema.Message) (schema.Receipt, error) {
	if a.updateErr != nil {
		return schema.Receipt{}, a.updateErr
	}

	a.updated = append(a.updated, message)

	return schema.Receipt{MessageID: message.ID}, nil
}

func (a *fakeAdapter) Delete(ctx context.Context, reference *schema.ConversationReference) error {
	if a.deleteErr != nil {
		return a.deleteErr
	}

	a.deleted = append(a.deleted, reference)

	return nil
}

func inboundFixture() *schema.Message {
	return &schema.Message{
		ID:           "in-1",
		Text:         "hi bot",
		ChannelID:    "console",
		ServiceURL:   "local",
		From:         schema.Account{ID: "user-1"},
		Recipient:    schema.Account{ID: "bot-1"},
		Conversation: schema.Conversation{ID: "conv-x"},
	}
}

func TestNewRequiresAdapterAndMessage(t *testing.T) {
	if _, err := New(nil, inboundFixture()); CategoryFromError(err) != ErrorInvalidArgument {
		t.Fatalf("missing adapter err = %v, want category %q", err, ErrorInvalidArgument)
	}
	if _, err := New(&fakeAdapter{}, nil); CategoryFromError(err) != ErrorInvalidArgument {
		t.Fatalf("missing message err = %v, want category %q", err, ErrorInvalidArgument)
	}
}

func TestSendWithoutInterceptorsDelivers(t *testing.T) {
	adapter := &fakeAdapter{}
	tc, err := New(adapter, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	receipts, err := tc.SendText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("SendText error: %v", err)
	}

	if len(adapter.sent) != 1 || len(adapter.sent[0]) != 1 {
		t.Fatalf("sent batches = %v, want one batch of one message", adapter.sent)
	}
	if got := adapter.sent[0][0].Text; got != "hello" {
		t.Fatalf("text = %q, want %q", got, "hello")
	}
	if len(receipts) != 1 {
		t.Fatalf("receipts = %v, want one", receipts)
	}
	if !tc.Responded() {
		t.Fatal("expected responded flag after delivery")
	}
}

func TestSendStampsTurnAddressing(t *testing.T) {
	adapter := &fakeAdapter{}
	tc, err := New(adapter, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	// Foreign addressing on the outbound message must be replaced by the
	// turn's own reference.
	stale := &schema.Message{
		Text:         "reply",
		ChannelID:    "other-channel",
		Conversation: schema.Conversation{ID: "foreign"},
	}
	if _, err := tc.Send(context.Background(), stale); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	delivered := adapter.sent[0][0]
	if delivered.ChannelID != "console" {
		t.Fatalf("channel = %q, want console", delivered.ChannelID)
	}
	if delivered.Conversation.ID != "conv-x" {
		t.Fatalf("conversation = %q, want conv-x", delivered.Conversation.ID)
	}
	if delivered.From.ID != "bot-1" || delivered.Recipient.ID != "user-1" {
		t.Fatalf("orientation = %q->%q, want bot-1->user-1", delivered.From.ID, delivered.Recipient.ID)
	}
	if delivered.ReplyToID != "in-1" {
		t.Fatalf("reply-to = %q, want in-1", delivered.ReplyToID)
	}
}

func TestSendRequiresMessages(t *testing.T) {
	tc, err := New(&fakeAdapter{}, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	_, err = tc.Send(context.Background())
	if CategoryFromError(err) != ErrorInvalidArgument {
		t.Fatalf("err = %v, want category %q", err, ErrorInvalidArgument)
	}
	if tc.Responded() {
		t.Fatal("responded flag set without delivery")
	}
}

func TestSendShortCircuitLeavesFlagUnset(t *testing.T) {
	adapter := &fakeAdapter{}
	tc, err := New(adapter, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	counter := 0
	tc.RegisterSendInterceptor(func(ctx context.Context, tc *Context, messages []*schema.Message, next Next) error {
		counter++
		return next(ctx)
	}).RegisterSendInterceptor(func(ctx context.Context, tc *Context, messages []*schema.Message, next Next) error {
		_ = len(messages)
		return nil
	})

	if _, err := tc.SendText(context.Background(), "hello"); err != nil {
		t.Fatalf("SendText error: %v", err)
	}

	if counter != 1 {
		t.Fatalf("counter = %d, want 1", counter)
	}
	if adapter.sendCalls != 0 {
		t.Fatalf("adapter send calls = %d, want 0", adapter.sendCalls)
	}
	if tc.Responded() {
		t.Fatal("responded flag set despite short-circuit")
	}
}

func TestSendInterceptorMutationReachesAdapter(t *testing.T) {
	adapter := &fakeAdapter{}
	tc, err := New(adapter, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	tc.RegisterSendInterceptor(func(ctx context.Context, tc *Context, messages []*schema.Message, next Next) error {
		for _, message := range messages {
			message.Text = "[fi] " + message.Text
		}
		return next(ctx)
	})

	if _, err := tc.SendText(context.Background(), "hello"); err != nil {
		t.Fatalf("SendText error: %v", err)
	}

	if got := adapter.sent[0][0].Text; got != "[fi] hello" {
		t.Fatalf("text = %q, want %q", got, "[fi] hello")
	}
}

func TestSendAdapterErrorPassesThrough(t *testing.T) {
	boom := errors.New("transport down")
	tc, err := New(&fakeAdapter{sendErr: boom}, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	_, err = tc.SendText(context.Background(), "hello")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if tc.Responded() {
		t.Fatal("responded flag set despite transport failure")
	}
}

func TestRespondedFlagIsMonotonic(t *testing.T) {
	tc, err := New(&fakeAdapter{}, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if err := tc.SetResponded(false); CategoryFromError(err) != ErrorInvalidState {
		t.Fatalf("reset err = %v, want category %q", err, ErrorInvalidState)
	}

	if err := tc.SetResponded(true); err != nil {
		t.Fatalf("SetResponded error: %v", err)
	}
	if err := tc.SetResponded(false); CategoryFromError(err) != ErrorInvalidState {
		t.Fatalf("reset err = %v, want category %q", err, ErrorInvalidState)
	}
	if !tc.Responded() {
		t.Fatal("flag lost after failed reset")
	}
}

func TestRegisterNilInterceptorPanics(t *testing.T) {
	tc, err := New(&fakeAdapter{}, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil interceptor")
		}
	}()
	tc.RegisterSendInterceptor(nil)
}

func TestUpdateRequiresIdentity(t *testing.T) {
	tc, err := New(&fakeAdapter{}, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := tc.Update(context.Background(), nil); CategoryFromError(err) != ErrorInvalidArgument {
		t.Fatalf("nil message err = %v, want category %q", err, ErrorInvalidArgument)
	}
	if _, err := tc.Update(context.Background(), schema.Text("no id")); CategoryFromError(err) != ErrorInvalidArgument {
		t.Fatalf("missing id err = %v, want category %q", err, ErrorInvalidArgument)
	}
}

func TestUpdateRunsChainAndAdapter(t *testing.T) {
	adapter := &fakeAdapter{}
	tc, err := New(adapter, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var order []string
	tc.RegisterUpdateInterceptor(func(ctx context.Context, tc *Context, message *schema.Message, next Next) error {
		order = append(order, "interceptor")
		message.Text = "edited"
		return next(ctx)
	})

	replacement := &schema.Message{ID: "sent-0", Text: "original"}
	receipt, err := tc.Update(context.Background(), replacement)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if receipt.MessageID != "sent-0" {
		t.Fatalf("receipt id = %q, want sent-0", receipt.MessageID)
	}
	if len(adapter.updated) != 1 || adapter.updated[0].Text != "edited" {
		t.Fatalf("updated = %v, want one edited message", adapter.updated)
	}
	if adapter.updated[0].Conversation.ID != "conv-x" {
		t.Fatalf("conversation = %q, want conv-x", adapter.updated[0].Conversation.ID)
	}
	if len(order) != 1 {
		t.Fatalf("interceptor runs = %d, want 1", len(order))
	}
}

func TestDeleteCombinesSuppliedIDWithTurnReference(t *testing.T) {
	adapter := &fakeAdapter{}
	tc, err := New(adapter, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if err := tc.Delete(context.Background(), "msg123"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if len(adapter.deleted) != 1 {
		t.Fatalf("deleted = %v, want one reference", adapter.deleted)
	}
	ref := adapter.deleted[0]
	if ref.MessageID != "msg123" {
		t.Fatalf("message id = %q, want msg123", ref.MessageID)
	}
	if ref.Conversation.ID != "conv-x" {
		t.Fatalf("conversation = %q, want conv-x", ref.Conversation.ID)
	}
}

func TestDeleteRequiresMessageID(t *testing.T) {
	tc, err := New(&fakeAdapter{}, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for _, id := range []string{"", "  "} {
		if err := tc.Delete(context.Background(), id); CategoryFromError(err) != ErrorInvalidArgument {
			t.Fatalf("Delete(%q) err = %v, want category %q", id, err, ErrorInvalidArgument)
		}
	}
}

func TestDeleteDoesNotMutateTurnReference(t *testing.T) {
	adapter := &fakeAdapter{}
	tc, err := New(adapter, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if err := tc.Delete(context.Background(), "msg123"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if got := tc.Reference().MessageID; got != "in-1" {
		t.Fatalf("turn reference id = %q, want in-1", got)
	}
}

func TestDeleteShortCircuit(t *testing.T) {
	adapter := &fakeAdapter{}
	tc, err := New(adapter, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	tc.RegisterDeleteInterceptor(func(ctx context.Context, tc *Context, reference *schema.ConversationReference, next Next) error {
		return nil
	})

	if err := tc.Delete(context.Background(), "msg123"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(adapter.deleted) != 0 {
		t.Fatalf("deleted = %v, want none", adapter.deleted)
	}
}

func TestNestedSendStartsIndependentChainRun(t *testing.T) {
	adapter := &fakeAdapter{}
	tc, err := New(adapter, inboundFixture())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	nested := false
	tc.RegisterSendInterceptor(func(ctx context.Context, tc *Context, messages []*schema.Message, next Next) error {
		if !nested {
			nested = true
			if _, err := tc.SendText(ctx, "nested"); err != nil {
				return err
			}
		}
		return next(ctx)
	})

	if _, err := tc.SendText(context.Background(), "outer"); err != nil {
		t.Fatalf("SendText error: %v", err)
	}

	if adapter.sendCalls != 2 {
		t.Fatalf("adapter send calls = %d, want 2", adapter.sendCalls)
	}
}
