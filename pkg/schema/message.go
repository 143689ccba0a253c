package schema

import "maps"

// Account identifies one party in a conversation (a user or the bot).
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// Conversation identifies the conversation a message belongs to.
type Conversation struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Message is a single event exchanged between a user and the bot.
//
// The dispatch core treats it as an opaque record: it stamps addressing
// fields and passes everything else through untouched.
type Message struct {
	ID           string            `json:"id,omitempty"`
	Text         string            `json:"text,omitempty"`
	ChannelID    string            `json:"channel_id,omitempty"`
	ServiceURL   string            `json:"service_url,omitempty"`
	From         Account           `json:"from,omitempty"`
	Recipient    Account           `json:"recipient,omitempty"`
	Conversation Conversation      `json:"conversation,omitempty"`
	ReplyToID    string            `json:"reply_to_id,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ConversationReference is a snapshot of the addressing fields needed to
// route a reply or deletion back to the conversation a message came from.
type ConversationReference struct {
	MessageID    string       `json:"message_id,omitempty"`
	User         Account      `json:"user"`
	Bot          Account      `json:"bot"`
	Conversation Conversation `json:"conversation"`
	ChannelID    string       `json:"channel_id"`
	ServiceURL   string       `json:"service_url"`
}

// Receipt is the per-message transport result returned by an adapter.
type Receipt struct {
	MessageID string `json:"message_id"`
}

// Text builds a plain text message with no addressing set.
func Text(text string) *Message {
	return &Message{Text: text}
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}

	copied := *m
	if m.Metadata != nil {
		copied.Metadata = maps.Clone(m.Metadata)
	}

	return &copied
}
