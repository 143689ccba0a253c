// Package binding derives conversation references from inbound messages and
// stamps them back onto outgoing or incoming message records.
package binding

import (
	"errors"

	"turnkit/pkg/schema"
)

var errNilMessage = errors.New("message is required")

// Direction selects which way Apply orients sender and recipient.
type Direction int

const (
	// Outgoing addresses a message from the bot to the user.
	Outgoing Direction = iota
	// Incoming addresses a message from the user to the bot.
	Incoming
)

// Derive snapshots the addressing fields of an inbound message into a
// conversation reference. The snapshot is taken once per turn and reused for
// every outbound artifact, so routing stays correct no matter how
// interceptors reshape the payload later.
func Derive(message *schema.Message) (schema.ConversationReference, error) {
	if message == nil {
		return schema.ConversationReference{}, errNilMessage
	}

	return schema.ConversationReference{
		MessageID:    message.ID,
		User:         message.From,
		Bot:          message.Recipient,
		Conversation: message.Conversation,
		ChannelID:    message.ChannelID,
		ServiceURL:   message.ServiceURL,
	}, nil
}

// Apply stamps the reference's addressing onto a message.
//
// Both directions set channel id, service endpoint, and conversation.
// Outgoing orients the message bot-to-user and records the reference's
// message id as the reply target, leaving the message's own id alone.
// Incoming orients it user-to-bot and adopts the reference's message id as
// the message's own identity when the reference carries one.
func Apply(message *schema.Message, reference schema.ConversationReference, direction Direction) error {
	if message == nil {
		return errNilMessage
	}

	message.ChannelID = reference.ChannelID
	message.ServiceURL = reference.ServiceURL
	message.Conversation = reference.Conversation

	switch direction {
	case Outgoing:
		message.From = reference.Bot
		message.Recipient = reference.User
		if reference.MessageID != "" {
			message.ReplyToID = reference.MessageID
		}
	case Incoming:
		message.From = reference.User
		message.Recipient = reference.Bot
		if reference.MessageID != "" {
			message.ID = reference.MessageID
		}
	}

	return nil
}
