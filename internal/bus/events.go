package bus

import (
	"time"
)

// InboundMessage is one user message normalized from any channel. Receipt
// photos ride along as raw bytes; everything else is text.
type InboundMessage struct {
	Channel   string
	SenderID  string
	ChatID    string
	Content   string
	Timestamp time.Time
	ImageData []byte
	ImageMIME string
	Metadata  map[string]any
}

// SessionKey identifies the conversation this message belongs to.
func (m *InboundMessage) SessionKey() string {
	return m.Channel + ":" + m.ChatID
}

// OutboundMessage is a reply headed back to a channel.
type OutboundMessage struct {
	Channel string
	ChatID  string
	Content string
}
