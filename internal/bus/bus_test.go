package bus

import (
	"context"
	"testing"
	"time"
)

func TestSessionKey(t *testing.T) {
	msg := InboundMessage{Channel: "whatsapp", ChatID: "18091234567"}
	if got := msg.SessionKey(); got != "whatsapp:18091234567" {
		t.Errorf("SessionKey = %q", got)
	}
}

func TestDispatchOutbound(t *testing.T) {
	b := NewMessageBus(4)
	got := make(chan OutboundMessage, 1)
	b.SubscribeOutbound("telegram", func(msg OutboundMessage) {
		got <- msg
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	b.Outbound <- OutboundMessage{Channel: "telegram", ChatID: "42", Content: "hola"}

	select {
	case msg := <-got:
		if msg.ChatID != "42" || msg.Content != "hola" {
			t.Errorf("dispatched = %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("message not dispatched")
	}
}

func TestDispatchDropsUnsubscribed(t *testing.T) {
	b := NewMessageBus(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	// Must not block or panic.
	b.Outbound <- OutboundMessage{Channel: "nobody", Content: "x"}
	time.Sleep(10 * time.Millisecond)
}
