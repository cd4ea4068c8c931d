package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
)

type captureSender struct {
	got chan *messaging.Message
	err error
}

func (c *captureSender) Send(_ context.Context, message *messaging.Message) (string, error) {
	c.got <- message
	return "", c.err
}

func TestDispatch(t *testing.T) {
	sender := &captureSender{got: make(chan *messaging.Message, 1)}
	d := NewDispatcher(sender)

	d.Dispatch("device-token", "New message", "hello there", map[string]string{"type": "CHAT"})

	select {
	case msg := <-sender.got:
		if msg.Token != "device-token" {
			t.Fatalf("wrong token: %q", msg.Token)
		}
		if msg.Notification == nil || msg.Notification.Title != "New message" || msg.Notification.Body != "hello there" {
			t.Fatalf("notification fields not set: %+v", msg.Notification)
		}
		if msg.Data["type"] != "CHAT" {
			t.Fatalf("payload not carried: %v", msg.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never sent")
	}
}

func TestDispatch_EmptyTokenShortCircuits(t *testing.T) {
	sender := &captureSender{got: make(chan *messaging.Message, 1)}
	d := NewDispatcher(sender)

	d.Dispatch("", "title", "body", nil)

	select {
	case <-sender.got:
		t.Fatal("send attempted despite empty token")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatch_SendFailureIsSwallowed(t *testing.T) {
	sender := &captureSender{got: make(chan *messaging.Message, 1), err: errors.New("fcm unavailable")}
	d := NewDispatcher(sender)

	// must not panic or surface the error anywhere
	d.Dispatch("device-token", "title", "body", nil)

	select {
	case <-sender.got:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never attempted")
	}
}

func TestDispatch_NilDispatcher(t *testing.T) {
	var d *Dispatcher
	// nil receiver is a supported no-op; callers don't need to guard
	d.Dispatch("device-token", "title", "body", nil)
}
