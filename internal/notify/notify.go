// Package notify dispatches best-effort push notifications through Firebase
// Cloud Messaging. Delivery is not guaranteed and never retried; a failed
// send is logged and forgotten.
package notify

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
)

// Sender is the minimal interface the dispatcher needs from the FCM client:
// the ability to send one message. *messaging.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Dispatcher sends push notifications in the background so the request
// that triggered them never waits on FCM.
type Dispatcher struct {
	sender Sender

	// timeout bounds each delivery attempt; FCM being slow must not leak
	// goroutines indefinitely
	timeout time.Duration
}

// NewDispatcher returns a Dispatcher using the given FCM sender.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender, timeout: 10 * time.Second}
}

// Dispatch queues one push notification for delivery and returns
// immediately. An empty token or missing sender short-circuits. The
// delivery runs on its own context: the originating request may already
// be finished by the time FCM answers.
func (d *Dispatcher) Dispatch(token, title, body string, payload map[string]string) {
	if d == nil || d.sender == nil || token == "" {
		return
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: payload,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if _, err := d.sender.Send(ctx, msg); err != nil {
			// Dropped notifications are acceptable; the message itself is
			// already persisted and shows up on the next inbox poll.
			log.Printf("push notification delivery failed: %v", err)
		}
	}()
}
