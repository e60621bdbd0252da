package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "notify")

// Message is a single outbound notification.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	OrderID uint   `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
}

// Sink delivers a message to its final transport.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher moves messages off the request path. Delivery is at most once:
// a message that fails to send is logged and dropped.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	queue   chan Message
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts a worker that drains a queue of the given capacity into sink.
func NewDispatcher(sink Sink, capacity int, sendTimeout time.Duration) *Dispatcher {
	if capacity <= 0 {
		capacity = 1
	}
	d := &Dispatcher{
		sink:    sink,
		timeout: sendTimeout,
		queue:   make(chan Message, capacity),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue hands msg to the worker without blocking. It returns false when the
// queue is full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.WithField("to", msg.To).Warn("Dispatcher closed, dropping notification")
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		log.WithFields(logrus.Fields{
			"to":       msg.To,
			"order_id": msg.OrderID,
		}).Warn("Notification queue full, dropping notification")
		return false
	}
}

// Close stops accepting messages and waits for queued ones to be sent or for
// ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification queue not drained: %w", ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		if err := d.deliver(msg); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"to":       msg.To,
				"subject":  msg.Subject,
				"order_id": msg.OrderID,
			}).Error("Failed to send notification")
		}
	}
}

func (d *Dispatcher) deliver(msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if d.sink == nil {
		return errors.New("no notification sink configured")
	}
	return d.sink.Send(ctx, msg)
}
