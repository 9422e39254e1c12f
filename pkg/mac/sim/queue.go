package sim

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/msn-network/msn-go/pkg/mac"
)

type delivery struct {
	fn  func()
	msg mac.Message
}

// deliveryQueue runs deliveries for one radio in order on its own
// goroutine.
type deliveryQueue struct {
	clock   clock.Clock
	latency time.Duration

	mu      sync.Mutex
	items   []delivery
	stopped bool

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newDeliveryQueue(clk clock.Clock, latency time.Duration) *deliveryQueue {
	return &deliveryQueue{
		clock:   clk,
		latency: latency,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// push queues fn. After stop the message is released instead.
func (q *deliveryQueue) push(fn func(), msg mac.Message) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		msg.Release()
		return
	}
	q.items = append(q.items, delivery{fn: fn, msg: msg})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *deliveryQueue) run() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			stopped := q.stopped
			q.mu.Unlock()
			if stopped {
				return
			}
			select {
			case <-q.wake:
			case <-q.done:
			}
			continue
		}
		d := q.items[0]
		q.items[0] = delivery{}
		q.items = q.items[1:]
		q.mu.Unlock()

		if q.latency > 0 {
			q.clock.Sleep(q.latency)
		}
		d.fn()
	}
}

// stop discards undelivered items, releasing their messages.
func (q *deliveryQueue) stop() {
	q.mu.Lock()
	q.stopped = true
	items := q.items
	q.items = nil
	q.mu.Unlock()

	q.stopOnce.Do(func() { close(q.done) })
	for _, d := range items {
		d.msg.Release()
	}
}
