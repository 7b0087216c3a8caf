package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/orgodyssey/odyssey/internal/api/metrics"
	"github.com/orgodyssey/odyssey/internal/core/ports"
)

const channelBuffer = 256

var ErrStopped = errors.New("mail dispatcher stopped")

// Dispatcher delivers mail on a fixed set of workers. Messages are sharded by
// first recipient so mail to one address keeps its order.
type Dispatcher struct {
	workers []chan ports.Message
	mailer  ports.Mailer
	log     zerolog.Logger
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers in front
// of mailer. numWorkers below one is raised to one.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	d := &Dispatcher{
		workers: make([]chan ports.Message, numWorkers),
		mailer:  mailer,
		log:     log,
		done:    make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		close(d.done)
	}()
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Send queues msg and returns before delivery. Delivery failures are logged.
func (d *Dispatcher) Send(ctx context.Context, msg ports.Message) error {
	idx := d.shardIndex(msg)
	select {
	case d.workers[idx] <- msg:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) shardIndex(msg ports.Message) int {
	var key string
	if len(msg.To) > 0 {
		key = strings.ToLower(msg.To[0])
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Message) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.mailer.Send(ctx, msg); err != nil {
				metrics.MailDeliveriesTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Strs("to", msg.To).
					Int("worker_id", id).
					Msg("mail delivery failed")
				continue
			}
			metrics.MailDeliveriesTotal.WithLabelValues("sent").Inc()
		}
	}
}
