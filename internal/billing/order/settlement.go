package order

import (
	"fmt"
	"sync"
	"time"

	"garage-client-api/internal/logger"
)

// Queue runs settlements after a fixed delay. Schedule arms a timer; when it
// fires the order id lands on a bounded channel drained by a worker pool.
// Tasks are fire-and-forget: they survive the caller's disconnect and are
// never cancelled, only dropped when Stop has been called.
type Queue struct {
	settle  func(orderID int64) error
	delay   time.Duration
	tasks   chan int64
	quit    chan struct{}
	wg      sync.WaitGroup
	logger  *logger.Logger
	stopped sync.Once
}

func NewQueue(settle func(orderID int64) error, delay time.Duration, size, workers int, log *logger.Logger) *Queue {
	if size <= 0 {
		size = 256
	}
	if workers <= 0 {
		workers = 4
	}
	q := &Queue{
		settle: settle,
		delay:  delay,
		tasks:  make(chan int64, size),
		quit:   make(chan struct{}),
		logger: log,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Schedule arms the settlement timer for the order.
func (q *Queue) Schedule(orderID int64) {
	time.AfterFunc(q.delay, func() {
		select {
		case q.tasks <- orderID:
		case <-q.quit:
			q.logger.Warn("SETTLEMENT", fmt.Sprintf("queue stopped, dropping settlement of order %d", orderID))
		}
	})
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case orderID := <-q.tasks:
			if err := q.settle(orderID); err != nil {
				q.logger.Error("SETTLEMENT", fmt.Sprintf("settlement of order %d failed: %v", orderID, err))
			}
		case <-q.quit:
			return
		}
	}
}

// Stop shuts the workers down. Already queued and not yet fired timers are
// discarded.
func (q *Queue) Stop() {
	q.stopped.Do(func() {
		close(q.quit)
		q.wg.Wait()
	})
}
