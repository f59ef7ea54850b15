package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"valora/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// UnitQueue is an in-memory queue of unit batches feeding the import
// pipeline.
type UnitQueue struct {
	items    chan []*models.Unit
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.Unit) error
}

// NewUnitQueue creates a unit queue with the specified buffer size.
func NewUnitQueue(bufferSize int, logger *logrus.Logger) *UnitQueue {
	return &UnitQueue{
		items:    make(chan []*models.Unit, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]*models.Unit) error, 0),
	}
}

// Push adds a batch of units to the queue. The send never blocks; a full
// queue returns ErrQueueFull so the importer can surface backpressure.
func (q *UnitQueue) Push(units []*models.Unit) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- units:
		q.logger.WithField("batch_size", len(units)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch.
func (q *UnitQueue) Subscribe(handler func([]*models.Unit) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue.
func (q *UnitQueue) Start() {
	go q.process()
}

func (q *UnitQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers.
func (q *UnitQueue) processBatch(batch []*models.Unit) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue and prevents new items from being added.
func (q *UnitQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue.
func (q *UnitQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *UnitQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
