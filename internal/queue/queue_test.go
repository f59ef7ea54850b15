package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"valora/server/internal/models"
)

func TestNewUnitQueue(t *testing.T) {
	logger := logrus.New()
	q := NewUnitQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestUnitQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewUnitQueue(2, logger)

	// Test successful push
	units := []*models.Unit{{Label: "A-101"}}
	err := q.Push(units)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	for i := 0; i < 2; i++ {
		units := []*models.Unit{{Label: "A-102"}}
		_ = q.Push(units)
	}
	err = q.Push(units)
	assert.Equal(t, ErrQueueFull, err)

	// Test closed queue
	q.Close()
	err = q.Push(units)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestUnitQueue_Subscribe(t *testing.T) {
	logger := logrus.New()
	q := NewUnitQueue(10, logger)

	var processed []*models.Unit
	var mu sync.Mutex

	// Add handler
	q.Subscribe(func(units []*models.Unit) error {
		mu.Lock()
		processed = append(processed, units...)
		mu.Unlock()
		return nil
	})

	// Start queue
	q.Start()

	// Push items
	testUnits := []*models.Unit{{Label: "A-101"}, {Label: "A-102"}}
	err := q.Push(testUnits)
	assert.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	// Verify processing
	mu.Lock()
	assert.Equal(t, 2, len(processed))
	assert.Equal(t, "A-101", processed[0].Label)
	assert.Equal(t, "A-102", processed[1].Label)
	mu.Unlock()
}

func TestUnitQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewUnitQueue(10, logger)

	// Test first close
	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Test second close (should be no-op)
	err = q.Close()
	assert.NoError(t, err)
}

func TestUnitQueue_ProcessBatch(t *testing.T) {
	logger := logrus.New()
	q := NewUnitQueue(10, logger)

	var wg sync.WaitGroup
	processedBatches := 0
	var mu sync.Mutex

	// Add multiple handlers
	for i := 0; i < 3; i++ {
		wg.Add(1)
		q.Subscribe(func(units []*models.Unit) error {
			mu.Lock()
			processedBatches++
			mu.Unlock()
			wg.Done()
			return nil
		})
	}

	// Start queue
	q.Start()

	// Push a batch
	testUnits := []*models.Unit{{Label: "A-101"}}
	err := q.Push(testUnits)
	assert.NoError(t, err)

	// Wait for all handlers
	wg.Wait()

	// Verify all handlers processed the batch
	mu.Lock()
	assert.Equal(t, 3, processedBatches)
	mu.Unlock()
}
