package processor

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"valora/server/config"
	"valora/server/internal/models"
	"valora/server/internal/queue"
)

// MockDB is a mock TxRunner.
type MockDB struct {
	mock.Mock
}

func (m *MockDB) Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error {
	args := m.Called(fc)
	return args.Error(0)
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 3
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func TestNewBatchProcessor(t *testing.T) {
	mockDB := &MockDB{}
	logger := logrus.New()
	mockQueue := queue.NewUnitQueue(10, logger)
	cfg := newTestConfig()

	processor := NewBatchProcessor(mockDB, mockQueue, cfg, logger)

	assert.NotNil(t, processor)
	assert.Equal(t, mockDB, processor.db)
	assert.Equal(t, mockQueue, processor.queue)
	assert.Equal(t, cfg, processor.config)
	assert.Equal(t, logger, processor.logger)
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	mockDB := &MockDB{}
	logger := logrus.New()
	mockQueue := queue.NewUnitQueue(10, logger)
	cfg := newTestConfig()

	processor := NewBatchProcessor(mockDB, mockQueue, cfg, logger)

	batch := []*models.Unit{
		{ID: "u1", Label: "A-101"},
		{ID: "u2", Label: "A-102"},
	}

	// Test successful processing
	mockDB.On("Transaction", mock.Anything).Return(nil).Once()
	err := processor.processBatch(batch)
	assert.NoError(t, err)

	// Test retry on failure: one initial attempt plus three retries
	mockDB.On("Transaction", mock.Anything).Return(errors.New("db error")).Times(4)
	err = processor.processBatch(batch)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch after 3 attempts")
	mockDB.AssertExpectations(t)
}

func TestBatchProcessor_StartStop(t *testing.T) {
	mockDB := &MockDB{}
	logger := logrus.New()
	mockQueue := queue.NewUnitQueue(10, logger)
	cfg := newTestConfig()

	processor := NewBatchProcessor(mockDB, mockQueue, cfg, logger)

	processor.Start()
	time.Sleep(100 * time.Millisecond) // Give time for goroutines to start

	processor.Stop()
	mockQueue.Close()
	assert.True(t, mockQueue.IsClosed())
}

func TestBatchProcessor_EachBatchProcessedOnce(t *testing.T) {
	mockDB := &MockDB{}
	logger := logrus.New()
	mockQueue := queue.NewUnitQueue(10, logger)
	cfg := newTestConfig() // ProcessorCount is 2

	processor := NewBatchProcessor(mockDB, mockQueue, cfg, logger)

	done := make(chan struct{})
	mockDB.On("Transaction", mock.Anything).Run(func(mock.Arguments) {
		close(done)
	}).Return(nil).Once()

	processor.Start()
	mockQueue.Start()

	batch := []*models.Unit{{ID: "u1", Label: "A-101"}}
	assert.NoError(t, mockQueue.Push(batch))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch was never processed")
	}

	// A duplicate dispatch would surface here and trip the Once expectation.
	time.Sleep(100 * time.Millisecond)
	mockQueue.Close()
	processor.Stop()

	mockDB.AssertNumberOfCalls(t, "Transaction", 1)
}
