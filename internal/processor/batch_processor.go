package processor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"valora/server/config"
	"valora/server/internal/database"
	"valora/server/internal/models"
	"valora/server/internal/queue"
)

// TxRunner runs a function inside a database transaction. *gorm.DB
// satisfies it; tests substitute a mock.
type TxRunner interface {
	Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error
}

// BatchProcessor drains the import queue and upserts unit batches inside
// database transactions with retry.
type BatchProcessor struct {
	db        TxRunner
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.UnitQueue
	slots     chan struct{}
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance.
func NewBatchProcessor(db TxRunner, queue *queue.UnitQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		slots:  make(chan struct{}, config.BatchProcessing.ProcessorCount),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the queue handler. The handler runs once per batch;
// ProcessorCount bounds how many batches are upserted concurrently.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(func(batch []*models.Unit) error {
		select {
		case <-p.ctx.Done():
			return p.ctx.Err()
		case p.slots <- struct{}{}:
		}

		p.waitGroup.Add(1)
		go func() {
			defer p.waitGroup.Done()
			defer func() { <-p.slots }()
			if err := p.processBatch(batch); err != nil {
				p.logger.WithError(err).Error("Dropping batch after exhausting retries")
			}
		}()
		return nil
	})
}

// Stop waits for in-flight batches and stops accepting new ones.
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// processBatch handles a single batch of units with transaction and retry
// logic.
func (p *BatchProcessor) processBatch(batch []*models.Unit) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertUnits(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert unit batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d units", len(batch))
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries, err)
}
