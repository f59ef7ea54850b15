// Package importer parses unit inventory CSV files and feeds them into the
// batch import queue.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"valora/server/internal/models"
	"valora/server/internal/queue"
)

// header is the required CSV column layout.
var header = []string{"label", "area_sqm", "price", "currency", "status"}

// Importer chunks parsed units into batches and pushes them onto the queue.
type Importer struct {
	queue     *queue.UnitQueue
	batchSize int
	logger    *logrus.Logger
}

func New(queue *queue.UnitQueue, batchSize int, logger *logrus.Logger) *Importer {
	return &Importer{
		queue:     queue,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Import parses the CSV stream and enqueues the units for the given project.
// Returns the number of units enqueued.
func (i *Importer) Import(r io.Reader, projectID string) (int, error) {
	units, err := ParseUnits(r, projectID)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for start := 0; start < len(units); start += i.batchSize {
		end := start + i.batchSize
		if end > len(units) {
			end = len(units)
		}
		if err := i.queue.Push(units[start:end]); err != nil {
			return enqueued, fmt.Errorf("failed to enqueue batch: %w", err)
		}
		enqueued += end - start
	}

	i.logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"units":      enqueued,
	}).Info("Unit import enqueued")
	return enqueued, nil
}

// ParseUnits reads and validates CSV rows of the form
// label,area_sqm,price,currency,status.
func ParseUnits(r io.Reader, projectID string) ([]*models.Unit, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := validateHeader(first); err != nil {
		return nil, err
	}

	var units []*models.Unit
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		unit, err := parseRecord(record, projectID)
		if err != nil {
			return nil, fmt.Errorf("invalid CSV line %d: %w", line, err)
		}
		units = append(units, unit)
	}

	if len(units) == 0 {
		return nil, fmt.Errorf("CSV contains no unit rows")
	}
	return units, nil
}

func validateHeader(columns []string) error {
	if len(columns) != len(header) {
		return fmt.Errorf("expected CSV header %s", strings.Join(header, ","))
	}
	for i, column := range columns {
		if strings.ToLower(strings.TrimSpace(column)) != header[i] {
			return fmt.Errorf("expected CSV header %s", strings.Join(header, ","))
		}
	}
	return nil
}

func parseRecord(record []string, projectID string) (*models.Unit, error) {
	if len(record) != len(header) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(header), len(record))
	}

	label := strings.TrimSpace(record[0])
	if label == "" {
		return nil, fmt.Errorf("label is required")
	}

	area, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil || area <= 0 {
		return nil, fmt.Errorf("area_sqm must be a positive number")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("price must be a non-negative number")
	}

	currency := strings.ToUpper(strings.TrimSpace(record[3]))
	if currency == "" {
		return nil, fmt.Errorf("currency is required")
	}

	status := strings.ToLower(strings.TrimSpace(record[4]))
	switch status {
	case models.UnitStatusAvailable, models.UnitStatusReserved, models.UnitStatusSold:
	default:
		return nil, fmt.Errorf("status must be available, reserved or sold")
	}

	return &models.Unit{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Label:     label,
		AreaSqm:   area,
		Price:     price,
		Currency:  currency,
		Status:    status,
	}, nil
}
