package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"valora/server/internal/models"
	"valora/server/internal/study"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// StudyRepository persists study aggregates through their serialized
// snapshots.
type StudyRepository struct {
	db *gorm.DB
}

func NewStudyRepository(db *gorm.DB) *StudyRepository {
	return &StudyRepository{db: db}
}

// Save inserts a new study.
func (r *StudyRepository) Save(s *study.Study) error {
	record, err := models.NewStudyRecord(s)
	if err != nil {
		return fmt.Errorf("failed to serialize study: %w", err)
	}
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to save study: %w", err)
	}
	return nil
}

// FindByID loads one study aggregate.
func (r *StudyRepository) FindByID(id string) (*study.Study, error) {
	var record models.StudyRecord
	err := r.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load study: %w", err)
	}
	return record.ToStudy()
}

// FindByOwner lists study records for one owner, newest first. Returns the
// records rather than full aggregates since listings only need metadata.
func (r *StudyRepository) FindByOwner(owner string) ([]models.StudyRecord, error) {
	var records []models.StudyRecord
	query := r.db.Order("created_at DESC")
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list studies: %w", err)
	}
	return records, nil
}

// Update rewrites an existing study's snapshot and metadata columns.
func (r *StudyRepository) Update(s *study.Study) error {
	record, err := models.NewStudyRecord(s)
	if err != nil {
		return fmt.Errorf("failed to serialize study: %w", err)
	}
	result := r.db.Model(&models.StudyRecord{}).Where("id = ?", record.ID).Updates(map[string]interface{}{
		"selected_standard": record.SelectedStandard,
		"report_url":        record.ReportURL,
		"slides_url":        record.SlidesURL,
		"payload":           record.Payload,
		"updated_at":        record.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update study: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a study.
func (r *StudyRepository) Delete(id string) error {
	result := r.db.Delete(&models.StudyRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete study: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
