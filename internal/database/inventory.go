package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"valora/server/internal/models"
)

// ProjectRepository manages development projects and their units.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project.
func (r *ProjectRepository) Create(project *models.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// FindAll lists all projects without their units.
func (r *ProjectRepository) FindAll() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// FindByID loads a project with its units.
func (r *ProjectRepository) FindByID(id string) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("Units").First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return &project, nil
}

// Delete removes a project and its units.
func (r *ProjectRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Unit{}, "project_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete project units: %w", err)
		}
		result := tx.Delete(&models.Project{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete project: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Stats aggregates unit counts and pricing for one project, mirroring the
// dashboard's inventory summary.
func (r *ProjectRepository) Stats(projectID string) (models.ProjectStats, error) {
	stats := models.ProjectStats{ProjectID: projectID}

	row := r.db.Model(&models.Unit{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS available,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS reserved,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS sold,
			COALESCE(AVG(price), 0) AS average_price,
			COALESCE(AVG(price / NULLIF(area_sqm, 0)), 0) AS avg_price_per_sqm`,
			models.UnitStatusAvailable, models.UnitStatusReserved, models.UnitStatusSold).
		Where("project_id = ?", projectID).
		Row()
	err := row.Scan(&stats.TotalUnits, &stats.Available, &stats.Reserved, &stats.Sold,
		&stats.AveragePrice, &stats.AvgPricePerSqm)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate project stats: %w", err)
	}
	return stats, nil
}

// UnitRepository manages individual units.
type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// Create inserts a new unit.
func (r *UnitRepository) Create(unit *models.Unit) error {
	if err := r.db.Create(unit).Error; err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

// FindByProject lists a project's units ordered by label.
func (r *UnitRepository) FindByProject(projectID string) ([]models.Unit, error) {
	var units []models.Unit
	if err := r.db.Where("project_id = ?", projectID).Order("label").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

// UpsertUnits inserts a batch of units inside the given transaction,
// replacing rows that collide on (project_id, label).
func UpsertUnits(tx *gorm.DB, units []*models.Unit) error {
	if len(units) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, unit := range units {
		unit.UpdatedAt = now
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "label"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"area_sqm", "price", "currency", "status", "updated_at",
		}),
	}).Create(units).Error
	if err != nil {
		return fmt.Errorf("failed to upsert units: %w", err)
	}
	return nil
}
