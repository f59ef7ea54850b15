package models

import "time"

// UnitStatus tracks a unit through the sales funnel.
const (
	UnitStatusAvailable = "available"
	UnitStatusReserved  = "reserved"
	UnitStatusSold      = "sold"
)

// Project is a development project holding sellable units.
type Project struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"index"`
	Developer string    `json:"developer"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Units     []Unit    `json:"units,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unit is one sellable unit inside a project.
type Unit struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ProjectID string    `json:"project_id" gorm:"index;uniqueIndex:idx_units_project_label,priority:1"`
	Label     string    `json:"label" gorm:"uniqueIndex:idx_units_project_label,priority:2"`
	AreaSqm   float64   `json:"area_sqm"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectStats summarizes a project's inventory.
type ProjectStats struct {
	ProjectID      string  `json:"project_id"`
	TotalUnits     int     `json:"total_units"`
	Available      int     `json:"available"`
	Reserved       int     `json:"reserved"`
	Sold           int     `json:"sold"`
	AveragePrice   float64 `json:"average_price"`
	AvgPricePerSqm float64 `json:"avg_price_per_sqm"`
}
