package api

import (
	"time"

	"valora/server/internal/valuation"
)

// ComparableRequest is one submitted comparable data point.
type ComparableRequest struct {
	Location    string             `json:"location" binding:"required"`
	AreaSqm     float64            `json:"area_sqm" binding:"required"`
	Price       float64            `json:"price" binding:"required"`
	Status      string             `json:"status" binding:"required"`
	Scores      map[string]float64 `json:"scores"`
	Latitude    *float64           `json:"latitude"`
	Longitude   *float64           `json:"longitude"`
	ListingDate *time.Time         `json:"listing_date"`
	SellingDate *time.Time         `json:"selling_date"`
}

// StudyRequest submits a full valuation study.
type StudyRequest struct {
	Owner          string              `json:"owner" binding:"required"`
	Address        string              `json:"address" binding:"required"`
	TargetAreaSqm  float64             `json:"target_area_sqm" binding:"required"`
	EvaluationType string              `json:"evaluation_type"`
	Currency       string              `json:"currency" binding:"required"`
	TargetFactors  map[string]float64  `json:"target_factors" binding:"required"`
	Perception     float64             `json:"perception"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
	Comparables    []ComparableRequest `json:"comparables" binding:"required"`
}

// SelectStandardRequest picks a finish standard for a stored study.
type SelectStandardRequest struct {
	Standard string `json:"standard" binding:"required"`
}

// ArtifactRequest attaches generated artifact URLs to a study.
type ArtifactRequest struct {
	ReportURL string `json:"report_url"`
	SlidesURL string `json:"slides_url"`
}

// ApprovalRequest runs the payment-approval calculator.
type ApprovalRequest struct {
	MonthlyIncome      float64 `json:"monthly_income" binding:"required"`
	MonthlyObligations float64 `json:"monthly_obligations"`
	Installment        float64 `json:"installment" binding:"required"`
	Currency           string  `json:"currency" binding:"required"`
	CommitmentLimit    float64 `json:"commitment_limit"`
}

// ProjectRequest creates a development project.
type ProjectRequest struct {
	Name      string `json:"name" binding:"required"`
	Developer string `json:"developer"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

// UnitRequest creates a single unit.
type UnitRequest struct {
	Label    string  `json:"label" binding:"required"`
	AreaSqm  float64 `json:"area_sqm" binding:"required"`
	Price    float64 `json:"price" binding:"required"`
	Currency string  `json:"currency" binding:"required"`
	Status   string  `json:"status" binding:"required"`
}

// toComparable converts a request entry into a domain comparable.
func (r ComparableRequest) toComparable(id, currency string) (valuation.Comparable, error) {
	area, err := valuation.NewArea(r.AreaSqm)
	if err != nil {
		return valuation.Comparable{}, err
	}
	price, err := valuation.NewMoney(r.Price, currency)
	if err != nil {
		return valuation.Comparable{}, err
	}
	return valuation.NewComparable(valuation.ComparableInput{
		ID:          id,
		Location:    r.Location,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Area:        area,
		Price:       price,
		Status:      valuation.SampleStatus(r.Status),
		Scores:      r.Scores,
		ListingDate: r.ListingDate,
		SellingDate: r.SellingDate,
	})
}
