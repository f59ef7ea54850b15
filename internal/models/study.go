package models

import (
	"encoding/json"
	"time"

	"valora/server/internal/study"
)

// StudyRecord is the persisted form of a valuation study. The engine output
// (comparables, analysis, valuations) is stored as its serialized snapshot;
// the queried columns are duplicated alongside.
type StudyRecord struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	Owner            string    `json:"owner" gorm:"index"`
	Address          string    `json:"address"`
	EvaluationType   string    `json:"evaluation_type"`
	SelectedStandard string    `json:"selected_standard"`
	ReportURL        string    `json:"report_url"`
	SlidesURL        string    `json:"slides_url"`
	Payload          string    `json:"-" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewStudyRecord serializes a study aggregate for persistence.
func NewStudyRecord(s *study.Study) (*StudyRecord, error) {
	snap := s.Snapshot()
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	record := &StudyRecord{
		ID:             snap.ID,
		Owner:          snap.Owner,
		Address:        snap.Target.Address,
		EvaluationType: snap.EvaluationType,
		ReportURL:      snap.ReportURL,
		SlidesURL:      snap.SlidesURL,
		Payload:        string(payload),
		CreatedAt:      snap.CreatedAt,
		UpdatedAt:      snap.UpdatedAt,
	}
	if snap.Selected != nil {
		record.SelectedStandard = string(*snap.Selected)
	}
	return record, nil
}

// ToStudy rebuilds the study aggregate from the stored snapshot.
func (r *StudyRecord) ToStudy() (*study.Study, error) {
	var snap study.Snapshot
	if err := json.Unmarshal([]byte(r.Payload), &snap); err != nil {
		return nil, err
	}
	return study.FromSnapshot(snap)
}
