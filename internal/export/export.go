// Package export renders a valuation study into an XLSX workbook for the
// back-office report flow.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"valora/server/internal/study"
	"valora/server/internal/valuation"
)

const (
	sheetSummary     = "Summary"
	sheetComparables = "Comparables"
	sheetValuations  = "Valuations"
)

// BuildStudyWorkbook renders the study's analysis and valuations into a
// three-sheet workbook. The caller owns closing the returned file.
func BuildStudyWorkbook(s *study.Study) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSummary(f, s); err != nil {
		return nil, err
	}
	if err := writeComparables(f, s); err != nil {
		return nil, err
	}
	if err := writeValuations(f, s); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(index)
	}
	return f, nil
}

func writeSummary(f *excelize.File, s *study.Study) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	analysis := s.Analysis()
	target := s.Target()
	minValue, maxValue := s.ValuationRange()

	rows := [][]interface{}{
		{"Study", s.ID()},
		{"Owner", s.Owner()},
		{"Address", target.Address},
		{"Target area (m²)", target.Area.Value()},
		{"Evaluation type", s.EvaluationType()},
		{"Comparables", len(s.Comparables())},
		{"Retained", len(analysis.Retained())},
		{"Outliers", len(analysis.Outliers())},
		{"Excluded", len(analysis.Excluded())},
		{"Mean price/m²", analysis.Mean()},
		{"Median price/m²", analysis.Median()},
		{"Std deviation", analysis.StdDev()},
		{"CV (%)", analysis.CV()},
		{"Precision", string(analysis.Precision())},
		{"Reliable", analysis.IsReliable()},
		{"Degraded", analysis.Degraded()},
		{"Value range", fmt.Sprintf("%.2f - %.2f %s", minValue.Amount(), maxValue.Amount(), minValue.Currency())},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func writeComparables(f *excelize.File, s *study.Study) error {
	if _, err := f.NewSheet(sheetComparables); err != nil {
		return fmt.Errorf("failed to create comparables sheet: %w", err)
	}

	target := s.Target()
	hasTargetCoords := target.Latitude != nil && target.Longitude != nil

	head := []interface{}{"ID", "Location", "Status", "Area (m²)", "Original price", "Homogenized", "Price/m²", "Classification"}
	if hasTargetCoords {
		head = append(head, "Distance to target (m)")
	}
	if err := f.SetSheetRow(sheetComparables, "A1", &head); err != nil {
		return err
	}

	analysis := s.Analysis()
	classes := make(map[string]string)
	for _, c := range analysis.Outliers() {
		classes[c.ID()] = "outlier"
	}
	for _, c := range analysis.Excluded() {
		classes[c.ID()] = "excluded"
	}
	for _, c := range analysis.Retained() {
		classes[c.ID()] = "retained"
	}

	for i, c := range analysis.Samples() {
		row := []interface{}{
			c.ID(),
			c.Location(),
			string(c.Status()),
			c.Area().Value(),
			c.Price().Amount(),
			c.Homogenized().Amount(),
			c.PricePerArea(),
			classes[c.ID()],
		}
		if hasTargetCoords {
			if distance, ok := c.DistanceTo(*target.Latitude, *target.Longitude); ok {
				row = append(row, distance)
			} else {
				row = append(row, "")
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetComparables, cell, &row); err != nil {
			return fmt.Errorf("failed to write comparable row: %w", err)
		}
	}
	return nil
}

func writeValuations(f *excelize.File, s *study.Study) error {
	if _, err := f.NewSheet(sheetValuations); err != nil {
		return fmt.Errorf("failed to create valuations sheet: %w", err)
	}

	head := []interface{}{"Standard", "Price/m²", "Total value", "Currency"}
	if err := f.SetSheetRow(sheetValuations, "A1", &head); err != nil {
		return err
	}

	valuations := s.Valuations()
	rowIndex := 2
	for _, standard := range valuation.StandardOrder {
		v, ok := valuations[standard]
		if !ok {
			continue
		}
		row := []interface{}{
			string(standard),
			v.PricePerArea().Amount(),
			v.TotalValue().Amount(),
			v.TotalValue().Currency(),
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIndex)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetValuations, cell, &row); err != nil {
			return fmt.Errorf("failed to write valuation row: %w", err)
		}
		rowIndex++
	}
	return nil
}
