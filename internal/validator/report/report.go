// Package report aggregates batch results and renders them as a workbook.
package report

import (
	"bytes"
	"fmt"

	"scan-validator/internal/validator/engine"
	"scan-validator/internal/validator/models"

	"github.com/xuri/excelize/v2"
)

// ============================================================
// Tally
// ============================================================

// CheckCount is the outcome of one check across a batch.
type CheckCount struct {
	Check  models.Check `json:"check"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
}

type Summary struct {
	Total          int          `json:"total"`
	Validated      int          `json:"validated"`
	DecodeFailures int          `json:"decode_failures"`
	Clean          int          `json:"clean"`
	Checks         []CheckCount `json:"checks"`
}

// Tally counts passes and failures per check. Undecodable artifacts count
// toward Total and DecodeFailures only.
func Tally(results []engine.Result) Summary {
	s := Summary{
		Total:  len(results),
		Checks: make([]CheckCount, len(models.Checks)),
	}
	for i, c := range models.Checks {
		s.Checks[i].Check = c
	}

	for _, r := range results {
		if r.Failed() {
			s.DecodeFailures++
			continue
		}
		s.Validated++
		if r.Flags.Clean() {
			s.Clean++
		}
		for i, c := range models.Checks {
			if r.Flags.Failed(c) {
				s.Checks[i].Failed++
			} else {
				s.Checks[i].Passed++
			}
		}
	}
	return s
}

// Count returns the tally for one check.
func (s Summary) Count(c models.Check) CheckCount {
	for _, cc := range s.Checks {
		if cc.Check == c {
			return cc
		}
	}
	return CheckCount{Check: c}
}

// ============================================================
// Workbook
// ============================================================

const (
	SummarySheet   = "Summary"
	ArtifactsSheet = "Artifacts"
)

// WriteXLSX renders the summary and per-artifact verdicts as an xlsx file.
func WriteXLSX(summary Summary, results []engine.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if _, err := f.NewSheet(ArtifactsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, headerStyle, summary); err != nil {
		return nil, err
	}
	if err := writeArtifacts(f, headerStyle, results); err != nil {
		return nil, err
	}

	if idx, err := f.GetSheetIndex(SummarySheet); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, style int, s Summary) error {
	if err := writeHeader(f, SummarySheet, style, []string{"Check", "Passed", "Failed"}, []float64{30, 12, 12}); err != nil {
		return err
	}

	row := 2
	for _, c := range s.Checks {
		if err := writeRow(f, SummarySheet, row, string(c.Check), c.Passed, c.Failed); err != nil {
			return err
		}
		row++
	}

	row++
	totals := []struct {
		label string
		value int
	}{
		{"Artifacts", s.Total},
		{"Validated", s.Validated},
		{"Decode failures", s.DecodeFailures},
		{"Clean", s.Clean},
	}
	for _, t := range totals {
		if err := writeRow(f, SummarySheet, row, t.label, t.value); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeArtifacts(f *excelize.File, style int, results []engine.Result) error {
	headers := []string{"Artifact", "Hash", "Error"}
	widths := []float64{30, 20, 40}
	for _, c := range models.Checks {
		headers = append(headers, string(c))
		widths = append(widths, 16)
	}
	if err := writeHeader(f, ArtifactsSheet, style, headers, widths); err != nil {
		return err
	}

	for i, r := range results {
		values := []any{r.ArtifactID, r.Hash, r.Err}
		if !r.Failed() {
			for _, c := range models.Checks {
				verdict := "PASS"
				if r.Flags.Failed(c) {
					verdict = "FAIL"
				}
				values = append(values, verdict)
			}
		}
		if err := writeRow(f, ArtifactsSheet, i+2, values...); err != nil {
			return err
		}
	}

	if err := f.SetPanes(ArtifactsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string, widths []float64) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		if v == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
