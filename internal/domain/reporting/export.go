package reporting

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportResult carries a rendered report ready to stream to the client.
type ExportResult struct {
	ContentType string
	Filename    string
	Data        []byte
}

var exportHeader = []string{
	"User ID", "Name", "Department", "Objectives", "Approved", "Completion Rate", "Average Score",
}

// Export renders the per-employee rollup for a period as CSV or PDF.
func (s *Service) Export(ctx context.Context, periodID, format string) (ExportResult, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return ExportResult{}, err
	}
	objectives, err := s.listObjectives(ctx, periodID)
	if err != nil {
		return ExportResult{}, err
	}
	completions, err := s.listCompletions(ctx, periodID)
	if err != nil {
		return ExportResult{}, err
	}

	rows := exportRows(employeeStats(employees, objectives, completions))
	name := "performance-report"
	if periodID != "" {
		name += "-" + periodID
	}

	switch format {
	case FormatPDF:
		data, err := renderPDF(periodID, rows)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{ContentType: "application/pdf", Filename: name + ".pdf", Data: data}, nil
	default:
		data, err := renderCSV(rows)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{ContentType: "text/csv; charset=utf-8", Filename: name + ".csv", Data: data}, nil
	}
}

func exportRows(stats []EmployeeStats) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []string{
			st.UserID,
			st.Name,
			st.Department,
			strconv.Itoa(st.Objectives),
			strconv.Itoa(st.Approved),
			strconv.FormatFloat(st.CompletionRate, 'f', 0, 64) + "%",
			strconv.FormatFloat(st.AverageScore, 'f', 1, 64),
		})
	}
	return rows
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPDF(periodID string, rows [][]string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Performance Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	title := "Performance Report"
	if periodID != "" {
		title = fmt.Sprintf("Performance Report - %s", periodID)
	}
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{35, 45, 45, 30, 30, 40, 35}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range exportHeader {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
