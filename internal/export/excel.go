// Package export writes analysis results to spreadsheet reports.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/resume-matcher/internal/models"
)

// Sheet names of the analysis report
const (
	SummarySheet     = "Summary"
	SkillsSheet      = "Skills"
	GraphSheet       = "Knowledge Graph"
	FrequenciesSheet = "Skill Frequencies"
)

// Score bands used for colour coding, in percent
const (
	StrongMatchPercent  = 70.0
	PartialMatchPercent = 40.0
)

const notFound = "Not found"

// ExportToExcel writes an analysis report to outputPath and returns the path
// actually written; ".xlsx" is appended when missing
func ExportToExcel(result models.AnalysisResult, outputPath string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	var buf bytes.Buffer
	if err := WriteExcel(result, &buf); err != nil {
		return "", err
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return outputPath, nil
}

// WriteExcel writes an analysis report to w
func WriteExcel(result models.AnalysisResult, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	for _, name := range []string{SkillsSheet, GraphSheet, FrequenciesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create %s sheet: %w", name, err)
		}
	}

	s, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	if err := createSummarySheet(f, s, result); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createSkillsSheet(f, s, result); err != nil {
		return fmt.Errorf("failed to create skills sheet: %w", err)
	}
	if err := createGraphSheet(f, s, result.Graph); err != nil {
		return fmt.Errorf("failed to create graph sheet: %w", err)
	}
	if err := createFrequenciesSheet(f, s, result.SkillFrequencies); err != nil {
		return fmt.Errorf("failed to create frequencies sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

type styles struct {
	title   int
	label   int
	header  int
	matched int
	strong  int
	partial int
	weak    int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}

	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
			Fill:      fill("4472C4"),
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		}},
		{&s.label, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      fill("4472C4"),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    border,
		}},
		{&s.matched, &excelize.Style{Fill: fill("C6EFCE"), Border: border}},
		{&s.strong, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: fill("C6EFCE")}},
		{&s.partial, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: fill("FFEB9C")}},
		{&s.weak, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: fill("FFC7CE")}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, err
		}
		*d.dst = id
	}
	return s, nil
}

func (s styles) band(percent float64) int {
	switch {
	case percent >= StrongMatchPercent:
		return s.strong
	case percent >= PartialMatchPercent:
		return s.partial
	default:
		return s.weak
	}
}

// createSummarySheet lists the extracted fields and the match score
func createSummarySheet(f *excelize.File, s styles, result models.AnalysisResult) error {
	sheet := SummarySheet
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "B", 60)

	row := 1
	f.SetCellValue(sheet, "A1", "Resume Match Report")
	f.SetCellStyle(sheet, "A1", "B1", s.title)
	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	row += 2

	matched := result.Graph.MatchedSkills()
	pairs := []struct {
		label string
		value interface{}
	}{
		{"Request ID:", result.RequestID},
		{"Generated:", result.Timestamp},
		{"Name:", models.Deref(result.Fields.Name, notFound)},
		{"Email:", models.Deref(result.Fields.Email, notFound)},
		{"Phone:", models.Deref(result.Fields.Phone, notFound)},
		{"Education:", joinOr(result.Education, notFound)},
		{"Skills Found:", len(result.Skills)},
		{"Job Description Skills:", len(result.JobSkills)},
		{"Matched Skills:", joinOr(matched, "None")},
	}
	for _, p := range pairs {
		label := fmt.Sprintf("A%d", row)
		f.SetCellValue(sheet, label, p.label)
		f.SetCellStyle(sheet, label, label, s.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.value)
		row++
	}

	row++
	label := fmt.Sprintf("A%d", row)
	value := fmt.Sprintf("B%d", row)
	f.SetCellValue(sheet, label, "Match Score:")
	f.SetCellStyle(sheet, label, label, s.label)
	if !result.HasJobDescription {
		f.SetCellValue(sheet, value, "No job description provided")
		return nil
	}
	f.SetCellValue(sheet, value, fmt.Sprintf("%.2f%%", result.ScorePercent))
	f.SetCellStyle(sheet, value, value, s.band(result.ScorePercent))

	return nil
}

// createSkillsSheet lists every skill node with the side it came from
func createSkillsSheet(f *excelize.File, s styles, result models.AnalysisResult) error {
	sheet := SkillsSheet
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "D", 18)

	if err := writeHeader(f, sheet, s, "Skill", "In Resume", "In Job Description", "Matched"); err != nil {
		return err
	}

	g := result.Graph
	ids := g.SkillIDs()
	for i, id := range ids {
		row := i + 2
		_, inResume := g.Edge(models.ResumeNodeID, id)
		_, inJD := g.Edge(models.JobDescriptionNodeID, id)
		isMatched := inResume && inJD

		values := []interface{}{id, yesNo(inResume), yesNo(inJD), yesNo(isMatched)}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		if isMatched {
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), s.matched)
		}
	}

	if len(ids) > 0 {
		return f.AutoFilter(sheet, fmt.Sprintf("A1:D%d", len(ids)+1), nil)
	}
	return nil
}

// createGraphSheet lists the edges of the knowledge graph, then its nodes
func createGraphSheet(f *excelize.File, s styles, g models.KnowledgeGraph) error {
	sheet := GraphSheet
	f.SetColWidth(sheet, "A", "B", 25)
	f.SetColWidth(sheet, "F", "F", 25)

	if err := writeHeader(f, sheet, s, "Source", "Target", "Matched", "Color"); err != nil {
		return err
	}
	for i, e := range g.Edges() {
		values := []interface{}{e.Source, e.Target, yesNo(e.Matched), e.Color}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}

	nodeHeader := []interface{}{"Node", "Kind", "Size", "Color"}
	if err := f.SetSheetRow(sheet, "F1", &nodeHeader); err != nil {
		return err
	}
	f.SetCellStyle(sheet, "F1", "I1", s.header)
	for i, n := range g.Nodes() {
		values := []interface{}{n.ID, string(n.Kind), n.Size, n.Color}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("F%d", i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

// createFrequenciesSheet lists how often each résumé skill occurs
func createFrequenciesSheet(f *excelize.File, s styles, counts []models.SkillCount) error {
	sheet := FrequenciesSheet
	f.SetColWidth(sheet, "A", "A", 30)

	if err := writeHeader(f, sheet, s, "Skill", "Count"); err != nil {
		return err
	}
	for i, c := range counts {
		values := []interface{}{c.Skill, c.Count}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, s styles, headers ...string) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, s.header)
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, "; ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
