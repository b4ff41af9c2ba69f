package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/resume-matcher/internal/graph"
	"github.com/fmuoria/resume-matcher/internal/models"
)

func sampleResult() models.AnalysisResult {
	return models.AnalysisResult{
		RequestID: "req-1",
		Fields: models.ExtractedFields{
			Name:  models.StringPtr("Jane Roe"),
			Email: models.StringPtr("jane@roe.dev"),
		},
		Education:         []string{"Delta University"},
		Skills:            []string{"python", "sql", "python"},
		JobSkills:         []string{"python", "docker"},
		SkillFrequencies:  []models.SkillCount{{Skill: "python", Count: 2}, {Skill: "sql", Count: 1}},
		Score:             0.4512,
		ScorePercent:      45.12,
		Graph:             graph.Build([]string{"python", "sql", "python"}, []string{"python", "docker"}),
		HasJobDescription: true,
		Timestamp:         "2026-01-02T03:04:05Z",
	}
}

func openReport(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExportToExcelEnsuresXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()

	written, err := ExportToExcel(sampleResult(), filepath.Join(tmpDir, "report"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "report.xlsx"), written)
	assert.FileExists(t, written)

	written, err = ExportToExcel(sampleResult(), filepath.Join(tmpDir, "other.XLSX"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "other.XLSX"), written)
}

func TestExportToExcelBadDirectory(t *testing.T) {
	_, err := ExportToExcel(sampleResult(), filepath.Join(t.TempDir(), "missing", "report.xlsx"))
	assert.ErrorContains(t, err, "failed to save Excel file")
}

func TestWriteExcelSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(sampleResult(), &buf))

	f := openReport(t, buf.Bytes())
	assert.Equal(t, []string{SummarySheet, SkillsSheet, GraphSheet, FrequenciesSheet}, f.GetSheetList())
}

func TestWriteExcelSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(sampleResult(), &buf))
	f := openReport(t, buf.Bytes())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)

	summary := make(map[string]string)
	for _, r := range rows {
		if len(r) == 2 {
			summary[r[0]] = r[1]
		}
	}
	assert.Equal(t, "Jane Roe", summary["Name:"])
	assert.Equal(t, "jane@roe.dev", summary["Email:"])
	assert.Equal(t, "Not found", summary["Phone:"])
	assert.Equal(t, "Delta University", summary["Education:"])
	assert.Equal(t, "python", summary["Matched Skills:"])
	assert.Equal(t, "45.12%", summary["Match Score:"])
}

func TestWriteExcelWithoutJobDescription(t *testing.T) {
	result := sampleResult()
	result.HasJobDescription = false
	result.JobSkills = []string{}
	result.Graph = graph.Build(result.Skills, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(result, &buf))
	f := openReport(t, buf.Bytes())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, []string{"Match Score:", "No job description provided"}, last)
}

func TestWriteExcelSkillsAndGraph(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(sampleResult(), &buf))
	f := openReport(t, buf.Bytes())

	skills, err := f.GetRows(SkillsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Skill", "In Resume", "In Job Description", "Matched"},
		{"python", "Yes", "Yes", "Yes"},
		{"sql", "Yes", "No", "No"},
		{"docker", "No", "Yes", "No"},
	}, skills)

	lastEdge, err := f.GetCellValue(GraphSheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "docker", lastEdge)
	beyond, err := f.GetCellValue(GraphSheet, "A6")
	require.NoError(t, err)
	assert.Empty(t, beyond)

	node, err := f.GetCellValue(GraphSheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, models.ResumeNodeID, node)

	count, err := f.GetCellValue(FrequenciesSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestWriteExcelEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(models.AnalysisResult{}, &buf))

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SkillsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
