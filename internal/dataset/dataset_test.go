package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mikey/scam-call-detector/internal/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "calls.csv", "\ufeffTEXT,CATEGORY\n"+
		"\"Verify your bank account, now\",1\n"+
		"See you at dinner,0\n"+
		"   ,1\n"+
		"unlabeled row,maybe\n"+
		"Your parcel is waiting,scam\n")

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{Row: 2, Text: "Verify your bank account, now", IsScam: true}, records[0])
	assert.Equal(t, Record{Row: 3, Text: "See you at dinner", IsScam: false}, records[1])
	assert.Equal(t, 6, records[2].Row)
	assert.True(t, records[2].IsScam)
}

func TestLoad_CSVAlternateHeaders(t *testing.T) {
	path := writeFile(t, "calls.csv", "id,label,text\n7,false,hello there\n")

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "hello there", records[0].Text)
	assert.False(t, records[0].IsScam)
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Text", "Category"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"send the gift card codes", 1}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"running late", 0}))

	path := filepath.Join(t.TempDir(), "calls.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].IsScam)
	assert.Equal(t, "running late", records[1].Text)
	assert.False(t, records[1].IsScam)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "calls.json", "[]"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "calls.csv", "message,kind\nhi,0\n"))
	assert.ErrorIs(t, err, ErrMissingColumns)

	_, err = Load(writeFile(t, "calls.csv", "TEXT,CATEGORY\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		value  string
		isScam bool
		ok     bool
	}{
		{"1", true, true},
		{" Scam ", true, true},
		{"fraud", true, true},
		{"0", false, true},
		{"legit", false, true},
		{"Normal", false, true},
		{"", false, false},
		{"2", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			isScam, ok := ParseLabel(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.isScam, isScam)
		})
	}
}

type stubDetector struct {
	mu    sync.Mutex
	calls int
}

func (d *stubDetector) DetectText(_ context.Context, text, _ string) (*core.AnalysisResult, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if strings.Contains(text, "boom") {
		return nil, errors.New("backend unavailable")
	}
	isScam := strings.Contains(text, "bank")
	score := 0.1
	if isScam {
		score = 0.9
	}
	return &core.AnalysisResult{Transcript: text, IsScam: isScam, Score: score}, nil
}

func TestEvaluator_Evaluate(t *testing.T) {
	records := []Record{
		{Row: 2, Text: "verify your bank details", IsScam: true},
		{Row: 3, Text: "bank holiday plans", IsScam: false},
		{Row: 4, Text: "lunch tomorrow", IsScam: false},
		{Row: 5, Text: "buy gift cards now", IsScam: true},
		{Row: 6, Text: "boom", IsScam: true},
	}
	detector := &stubDetector{}

	report, predictions, err := NewEvaluator(detector, 3, zap.NewNop()).Evaluate(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 5, detector.calls)
	require.Len(t, predictions, 5)
	assert.Equal(t, records[0], predictions[0].Record)
	assert.Error(t, predictions[4].Err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 4, report.Evaluated)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, ConfusionMatrix{TruePositive: 1, FalsePositive: 1, TrueNegative: 1, FalseNegative: 1}, report.Matrix)
	assert.Equal(t, 0.5, report.Accuracy)
	assert.Equal(t, 0.5, report.Precision)
	assert.Equal(t, 0.5, report.Recall)
	assert.Equal(t, 0.5, report.F1)
}

func TestEvaluator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewEvaluator(&stubDetector{}, 0, zap.NewNop()).Evaluate(ctx, []Record{{Text: "bank"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScore(t *testing.T) {
	report := Score([]Prediction{
		{Record: Record{IsScam: true}, IsScam: true},
		{Record: Record{IsScam: true}, IsScam: true},
		{Record: Record{IsScam: false}, IsScam: true},
		{Record: Record{IsScam: false}, IsScam: false},
	})

	assert.Equal(t, 0.75, report.Accuracy)
	assert.Equal(t, 0.6667, report.Precision)
	assert.Equal(t, 1.0, report.Recall)
	assert.Equal(t, 0.8, report.F1)

	empty := Score(nil)
	assert.Zero(t, empty.Accuracy)
	assert.Zero(t, empty.F1)
}
