// Package export writes batch scoring reports as Excel workbooks.
package export

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/resume-tailor/internal/pipeline"
)

// Sheet names.
const (
	SummarySheet = "Summary"
	RankedSheet  = "Ranked Resumes"
)

var rankedHeaders = []string{
	"Rank", "Resume", "Total", "Keywords", "Formatting", "Content",
	"Structure", "Length", "Industry", "Matched", "Missing", "Error",
}

// Report is a batch of scored resumes against one job.
type Report struct {
	JobTitle  string
	Generated time.Time
	Results   []pipeline.BatchResult
}

// ranked orders successful results by total score, best first; failed
// items go last in input order.
func (r *Report) ranked() []pipeline.BatchResult {
	out := slices.Clone(r.Results)
	slices.SortStableFunc(out, func(a, b pipeline.BatchResult) int {
		switch {
		case a.Result == nil && b.Result == nil:
			return 0
		case a.Result == nil:
			return 1
		case b.Result == nil:
			return -1
		}
		return cmp.Compare(b.Result.Score.Total, a.Result.Score.Total)
	})
	return out
}

// Write renders the workbook to w.
func (r *Report) Write(w io.Writer) error {
	f, err := r.build()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save writes the workbook to path, adding an .xlsx extension if needed.
func (r *Report) Save(path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	if err := r.Write(out); err != nil {
		_ = out.Close()
		return "", err
	}
	return path, out.Close()
}

func (r *Report) build() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(RankedSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	styles, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := r.writeSummary(f, styles); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := r.writeRanked(f, styles); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create ranked sheet: %w", err)
	}
	return f, nil
}

type styles struct {
	header int
	label  int
	score  int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return s, err
	}
	s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, err
	}
	decimals := "0.0"
	s.score, err = f.NewStyle(&excelize.Style{CustomNumFmt: &decimals})
	return s, err
}

func (r *Report) writeSummary(f *excelize.File, st styles) error {
	var scored, failed int
	var sum float64
	best := ""
	bestScore := -1.0
	for _, res := range r.Results {
		if res.Result == nil {
			failed++
			continue
		}
		scored++
		sum += res.Result.Score.Total
		if res.Result.Score.Total > bestScore {
			best, bestScore = res.Name, res.Result.Score.Total
		}
	}
	avg := 0.0
	if scored > 0 {
		avg = sum / float64(scored)
	}

	rows := [][]any{
		{"ATS Batch Report"},
		{},
		{"Job:", r.JobTitle},
		{"Generated:", r.Generated.Format("2006-01-02 15:04:05")},
		{"Resumes scored:", scored},
		{"Resumes failed:", failed},
		{"Average score:", avg},
		{"Best resume:", best},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
		if i >= 2 {
			if err := f.SetCellStyle(SummarySheet, cell, cell, st.label); err != nil {
				return err
			}
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", st.header); err != nil {
		return err
	}
	if err := f.MergeCell(SummarySheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "B7", "B7", st.score); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 20); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "B", "B", 50)
}

func (r *Report) writeRanked(f *excelize.File, st styles) error {
	if err := f.SetSheetRow(RankedSheet, "A1", &rankedHeaders); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(rankedHeaders), 1)
	if err := f.SetCellStyle(RankedSheet, "A1", last, st.header); err != nil {
		return err
	}

	rank := 0
	for i, res := range r.ranked() {
		var row []any
		if res.Result != nil {
			rank++
			s := res.Result.Score
			row = []any{
				rank, res.Name, s.Total, s.KeywordScore, s.FormattingScore, s.ContentScore,
				s.StructureScore, s.LengthScore, s.Industry,
				strings.Join(res.Result.MatchedKeywords, ", "),
				strings.Join(res.Result.MissingKeywords, ", "),
				"",
			}
		} else {
			row = []any{"", res.Name, "", "", "", "", "", "", "", "", "", errorText(res.Err)}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(RankedSheet, cell, &row); err != nil {
			return err
		}
		from, _ := excelize.CoordinatesToCellName(3, i+2)
		to, _ := excelize.CoordinatesToCellName(8, i+2)
		if err := f.SetCellStyle(RankedSheet, from, to, st.score); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(RankedSheet, "B", "B", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(RankedSheet, "J", "L", 45); err != nil {
		return err
	}
	return f.SetPanes(RankedSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
