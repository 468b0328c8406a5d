// Package export owns the spreadsheet side of persistence: the append-only
// daily workbook store and on-demand XLSX exports. It is the component
// responsible for keeping the destination header set in step with the record
// schema; it derives both headers and rows from the record's canonical field
// list and never reorders columns.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/openelig/eligibility-tracker/internal/entity"
)

const (
	sheetName      = "Extraction Data"
	filePrefix     = "extracted_data_"
	fileDateFormat = "2006-01-02"
)

// WorkbookStore appends records to daily xlsx files
// (extracted_data_YYYY-MM-DD.xlsx) under dir. It is the local-filesystem
// persistence strategy; the Postgres store covers hosted deployments.
type WorkbookStore struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex // excelize files are not safe for concurrent writes
}

func NewWorkbookStore(dir string, logger *slog.Logger) (*WorkbookStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &WorkbookStore{dir: dir, logger: logger}, nil
}

// Append writes one record row to today's workbook, creating it with a
// header row on first use.
func (s *WorkbookStore) Append(ctx context.Context, rec *entity.ExtractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.dailyPath(time.Now())
	f, created, err := openOrCreate(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if created {
		if err := writeHeader(f); err != nil {
			return err
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}
	rowIdx := len(rows) + 1

	for col, v := range rec.Values() {
		cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx)
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	s.logger.Info("workbook.append.ok", "path", path, "row", rowIdx, "member_id", rec.MemberID)
	return nil
}

// List reads records back from the daily workbooks whose date falls in the
// window. Nil bounds are open-ended.
func (s *WorkbookStore) List(ctx context.Context, from, to *time.Time) ([]*entity.ExtractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := s.dailyFiles(from, to)
	if err != nil {
		return nil, err
	}

	var out []*entity.ExtractionRecord
	for _, path := range paths {
		recs, err := readWorkbook(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (s *WorkbookStore) dailyPath(day time.Time) string {
	return filepath.Join(s.dir, filePrefix+day.Format(fileDateFormat)+".xlsx")
}

func (s *WorkbookStore) dailyFiles(from, to *time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".xlsx") {
			continue
		}
		dateStr := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".xlsx")
		day, err := time.Parse(fileDateFormat, dateStr)
		if err != nil {
			continue
		}
		if from != nil && day.Before(truncateDay(*from)) {
			continue
		}
		if to != nil && day.After(truncateDay(*to)) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func openOrCreate(path string) (f *excelize.File, created bool, err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("open workbook: %w", err)
		}
		return f, false, nil
	}
	f = excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, false, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, false, err
	}
	return f, true, nil
}

func writeHeader(f *excelize.File) error {
	for i, h := range entity.FieldNames() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header %s: %w", h, err)
		}
	}
	return nil
}

func readWorkbook(path string) ([]*entity.ExtractionRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	width := len(entity.FieldNames())
	var out []*entity.ExtractionRecord
	for _, row := range rows[1:] {
		// pad short rows: trailing empty cells are dropped by the reader
		for len(row) < width {
			row = append(row, "")
		}
		out = append(out, recordFromRow(row))
	}
	return out, nil
}

func recordFromRow(row []string) *entity.ExtractionRecord {
	return &entity.ExtractionRecord{
		Timestamp:           row[0],
		Sentiment:           row[1],
		MemberID:            row[2],
		FirstName:           row[3],
		LastName:            row[4],
		DOB:                 row[5],
		Address:             row[6],
		City:                row[7],
		State:               row[8],
		ZipCode:             row[9],
		AddressStatus:       row[10],
		MemberStatus:        row[11],
		StartDate:           row[12],
		EndDate:             row[13],
		HealthPlan:          row[14],
		ContractType:        row[15],
		Codes:               row[16],
		ChangeRequest:       row[17],
		RawText:             row[18],
		UserIdentifier:      row[19],
		ExtractedBy:         row[20],
		ExtractionTimestamp: row[21],
	}
}
