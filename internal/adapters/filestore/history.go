package filestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"flight_dashboard/internal/domain"
)

// DateColumns lists the accepted timestamp headers, preferred first.
var DateColumns = []string{"date_ist", "date_utc", "date"}

const priceColumn = "min_price"

// History is the append-only price log. It assumes a single writer.
type History struct {
	path       string
	dateColumn string
}

// NewHistory uses dateColumn as the header for new files; empty means date_ist.
func NewHistory(path, dateColumn string) *History {
	if dateColumn == "" {
		dateColumn = DateColumns[0]
	}
	return &History{path: path, dateColumn: dateColumn}
}

func (h *History) Path() string { return h.path }

// Append writes one row, preceded by the header when the file is new or empty.
func (h *History) Append(_ context.Context, rec domain.HistoryRecord) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history %s: %w", h.path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write([]string{h.dateColumn, priceColumn}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write([]string{rec.Timestamp, strconv.FormatFloat(rec.MinPrice, 'f', -1, 64)}); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List reads every usable row in file order. A missing file is an empty log;
// rows without a date or with an unparseable price are skipped.
func (h *History) List(_ context.Context) ([]domain.HistoryRecord, error) {
	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.HistoryRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return []domain.HistoryRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history header: %w", err)
	}
	idx := map[string]int{}
	for i, col := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	dateIdx := make([]int, 0, len(DateColumns))
	for _, c := range DateColumns {
		if i, ok := idx[c]; ok {
			dateIdx = append(dateIdx, i)
		}
	}
	priceIdx, ok := idx[priceColumn]
	if !ok || len(dateIdx) == 0 {
		return []domain.HistoryRecord{}, nil
	}

	out := []domain.HistoryRecord{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("history read error: %w", err)
		}
		date := firstNonEmpty(row, dateIdx)
		if date == "" || priceIdx >= len(row) {
			continue
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(row[priceIdx]), 64)
		if err != nil {
			continue
		}
		out = append(out, domain.HistoryRecord{Timestamp: date, MinPrice: p})
	}
	return out, nil
}

func firstNonEmpty(row []string, idx []int) string {
	for _, i := range idx {
		if i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				return v
			}
		}
	}
	return ""
}
