package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"flight_dashboard/internal/domain"
)

// Summaries keeps the latest processed summary on disk.
type Summaries struct{ path string }

func NewSummaries(path string) *Summaries { return &Summaries{path: path} }

func (s *Summaries) Path() string { return s.path }

func (s *Summaries) WriteSummary(_ context.Context, sum domain.Summary) error {
	sum.Normalize()
	if err := writeJSON(s.path, sum); err != nil {
		return fmt.Errorf("write summary %s: %w", s.path, err)
	}
	return nil
}

func (s *Summaries) ReadSummary(_ context.Context) (domain.Summary, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Summary{}, fmt.Errorf("%s: %w", s.path, domain.ErrSummaryMissing)
	}
	if err != nil {
		return domain.Summary{}, err
	}
	var sum domain.Summary
	if err := json.Unmarshal(b, &sum); err != nil {
		return domain.Summary{}, fmt.Errorf("decode summary %s: %w", s.path, err)
	}
	sum.Normalize()
	return sum, nil
}
