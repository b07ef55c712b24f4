package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"flight_dashboard/internal/domain"
)

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// Repo archives processed runs. The DSN must set parseTime=true.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) SaveRun(ctx context.Context, run domain.Run) error {
	run.Summary.Normalize()
	sum, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = r.db.ExecContext(ctx, upsertRunSQL,
		run.ID,
		run.FetchedAt,
		run.ProcessedAt.UTC(),
		valF64(run.MinPrice),
		run.TotalFlights,
		string(sum),
	)
	return err
}

func (r *Repo) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	rows, err := r.db.QueryContext(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Run{}
	for rows.Next() {
		var (
			run      domain.Run
			minPrice sql.NullFloat64
			sumJSON  []byte
		)
		if err := rows.Scan(&run.ID, &run.FetchedAt, &run.ProcessedAt, &minPrice, &run.TotalFlights, &sumJSON); err != nil {
			return nil, err
		}
		if minPrice.Valid {
			p := minPrice.Float64
			run.MinPrice = &p
		}
		if err := json.Unmarshal(sumJSON, &run.Summary); err != nil {
			return nil, fmt.Errorf("decode summary of run %s: %w", run.ID, err)
		}
		run.Summary.Normalize()
		run.ProcessedAt = run.ProcessedAt.UTC()
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
