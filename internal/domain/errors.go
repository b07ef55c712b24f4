package domain

import "errors"

var (
	ErrSnapshotMissing = errors.New("raw snapshot missing; run fetch first")
	ErrSummaryMissing  = errors.New("summary missing")
	ErrQueryMissing    = errors.New("query params file missing")
	ErrMissingAPIKey   = errors.New("provider API key is not set")
	ErrArchiveDisabled = errors.New("run archive is not configured")
)
