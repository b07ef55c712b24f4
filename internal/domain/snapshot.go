package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type SnapshotMeta struct {
	FetchedAt string            `json:"fetched_at"`
	RunID     string            `json:"run_id,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
}

// RawSnapshot is the file written by the fetch stage: provider payload plus
// fetch metadata. Response is kept verbatim.
type RawSnapshot struct {
	Meta     SnapshotMeta    `json:"meta"`
	Response json.RawMessage `json:"response"`
}

// FetchedAtUTC formats t the way snapshot metadata records it.
func FetchedAtUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000") + "Z"
}

// ExtractionDefect explains why one raw offer was left out of a summary.
type ExtractionDefect struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (d ExtractionDefect) Error() string {
	return fmt.Sprintf("offer %d: %s", d.Index, d.Reason)
}
