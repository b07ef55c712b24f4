package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"flight_dashboard/internal/domain"
	"flight_dashboard/internal/rawdoc"
)

// Snapshots keeps the single raw provider snapshot on disk.
type Snapshots struct{ path string }

func NewSnapshots(path string) *Snapshots { return &Snapshots{path: path} }

func (s *Snapshots) Path() string { return s.path }

func (s *Snapshots) WriteSnapshot(_ context.Context, snap domain.RawSnapshot) error {
	if len(snap.Response) == 0 {
		snap.Response = []byte("null")
	}
	if err := writeJSON(s.path, snap); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.path, err)
	}
	return nil
}

func (s *Snapshots) ReadSnapshot(_ context.Context) (rawdoc.Value, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return rawdoc.Value{}, fmt.Errorf("%s: %w", s.path, domain.ErrSnapshotMissing)
	}
	if err != nil {
		return rawdoc.Value{}, err
	}
	defer f.Close()

	v, err := rawdoc.Decode(f)
	if err != nil {
		return rawdoc.Value{}, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return v, nil
}
