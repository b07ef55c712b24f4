package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"flight_dashboard/internal/domain"
)

// QueryFile loads search parameters from a JSON or YAML document.
type QueryFile struct{ path string }

func NewQueryFile(path string) *QueryFile { return &QueryFile{path: path} }

func (q *QueryFile) Path() string { return q.path }

// LoadQuery returns ErrQueryMissing when the file does not exist. The top
// level must be a mapping; an empty file is an empty query.
func (q *QueryFile) LoadQuery(_ context.Context) (map[string]any, error) {
	b, err := os.ReadFile(q.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", q.path, domain.ErrQueryMissing)
	}
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if len(bytes.TrimSpace(b)) == 0 {
		return out, nil
	}

	switch strings.ToLower(filepath.Ext(q.path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &out); err != nil {
			return nil, fmt.Errorf("parse query %s: %w", q.path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("parse query %s: %w", q.path, err)
		}
	}
	if out == nil {
		// "null" document
		out = map[string]any{}
	}
	return out, nil
}
