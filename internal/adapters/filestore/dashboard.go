package filestore

import (
	"context"
	"fmt"
)

// DashboardFile is where the rendered HTML page lands.
type DashboardFile struct{ path string }

func NewDashboardFile(path string) *DashboardFile { return &DashboardFile{path: path} }

func (d *DashboardFile) Path() string { return d.path }

func (d *DashboardFile) WriteDashboard(_ context.Context, html []byte) error {
	if err := writeFileAtomic(d.path, html); err != nil {
		return fmt.Errorf("write dashboard %s: %w", d.path, err)
	}
	return nil
}
