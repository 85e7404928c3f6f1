// Package firstrun tracks whether the app was launched before on this
// install. The marker lives in the app-data directory, which is wiped on
// uninstall, while the secure store may survive a reinstall.
package firstrun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/pudo/internal/filex"
)

// MarkerName is the file name of the marker inside the data directory.
const MarkerName = "first_time_opening_flag"

type Marker interface {
	// Seen reports whether the marker was set by an earlier launch.
	Seen(ctx context.Context) (bool, error)
	// Set records the current launch.
	Set(ctx context.Context) error
}

type FileMarker struct {
	path string
}

// NewFileMarker returns a marker stored in dataDir, creating the directory.
func NewFileMarker(dataDir string) (*FileMarker, error) {
	dir, err := filex.EnsureDir(dataDir)
	if err != nil {
		return nil, err
	}
	return &FileMarker{path: filepath.Join(dir, MarkerName)}, nil
}

func (m *FileMarker) Seen(_ context.Context) (bool, error) {
	return filex.Exists(m.path)
}

func (m *FileMarker) Set(_ context.Context) error {
	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := os.WriteFile(m.path, []byte(stamp), 0o600); err != nil {
		return fmt.Errorf("write first-run marker: %w", err)
	}
	return nil
}
