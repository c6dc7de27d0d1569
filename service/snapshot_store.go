package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/refscan/domain"
)

// SnapshotStoreImpl persists snapshots as indented JSON files
type SnapshotStoreImpl struct{}

// NewSnapshotStore creates a new snapshot store
func NewSnapshotStore() *SnapshotStoreImpl {
	return &SnapshotStoreImpl{}
}

// Save writes the snapshot to path, creating parent directories as needed.
// The write goes through a temp file and rename so a crash cannot leave a
// truncated snapshot behind.
func (s *SnapshotStoreImpl) Save(path string, snapshot *domain.MetricSnapshot) error {
	if snapshot == nil {
		return domain.NewValidationError("cannot save a nil snapshot")
	}
	if snapshot.SchemaVersion != domain.SnapshotSchemaVersion {
		return domain.NewValidationError(fmt.Sprintf(
			"snapshot schema version %d does not match current version %d",
			snapshot.SchemaVersion, domain.SnapshotSchemaVersion))
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return domain.NewOutputError("failed to marshal snapshot", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".refscan-snapshot-*")
	if err != nil {
		return domain.NewOutputError("failed to create temp snapshot file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.NewOutputError("failed to write snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domain.NewOutputError("failed to close snapshot file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return domain.NewOutputError(fmt.Sprintf("failed to move snapshot to %s", path), err)
	}
	return nil
}

// Load reads a snapshot from path and rejects schema version mismatches
func (s *SnapshotStoreImpl) Load(path string) (*domain.MetricSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewFileNotFoundError(path)
		}
		return nil, domain.NewAnalysisError(fmt.Sprintf("failed to read snapshot %s", path), err)
	}

	var snapshot domain.MetricSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, domain.NewAnalysisError(fmt.Sprintf("snapshot %s is not valid JSON", path), err)
	}

	if snapshot.SchemaVersion != domain.SnapshotSchemaVersion {
		return nil, domain.NewValidationError(fmt.Sprintf(
			"snapshot %s has schema version %d, this build reads version %d",
			path, snapshot.SchemaVersion, domain.SnapshotSchemaVersion))
	}
	return &snapshot, nil
}
