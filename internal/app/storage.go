package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/selection"
)

var ErrNoSelectionsFile = errors.New("no selections file")

// SelectionFile stores a selection list as a JSON array on disk
type SelectionFile struct {
	Path   string
	logger *zap.Logger
}

// NewSelectionFile returns a store for path
func NewSelectionFile(path string, logger *zap.Logger) *SelectionFile {
	if path == "" {
		path = DefaultSelectionsFile
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionFile{Path: path, logger: logger}
}

// Load reads and validates the selections
func (f *SelectionFile) Load() ([]selection.Selection, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSelectionsFile, f.Path)
		}
		return nil, err
	}

	var selections []selection.Selection
	if err := json.Unmarshal(data, &selections); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}

	for i, sel := range selections {
		if err := selection.Validate(sel); err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", f.Path, i, err)
		}
	}

	return selections, nil
}

// LoadOrEmpty is Load, treating a missing file as no selections
func (f *SelectionFile) LoadOrEmpty() ([]selection.Selection, error) {
	selections, err := f.Load()
	if errors.Is(err, ErrNoSelectionsFile) {
		return []selection.Selection{}, nil
	}
	return selections, err
}

// Save writes the selections through a temp file, keeping the previous
// version next to it as a backup
func (f *SelectionFile) Save(selections []selection.Selection) error {
	if selections == nil {
		selections = []selection.Selection{}
	}
	data, err := json.MarshalIndent(selections, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write to temp file first
	tmpFile := f.Path + TmpSuffix
	if err := os.WriteFile(tmpFile, data, FilePermissions); err != nil {
		return err
	}

	// Keep the previous version
	if _, err := os.Stat(f.Path); err == nil {
		if err := os.Rename(f.Path, f.Path+BackupSuffix); err != nil {
			f.logger.Warn("failed to create backup", zap.String("path", f.Path), zap.Error(err))
		}
	}

	if err := os.Rename(tmpFile, f.Path); err != nil {
		return fmt.Errorf("failed to save selections: %w", err)
	}

	f.logger.Debug("selections saved", zap.String("path", f.Path), zap.Int("count", len(selections)))
	return nil
}

// Restore replaces the selections with the backup written by the last Save
func (f *SelectionFile) Restore() error {
	backup := f.Path + BackupSuffix
	if _, err := os.Stat(backup); os.IsNotExist(err) {
		return fmt.Errorf("no backup to restore: %s", backup)
	}
	if err := os.Rename(backup, f.Path); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	f.logger.Info("selections restored from backup", zap.String("path", f.Path))
	return nil
}
