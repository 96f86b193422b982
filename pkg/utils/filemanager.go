// =============================================================================
// IBGE to MagPie Downscaler - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the pipelines:
//   - Directory management
//   - Archival of processed fact tables
//
// ARCHIVAL STRATEGY:
//   - Fact tables are moved to the archive directory after successful
//     processing so reruns do not reprocess stale inputs
//   - Failed inputs remain in place
//   - Name collisions in the archive are resolved with a uuid suffix
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileManager handles file operations for the pipelines.
type FileManager struct {
	// InputDir is the directory where fact tables are placed.
	InputDir string

	// OutputDir is the directory where output files are placed.
	OutputDir string

	// ArchiveDir is the directory for archived fact tables.
	ArchiveDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, archiveDir string) *FileManager {
	return &FileManager{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
	}
}

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.InputDir, fm.OutputDir, fm.ArchiveDir}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ArchiveInput moves a processed fact table into the archive directory and
// returns the archived path. If a file of the same name already exists in
// the archive, a uuid suffix keeps the move collision-free.
func (fm *FileManager) ArchiveInput(path string) (string, error) {
	base := filepath.Base(path)
	target := filepath.Join(fm.ArchiveDir, base)

	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		target = filepath.Join(fm.ArchiveDir, fmt.Sprintf("%s_%s%s", stem, uuid.NewString(), ext))
	}

	if err := moveFile(path, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}

	return target, nil
}

// moveFile renames a file, falling back to copy-and-remove when source and
// target live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}
