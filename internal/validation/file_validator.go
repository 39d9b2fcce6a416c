package validation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "rentalfigs/internal/errors"
	"rentalfigs/internal/figures"
)

// FileValidator checks the input tables and output directory of a run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory validates that the data directory exists and
// reports how many CSV tables it holds
func (v *FileValidator) ValidateInputDirectory(dir string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("input directory %s", dir))
	}
	if err != nil {
		return 0, apperrors.NewStorageError(fmt.Sprintf("failed to stat directory %s", dir), err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return 0, apperrors.NewAppValidationError(fmt.Sprintf("%s is not a directory", dir))
	}

	count, err := v.CountFiles(dir, "*.csv")
	if err != nil {
		return 0, err
	}
	if count == 0 {
		// An empty directory still yields a run; every figure reports its own input
		v.logger.Warn("No CSV tables found",
			slog.String("directory", dir))
		return 0, nil
	}

	v.logger.Debug("Input directory validated",
		slog.String("directory", dir),
		slog.Int("tables_found", count))
	return count, nil
}

// ValidateOutputDirectory ensures the output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	file, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	name := file.Name()
	file.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, apperrors.NewNotFoundError(path)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()
	return info, nil
}

// ValidateCSVFile checks that path is a readable file with a .csv extension
func (v *FileValidator) ValidateCSVFile(path string) (os.FileInfo, error) {
	info, err := v.ValidateFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("file %s is not a CSV file (extension: %s)", path, ext))
	}
	return info, nil
}

// CountFiles counts files matching a pattern in a directory
func (v *FileValidator) CountFiles(dir string, pattern string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("invalid pattern %q", pattern), err)
	}

	fileCount := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err == nil && !info.IsDir() {
			fileCount++
		}
	}
	return fileCount, nil
}

// InputStatus describes one input table of a run
type InputStatus struct {
	Path     string
	Figures  []string
	Optional bool
	Present  bool
	Size     int64
	Err      error
}

// CheckInputs reports the state of every input table the definitions read,
// in first-use order. A table is optional only if every figure reading it
// treats it as optional.
func (v *FileValidator) CheckInputs(defs []figures.Definition) []InputStatus {
	index := make(map[string]int)
	var statuses []InputStatus
	for _, def := range defs {
		i, seen := index[def.InputPath]
		if !seen {
			i = len(statuses)
			index[def.InputPath] = i
			statuses = append(statuses, InputStatus{Path: def.InputPath, Optional: true})
		}
		statuses[i].Figures = append(statuses[i].Figures, def.ID)
		statuses[i].Optional = statuses[i].Optional && def.Optional
	}

	for i := range statuses {
		info, err := v.ValidateCSVFile(statuses[i].Path)
		if err != nil {
			statuses[i].Err = err
			continue
		}
		statuses[i].Present = true
		statuses[i].Size = info.Size()
	}
	return statuses
}

// Preflight validates the directories of a run and logs missing inputs.
// A missing data directory or table is not an error here; each figure
// reports its own, so optional figures are still skipped.
func (v *FileValidator) Preflight(ctx context.Context, dataDir, outDir string, defs []figures.Definition) error {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		v.logger.WarnContext(ctx, "Input directory does not exist",
			slog.String("directory", dataDir))
	} else if _, err := v.ValidateInputDirectory(dataDir); err != nil {
		return err
	}
	if err := v.ValidateOutputDirectory(outDir); err != nil {
		return err
	}

	for _, status := range v.CheckInputs(defs) {
		if status.Present {
			continue
		}
		level := slog.LevelError
		if status.Optional {
			level = slog.LevelWarn
		}
		v.logger.Log(ctx, level, "Input table unavailable",
			slog.String("file", status.Path),
			slog.Any("figures", status.Figures),
			slog.String("error", status.Err.Error()))
	}
	return nil
}
