// Package report persists run reports as YAML files.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/srcbuild/internal/domain/report"
	"gopkg.in/yaml.v3"
)

// YAMLRepository implements report.Repository using YAML files.
type YAMLRepository struct{}

// NewYAMLRepository creates a new YAML-based report repository.
func NewYAMLRepository() *YAMLRepository {
	return &YAMLRepository{}
}

// Load reads a report from path.
func (r *YAMLRepository) Load(_ context.Context, path string) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, report.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}

	var rep report.Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("%w: %w", report.ErrReportCorrupt, err)
	}
	if err := rep.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", report.ErrReportCorrupt, err)
	}

	return &rep, nil
}

// Save writes rep to path, replacing any previous report.
func (r *YAMLRepository) Save(_ context.Context, path string, rep *report.Report) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("%w: %w", report.ErrSaveFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %w", report.ErrSaveFailed, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", report.ErrSaveFailed, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", report.ErrSaveFailed, err)
	}

	return nil
}

// Exists returns true if a report exists at path.
func (r *YAMLRepository) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var _ report.Repository = (*YAMLRepository)(nil)
