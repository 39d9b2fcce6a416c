// Package publish uploads the artefacts of a figure run to S3-compatible
// object storage.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"rentalfigs/internal/config"
	apperrors "rentalfigs/internal/errors"
	"rentalfigs/internal/operations"
)

const uploadConcurrency = 4

// Upload is one file to publish
type Upload struct {
	Path        string
	Key         string
	ContentType string
}

// Result summarises a publish
type Result struct {
	Bucket  string
	RunID   string
	Objects []string
}

// Publisher uploads the PNGs, manifest and exported data of the output
// directory
type Publisher struct {
	store  ObjectStore
	cfg    config.PublishConfig
	paths  *config.Paths
	logger *slog.Logger
}

// NewPublisher creates a publisher writing to store
func NewPublisher(store ObjectStore, cfg config.PublishConfig, paths *config.Paths, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		store:  store,
		cfg:    cfg,
		paths:  paths,
		logger: logger.With(slog.String("component", "publish")),
	}
}

// Publish uploads every artefact of the last run. Objects are keyed
// <prefix>/<run id>/<path relative to the output directory>.
func (p *Publisher) Publish(ctx context.Context) (*Result, error) {
	if p.cfg.Bucket == "" {
		return nil, apperrors.NewConfigError("publish bucket is required", nil)
	}

	runID := "unversioned"
	if manifest, err := operations.LoadManifestFromFile(p.paths.ManifestFile); err == nil && manifest.RunID != "" {
		runID = manifest.RunID
	} else {
		p.logger.WarnContext(ctx, "no run manifest found, publishing without run id",
			slog.String("manifest", p.paths.ManifestFile))
	}

	uploads, err := p.Collect(runID)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("figures in %s", p.paths.OutDir))
	}

	if err := p.store.EnsureBucket(ctx, p.cfg.Bucket); err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		keys []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for _, u := range uploads {
		u := u
		g.Go(func() error {
			if err := p.store.PutFile(gctx, p.cfg.Bucket, u.Key, u.Path, u.ContentType); err != nil {
				return err
			}
			p.logger.DebugContext(gctx, "uploaded", slog.String("key", u.Key))
			mu.Lock()
			keys = append(keys, u.Key)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(keys)
	p.logger.InfoContext(ctx, "figures published",
		slog.String("bucket", p.cfg.Bucket),
		slog.String("run_id", runID),
		slog.Int("objects", len(keys)))
	return &Result{Bucket: p.cfg.Bucket, RunID: runID, Objects: keys}, nil
}

// Collect lists the files to publish in a stable order
func (p *Publisher) Collect(runID string) ([]Upload, error) {
	var uploads []Upload
	add := func(file string) {
		rel, err := filepath.Rel(p.paths.OutDir, file)
		if err != nil {
			return
		}
		uploads = append(uploads, Upload{
			Path:        file,
			Key:         ObjectKey(p.cfg.Prefix, runID, rel),
			ContentType: contentTypeFor(file),
		})
	}

	pngs, err := filepath.Glob(filepath.Join(p.paths.OutDir, "*.png"))
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list figures", err)
	}
	sort.Strings(pngs)
	for _, f := range pngs {
		if !strings.HasPrefix(filepath.Base(f), ".") {
			add(f)
		}
	}

	for _, f := range []string{p.paths.ManifestFile, p.paths.WorkbookFile} {
		if config.FileExists(f) {
			add(f)
		}
	}

	csvs, err := filepath.Glob(filepath.Join(p.paths.DataExportDir, "*.csv"))
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list figure data", err)
	}
	sort.Strings(csvs)
	for _, f := range csvs {
		add(f)
	}

	return uploads, nil
}

// ObjectKey joins prefix, run ID and a relative file path with forward
// slashes
func ObjectKey(prefix, runID, rel string) string {
	parts := []string{}
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	if runID != "" {
		parts = append(parts, runID)
	}
	parts = append(parts, filepath.ToSlash(rel))
	return path.Join(parts...)
}

func contentTypeFor(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png":
		return "image/png"
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
