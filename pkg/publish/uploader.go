package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pyrelab/firespread/pkg/gis"
)

// UploaderConfig configures an Uploader.
type UploaderConfig struct {
	// Prefix is prepended to every object key, e.g. "runs/2026-08-24".
	Prefix string

	// RateLimit caps uploads per second. Zero means unlimited.
	RateLimit float64

	// WorkDir receives the exported GeoTIFFs before upload. Empty uses
	// the system temp dir. Exports are removed after upload.
	WorkDir string

	// Logger receives per-raster log entries. Default: zap.NewNop().
	Logger *zap.Logger
}

// Result reports what a publishing pass uploaded.
type Result struct {
	// Keys lists the uploaded object keys, in input order.
	Keys []string

	// Bytes is the total uploaded payload size.
	Bytes int64
}

// Uploader exports rasters as GeoTIFFs and uploads them to an object
// store. Uploads are strictly sequential; the limiter paces them.
type Uploader struct {
	store   ObjectStore
	limiter *rate.Limiter
	cfg     UploaderConfig
}

// NewUploader creates an Uploader over the given store.
func NewUploader(store ObjectStore, cfg UploaderConfig) *Uploader {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &Uploader{
		store:   store,
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
	}
}

// Publish exports and uploads the rasters in order, stopping on the
// first failure. Already uploaded objects are kept.
func (u *Uploader) Publish(ctx context.Context, session gis.Session, rasters []string) (*Result, error) {
	res := &Result{}
	for _, raster := range rasters {
		key, n, err := u.publishOne(ctx, session, raster)
		if err != nil {
			return res, fmt.Errorf("publish %s: %w", raster, err)
		}
		res.Keys = append(res.Keys, key)
		res.Bytes += n
		u.cfg.Logger.Debug("Published raster",
			zap.String("raster", raster),
			zap.String("key", key),
			zap.Int64("bytes", n))
	}
	return res, nil
}

func (u *Uploader) publishOne(ctx context.Context, session gis.Session, raster string) (string, int64, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return "", 0, err
	}

	dir, err := os.MkdirTemp(u.cfg.WorkDir, "firespread-publish-*")
	if err != nil {
		return "", 0, fmt.Errorf("create export dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	local := filepath.Join(dir, raster+".tif")
	if err := session.ExportGeoTIFF(ctx, raster, local); err != nil {
		return "", 0, err
	}

	f, err := os.Open(local)
	if err != nil {
		return "", 0, fmt.Errorf("open export: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", 0, fmt.Errorf("stat export: %w", err)
	}

	key := path.Join(u.cfg.Prefix, raster+".tif")
	if err := u.store.PutObject(ctx, key, f, info.Size()); err != nil {
		return "", 0, err
	}
	return key, info.Size(), nil
}
