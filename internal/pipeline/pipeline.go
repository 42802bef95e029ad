// Package pipeline wires the archive client, station selection, and UP.DAT
// export into one orchestrator: load catalog → select target station → fetch
// profiles → export. Each stage runs to completion or fails; there are no
// retries and no partial recovery.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/airshedlabs/upperair/internal/domain"
	"github.com/airshedlabs/upperair/internal/observability"
	"github.com/airshedlabs/upperair/internal/updat"
)

// StationLister retrieves the archive's station listing.
type StationLister interface {
	ListStations(ctx context.Context) ([]domain.StationRecord, error)
}

// ProfileFetcher retrieves time-ordered sounding profiles for one station.
type ProfileFetcher interface {
	FetchProfiles(ctx context.Context, station domain.StationRecord, win domain.Window) ([]domain.SoundingProfile, error)
}

// Pipeline orchestrates catalog loading, selection, and export. The catalog
// and target station are guarded by a mutex because the HTTP query surface
// can read them while a CLI-driven reload is in flight; the stages themselves
// stay strictly sequential.
type Pipeline struct {
	lister  StationLister
	fetcher ProfileFetcher
	writer  updat.Writer
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	catalog *domain.Catalog
	target  *domain.StationRecord
}

// New creates a Pipeline with the given stages and observability.
func New(lister StationLister, fetcher ProfileFetcher, writer updat.Writer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		lister:  lister,
		fetcher: fetcher,
		writer:  writer,
		logger:  logger,
		metrics: metrics,
	}
}

// LoadCatalog fetches the station listing and replaces the in-memory catalog
// wholesale. The previous catalog, if any, is discarded.
func (p *Pipeline) LoadCatalog(ctx context.Context) error {
	start := time.Now()
	stations, err := p.lister.ListStations(ctx)
	if err != nil {
		p.metrics.ListFetchErrors.Inc()
		return fmt.Errorf("load station catalog: %w", err)
	}
	p.metrics.ListFetchDuration.Observe(time.Since(start).Seconds())
	p.metrics.StationsListed.Set(float64(len(stations)))

	catalog := domain.NewCatalog(stations)
	p.mu.Lock()
	p.catalog = catalog
	p.mu.Unlock()

	p.logger.Info("station catalog loaded",
		"stations", catalog.Len(),
		"elapsed", time.Since(start),
	)
	return nil
}

// Catalog returns the current catalog, or nil before the first load.
func (p *Pipeline) Catalog() *domain.Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.catalog
}

// Query runs a selection against the current catalog. A single match becomes
// the pipeline's target station, overwriting any previous target.
func (p *Pipeline) Query(q domain.Query) (domain.Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	outcome, err := domain.Select(p.catalog, q)
	if err != nil {
		p.metrics.SelectionQueries.WithLabelValues(q.Mode(), "error").Inc()
		return domain.Outcome{}, err
	}
	p.metrics.SelectionQueries.WithLabelValues(q.Mode(), outcome.Kind.String()).Inc()

	if outcome.Kind == domain.Selected {
		p.target = outcome.Target
		p.logger.Info("target station selected",
			"wban", outcome.Target.WBAN,
			"wmo", outcome.Target.WMO,
			"name", outcome.Target.Name,
		)
	}
	return outcome, nil
}

// Target returns a copy of the current target station, or nil if no
// single-match selection has happened yet.
func (p *Pipeline) Target() *domain.StationRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.target == nil {
		return nil
	}
	t := *p.target
	return &t
}

// Export fetches the target station's soundings for the window and writes the
// UP.DAT file, returning the path actually written. A coverage failure leaves
// no file behind.
func (p *Pipeline) Export(ctx context.Context, win domain.Window, path string) (string, error) {
	target := p.Target()
	if target == nil {
		return "", fmt.Errorf("%w: no target station selected", domain.ErrInvalidArgument)
	}

	fetchStart := time.Now()
	profiles, err := p.fetcher.FetchProfiles(ctx, *target, win)
	if err != nil {
		p.metrics.ProfileFetchErrors.Inc()
		return "", fmt.Errorf("fetch soundings: %w", err)
	}
	p.metrics.ProfileFetchDuration.Observe(time.Since(fetchStart).Seconds())
	p.metrics.ProfilesFetched.Add(float64(len(profiles)))

	writer := p.writer
	if writer.SiteID == "" {
		writer.SiteID = target.WBAN
	}

	exportStart := time.Now()
	written, err := writer.WriteFile(path, profiles, win)
	if err != nil {
		p.metrics.Exports.WithLabelValues("error").Inc()
		return "", err
	}
	p.metrics.Exports.WithLabelValues("success").Inc()
	p.metrics.ExportDuration.Observe(time.Since(exportStart).Seconds())
	p.metrics.ExportedLevels.Add(float64(countExportedLevels(profiles, win)))

	p.logger.Info("UP.DAT written",
		"path", written,
		"soundings", len(updat.TrimWindow(profiles, win)),
		"station", target.WBAN+"-"+target.WMO,
	)
	return written, nil
}

// CheckReadiness reports whether the service has a catalog to query.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.catalog.Loaded() {
		return errors.New("station catalog not loaded yet")
	}
	return nil
}

// countExportedLevels mirrors the writer's level filtering so the counter
// matches what actually lands in the file.
func countExportedLevels(profiles []domain.SoundingProfile, win domain.Window) int {
	n := 0
	for _, p := range updat.TrimWindow(profiles, win) {
		for _, lv := range p.Levels {
			if lv.HeightM >= 0 {
				n++
			}
		}
	}
	return n
}
