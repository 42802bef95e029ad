package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airshedlabs/upperair/internal/domain"
	"github.com/airshedlabs/upperair/internal/observability"
	"github.com/airshedlabs/upperair/internal/updat"
)

type mockLister struct {
	stations []domain.StationRecord
	err      error
}

func (m *mockLister) ListStations(_ context.Context) ([]domain.StationRecord, error) {
	return m.stations, m.err
}

type mockFetcher struct {
	profiles   []domain.SoundingProfile
	err        error
	gotStation domain.StationRecord
	gotWindow  domain.Window
}

func (m *mockFetcher) FetchProfiles(_ context.Context, station domain.StationRecord, win domain.Window) ([]domain.SoundingProfile, error) {
	m.gotStation = station
	m.gotWindow = win
	return m.profiles, m.err
}

var (
	oakland = domain.StationRecord{
		Init: "OAK", WBAN: "23230", WMO: "72493",
		Lat: 37.73, Lon: -122.21, ElevationM: 3,
		Name: "OAKLAND INT (CA/US)", Region: "CA", Country: "US",
	}
	salem = domain.StationRecord{
		Init: "SLE", WBAN: "24232", WMO: "72694",
		Lat: 44.92, Lon: -123.02, ElevationM: 61,
		Name: "SALEM (OR/US)", Region: "OR", Country: "US",
	}
)

func testPipeline(lister *mockLister, fetcher *mockFetcher) *Pipeline {
	if lister == nil {
		lister = &mockLister{stations: []domain.StationRecord{oakland, salem}}
	}
	if fetcher == nil {
		fetcher = &mockFetcher{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	writer := updat.Writer{TopPressureHPa: 500}
	return New(lister, fetcher, writer, logger, observability.NewMetricsForTesting())
}

func launch(day, hour int) domain.LaunchTime {
	return domain.LaunchTime{Year: 2009, Month: 1, Day: day, Hour: hour}
}

func testProfiles() []domain.SoundingProfile {
	var profiles []domain.SoundingProfile
	for day := 1; day <= 2; day++ {
		temp := 10.0
		profiles = append(profiles, domain.SoundingProfile{
			LaunchTime:    launch(day, 0),
			DeclaredLines: 5,
			Levels: []domain.Level{
				{PressureHPa: 1013.2, HeightM: 3, TempC: &temp},
				{PressureHPa: 850.0, HeightM: 1457},
			},
		})
	}
	return profiles
}

func TestLoadCatalog(t *testing.T) {
	p := testPipeline(nil, nil)

	require.NoError(t, p.LoadCatalog(context.Background()))

	catalog := p.Catalog()
	require.NotNil(t, catalog)
	assert.Equal(t, 2, catalog.Len())
}

func TestLoadCatalog_ArchiveDown(t *testing.T) {
	lister := &mockLister{err: domain.ErrServiceUnavailable}
	p := testPipeline(lister, nil)

	err := p.LoadCatalog(context.Background())

	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Nil(t, p.Catalog())
}

func TestQuerySetsTargetOnSingleMatch(t *testing.T) {
	p := testPipeline(nil, nil)
	require.NoError(t, p.LoadCatalog(context.Background()))

	outcome, err := p.Query(domain.ByCombinedID("23230-72493"))

	require.NoError(t, err)
	assert.Equal(t, domain.Selected, outcome.Kind)
	require.NotNil(t, p.Target())
	assert.Equal(t, oakland, *p.Target())
}

func TestQueryLeavesTargetOnMultipleMatches(t *testing.T) {
	p := testPipeline(nil, nil)
	require.NoError(t, p.LoadCatalog(context.Background()))

	_, err := p.Query(domain.ByCombinedID("23230-72493"))
	require.NoError(t, err)

	outcome, err := p.Query(domain.ByRegionCountry("", "US"))
	require.NoError(t, err)
	assert.Equal(t, domain.Candidates, outcome.Kind)

	require.NotNil(t, p.Target(), "candidate outcome must not clear the target")
	assert.Equal(t, oakland, *p.Target())
}

func TestQueryBeforeCatalogLoad(t *testing.T) {
	p := testPipeline(nil, nil)

	_, err := p.Query(domain.ByName("oakland"))

	assert.ErrorIs(t, err, domain.ErrNoCatalog)
}

func TestExport(t *testing.T) {
	fetcher := &mockFetcher{profiles: testProfiles()}
	p := testPipeline(nil, fetcher)
	require.NoError(t, p.LoadCatalog(context.Background()))
	_, err := p.Query(domain.ByCombinedID("23230-72493"))
	require.NoError(t, err)

	win := domain.Window{Start: launch(1, 0), End: launch(2, 0)}
	path := filepath.Join(t.TempDir(), "UP.DAT")

	written, err := p.Export(context.Background(), win, path)

	require.NoError(t, err)
	assert.Equal(t, path, written)
	assert.Equal(t, oakland, fetcher.gotStation)
	assert.Equal(t, win, fetcher.gotWindow)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	// SiteID falls back to the target's WBAN when not configured.
	assert.Contains(t, string(data), "      23230")
}

func TestExportWithoutTarget(t *testing.T) {
	p := testPipeline(nil, nil)
	require.NoError(t, p.LoadCatalog(context.Background()))

	win := domain.Window{Start: launch(1, 0), End: launch(2, 0)}
	_, err := p.Export(context.Background(), win, filepath.Join(t.TempDir(), "UP.DAT"))

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestExportFetchFailure(t *testing.T) {
	fetcher := &mockFetcher{err: domain.ErrServiceUnavailable}
	p := testPipeline(nil, fetcher)
	require.NoError(t, p.LoadCatalog(context.Background()))
	_, err := p.Query(domain.ByCombinedID("23230-72493"))
	require.NoError(t, err)

	win := domain.Window{Start: launch(1, 0), End: launch(2, 0)}
	_, err = p.Export(context.Background(), win, filepath.Join(t.TempDir(), "UP.DAT"))

	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestExportCoverageFailureLeavesNoFile(t *testing.T) {
	fetcher := &mockFetcher{profiles: testProfiles()}
	p := testPipeline(nil, fetcher)
	require.NoError(t, p.LoadCatalog(context.Background()))
	_, err := p.Query(domain.ByCombinedID("23230-72493"))
	require.NoError(t, err)

	dir := t.TempDir()
	win := domain.Window{Start: launch(1, 0), End: launch(9, 0)}
	_, err = p.Export(context.Background(), win, filepath.Join(dir, "UP.DAT"))

	require.ErrorIs(t, err, domain.ErrRangeUnavailable)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckReadiness(t *testing.T) {
	p := testPipeline(nil, nil)

	assert.Error(t, p.CheckReadiness(context.Background()))

	require.NoError(t, p.LoadCatalog(context.Background()))
	assert.NoError(t, p.CheckReadiness(context.Background()))
}
