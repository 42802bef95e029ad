//go:build raob

package raob

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real radiosonde archive and require a reachable
// RAOB_BASE_URL env var. Run with: go test -tags=raob ./internal/adapter/raob/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	baseURL := os.Getenv("RAOB_BASE_URL")
	if baseURL == "" {
		t.Fatal("RAOB_BASE_URL must be set to run smoke tests")
	}
	return NewClient(baseURL, 30*time.Second, testLogger())
}

func TestSmoke_ListStations(t *testing.T) {
	c := smokeClient(t)

	stations, err := c.ListStations(context.Background())
	require.NoError(t, err)

	assert.Greater(t, len(stations), 100, "master listing should carry hundreds of stations")
	for _, s := range stations[:10] {
		assert.NotEmpty(t, s.WBAN)
		assert.NotEmpty(t, s.WMO)
	}
}
