// Package raob fetches station metadata and sounding data from the NOAA/ESRL
// radiosonde archive over HTTP and parses the archive's text formats into
// domain records.
package raob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/airshedlabs/upperair/internal/domain"
)

// Client talks to the radiosonde archive.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an archive client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ListStations fetches and parses the archive's master station listing.
// Archive outages surface as domain.ErrServiceUnavailable; malformed listing
// lines are skipped with a warning rather than failing the whole fetch.
func (c *Client) ListStations(ctx context.Context) ([]domain.StationRecord, error) {
	body, err := c.get(ctx, c.baseURL+"/stationlist.txt")
	if err != nil {
		return nil, err
	}
	return c.parseStationListing(body), nil
}

// FetchProfiles fetches the processed sounding text for one station over a
// launch-time window and parses it into time-ordered profiles.
func (c *Client) FetchProfiles(ctx context.Context, station domain.StationRecord, win domain.Window) ([]domain.SoundingProfile, error) {
	params := url.Values{
		"wban":  {station.WBAN},
		"wmo":   {station.WMO},
		"bdate": {timestampParam(win.Start)},
		"edate": {timestampParam(win.End)},
	}

	body, err := c.get(ctx, c.baseURL+"/soundings?"+params.Encode())
	if err != nil {
		return nil, err
	}

	profiles, err := parseSoundingText(body)
	if err != nil {
		return nil, fmt.Errorf("parse soundings for %s-%s: %w", station.WBAN, station.WMO, err)
	}
	return profiles, nil
}

// get performs one GET and returns the body. Transport failures and 5xx
// responses map to domain.ErrServiceUnavailable so callers can distinguish an
// archive outage from a parse failure.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: archive returned status %d", domain.ErrServiceUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("archive error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// timestampParam renders a launch time the way the archive CGI expects,
// YYYYMMDDHH.
func timestampParam(lt domain.LaunchTime) string {
	return fmt.Sprintf("%04d%02d%02d%02d", lt.Year, lt.Month, lt.Day, lt.Hour)
}
