// Command upperair retrieves radiosonde station metadata and sounding data
// from the NOAA/ESRL archive, selects a station by exactly one search mode,
// and exports a time window of soundings to the UP.DAT format.
//
// Usage:
//
//	upperair -name OAKLAND
//	upperair -id 23230-72493 -export -start 2009010100 -end 2009010312
//	upperair -serve
//
// Configuration (archive URL, output path, top pressure) comes from
// environment variables, optionally via a .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/airshedlabs/upperair/internal/adapter/http"
	"github.com/airshedlabs/upperair/internal/adapter/raob"
	"github.com/airshedlabs/upperair/internal/config"
	"github.com/airshedlabs/upperair/internal/domain"
	"github.com/airshedlabs/upperair/internal/observability"
	"github.com/airshedlabs/upperair/internal/pipeline"
	"github.com/airshedlabs/upperair/internal/updat"
)

type flags struct {
	serve bool

	id      string
	name    string
	init    string
	wban    string
	wmo     string
	region  string
	country string
	latMin  floatFlag
	latMax  floatFlag
	lonMin  floatFlag
	lonMax  floatFlag
	elevMin floatFlag
	elevMax floatFlag

	export bool
	start  string
	end    string
	out    string
	ptop   floatFlag
}

// floatFlag is a float64 flag that remembers whether it was set, so optional
// bounds stay distinguishable from zero values.
type floatFlag struct {
	value float64
	set   bool
}

func (f *floatFlag) String() string {
	if !f.set {
		return ""
	}
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

func (f *floatFlag) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.value = v
	f.set = true
	return nil
}

func parseFlags() *flags {
	var fl flags
	flag.BoolVar(&fl.serve, "serve", false, "run the HTTP station query service")

	flag.StringVar(&fl.id, "id", "", "combined WBAN-WMO station identifier")
	flag.StringVar(&fl.name, "name", "", "station name substring (case-insensitive)")
	flag.StringVar(&fl.init, "init", "", "station init call code")
	flag.StringVar(&fl.wban, "wban", "", "WBAN identifier")
	flag.StringVar(&fl.wmo, "wmo", "", "WMO identifier")
	flag.StringVar(&fl.region, "region", "", "two-letter region code")
	flag.StringVar(&fl.country, "country", "", "two-letter country code")
	flag.Var(&fl.latMin, "latmin", "bounding box lower latitude")
	flag.Var(&fl.latMax, "latmax", "bounding box upper latitude")
	flag.Var(&fl.lonMin, "lonmin", "bounding box lower longitude")
	flag.Var(&fl.lonMax, "lonmax", "bounding box upper longitude")
	flag.Var(&fl.elevMin, "elevmin", "minimum station elevation (m)")
	flag.Var(&fl.elevMax, "elevmax", "maximum station elevation (m)")

	flag.BoolVar(&fl.export, "export", false, "export the selected station's soundings to UP.DAT")
	flag.StringVar(&fl.start, "start", "", "export window start as YYYYMMDDHH")
	flag.StringVar(&fl.end, "end", "", "export window end as YYYYMMDDHH")
	flag.StringVar(&fl.out, "out", "", "output path (default from UPDAT_OUT)")
	flag.Var(&fl.ptop, "ptop", "top pressure level in hPa (default from UPDAT_TOP_PRESSURE)")

	flag.Parse()
	return &fl
}

// query maps the mode flags to exactly one selection query. Supplying
// parameters for more than one mode is an input error.
func (fl *flags) query() (domain.Query, error) {
	var queries []domain.Query

	if fl.id != "" {
		queries = append(queries, domain.ByCombinedID(fl.id))
	}
	if fl.name != "" {
		queries = append(queries, domain.ByName(fl.name))
	}
	if fl.init != "" {
		queries = append(queries, domain.ByField(domain.FieldInit, fl.init))
	}
	if fl.wban != "" {
		queries = append(queries, domain.ByField(domain.FieldWBAN, fl.wban))
	}
	if fl.wmo != "" {
		queries = append(queries, domain.ByField(domain.FieldWMO, fl.wmo))
	}
	if fl.region != "" || fl.country != "" {
		queries = append(queries, domain.ByRegionCountry(fl.region, fl.country))
	}
	if fl.latMin.set || fl.latMax.set || fl.lonMin.set || fl.lonMax.set {
		if !(fl.latMin.set && fl.latMax.set && fl.lonMin.set && fl.lonMax.set) {
			return domain.Query{}, fmt.Errorf("%w: bounding box needs all of -latmin -latmax -lonmin -lonmax", domain.ErrInvalidArgument)
		}
		queries = append(queries, domain.ByBoundingBox(fl.latMin.value, fl.latMax.value, fl.lonMin.value, fl.lonMax.value))
	}
	if fl.elevMin.set || fl.elevMax.set {
		var lower, upper *float64
		if fl.elevMin.set {
			lower = &fl.elevMin.value
		}
		if fl.elevMax.set {
			upper = &fl.elevMax.value
		}
		queries = append(queries, domain.ByElevation(lower, upper))
	}

	switch len(queries) {
	case 0:
		return domain.Query{}, fmt.Errorf("%w: no search parameters given", domain.ErrInvalidArgument)
	case 1:
		return queries[0], nil
	default:
		return domain.Query{}, fmt.Errorf("%w: conflicting search parameters, supply exactly one search mode", domain.ErrInvalidArgument)
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("skipping .env: %v", err)
	}

	fl := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := raob.NewClient(cfg.ArchiveBaseURL, cfg.ArchiveTimeout, logger)
	writer := updat.Writer{
		SiteID:         cfg.SiteID,
		TopPressureHPa: cfg.TopPressureHPa,
		DecorateNames:  cfg.DecorateNames,
	}
	if fl.ptop.set {
		writer.TopPressureHPa = fl.ptop.value
	}
	p := pipeline.New(client, client, writer, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.LoadCatalog(ctx); err != nil {
		logger.Error("catalog load failed", "error", err)
		os.Exit(1)
	}

	if fl.serve {
		runServer(ctx, cfg, p, logger)
		return
	}
	if err := runBatch(ctx, cfg, fl, p); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runBatch performs one selection and, when requested, one export.
func runBatch(ctx context.Context, cfg *config.Config, fl *flags, p *pipeline.Pipeline) error {
	q, err := fl.query()
	if err != nil {
		return err
	}

	outcome, err := p.Query(q)
	if err != nil {
		return err
	}
	printOutcome(outcome)

	if !fl.export {
		return nil
	}
	if outcome.Kind != domain.Selected {
		return fmt.Errorf("%w: export needs a search that matches exactly one station", domain.ErrInvalidArgument)
	}

	win, err := parseWindow(fl.start, fl.end)
	if err != nil {
		return err
	}

	out := fl.out
	if out == "" {
		out = cfg.OutputPath
	}

	written, err := p.Export(ctx, win, out)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", written)
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func printOutcome(o domain.Outcome) {
	switch o.Kind {
	case domain.NoMatch:
		fmt.Println("no stations identified")
	case domain.Selected:
		c := o.Confirmation()
		fmt.Printf("selected station: wmo=%s wban=%s name=%q\n", c.WMO, c.WBAN, c.Name)
	case domain.Candidates:
		fmt.Printf("%d candidate stations:\n", o.Count)
		for _, s := range o.Stations {
			fmt.Printf("  %s-%s  %-30s %2s %2s  %7.2f %8.2f %6.0fm\n",
				s.WBAN, s.WMO, s.Name, s.Region, s.Country, s.Lat, s.Lon, s.ElevationM)
		}
	case domain.CountOnly:
		fmt.Printf("%d stations matched; narrow the search to list them\n", o.Count)
	}
}

// parseWindow decodes two YYYYMMDDHH stamps into an inclusive window.
func parseWindow(start, end string) (domain.Window, error) {
	s, err := parseDateHour(start)
	if err != nil {
		return domain.Window{}, fmt.Errorf("%w: -start: %v", domain.ErrInvalidArgument, err)
	}
	e, err := parseDateHour(end)
	if err != nil {
		return domain.Window{}, fmt.Errorf("%w: -end: %v", domain.ErrInvalidArgument, err)
	}
	if e.Before(s) {
		return domain.Window{}, fmt.Errorf("%w: window end precedes start", domain.ErrInvalidArgument)
	}
	return domain.Window{Start: s, End: e}, nil
}

func parseDateHour(s string) (domain.LaunchTime, error) {
	if len(s) != 10 {
		return domain.LaunchTime{}, fmt.Errorf("want YYYYMMDDHH, got %q", s)
	}
	year, err1 := strconv.Atoi(s[0:4])
	month, err2 := strconv.Atoi(s[4:6])
	day, err3 := strconv.Atoi(s[6:8])
	hour, err4 := strconv.Atoi(s[8:10])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return domain.LaunchTime{}, fmt.Errorf("want YYYYMMDDHH, got %q", s)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 {
		return domain.LaunchTime{}, fmt.Errorf("out-of-range date/hour %q", s)
	}
	return domain.LaunchTime{Year: year, Month: month, Day: day, Hour: hour}, nil
}
