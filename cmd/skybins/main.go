package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/thurmanmarka/skybins"
	"github.com/thurmanmarka/skybins/internal/api"
)

func main() {
	// No subcommand, or a flag first, means "bins".
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		runBins(os.Args[1:])
		return
	}

	switch os.Args[1] {
	case "bins":
		runBins(os.Args[2:])
	case "nights":
		runNights(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `skybins – RA/Dec bin visibility for a site and semester

Usage:
  skybins [bins] [flags]     # RA hours and Dec percentages
  skybins nights [flags]     # twilight-bounded nights of a semester
  skybins serve [flags]      # HTTP API

Run "skybins <subcommand> -h" for the flags of each subcommand.
`)
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// commonFlags are shared by bins and nights.
type commonFlags struct {
	site     *string
	semester *string
	debug    *bool
	jsonOut  *bool
}

func addCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		site:     fs.String("site", "GN", "site: GN or GS"),
		semester: fs.String("semester", "", "semester, e.g. 2020A (required)"),
		debug:    fs.Bool("debug", false, "development logging at debug level"),
		jsonOut:  fs.Bool("json", false, "output result as JSON"),
	}
}

func (c commonFlags) resolve(logger *zap.Logger) (skybins.Site, skybins.Semester) {
	site, err := skybins.LookupSite(*c.site)
	if err != nil {
		logger.Fatal("invalid -site", zap.Error(err))
	}
	if *c.semester == "" {
		logger.Fatal("-semester is required")
	}
	sem, err := skybins.ParseSemester(*c.semester)
	if err != nil {
		logger.Fatal("invalid -semester", zap.Error(err))
	}
	return site, sem
}

func newEphemeris(logger *zap.Logger) *skybins.Ephemeris {
	eph, err := skybins.NewEphemeris(4096)
	if err != nil {
		logger.Fatal("failed to create ephemeris", zap.Error(err))
	}
	return eph
}

// ---------------------
// bins
// ---------------------

func runBins(args []string) {
	fs := flag.NewFlagSet("bins", flag.ExitOnError)
	common := addCommon(fs)
	raSize := fs.Int("ra", skybins.DefaultRaBinSize.Size(), "RA bin size in minutes (must divide 1440)")
	decSize := fs.Int("dec", skybins.DefaultDecBinSize.Size(), "Dec bin size in degrees (must divide 180)")
	raMethod := fs.String("ra-method", "historical", "RA calculation: historical or elevation")
	transit := fs.Bool("transit-only", true, "elevation RA: cap each night at one bin width")
	twilight := fs.String("twilight", "nautical", "twilight for the elevation calculations: civil, nautical, astronomical, official")
	minAM := fs.Float64("min-airmass", skybins.DefaultElevationConfig.MinAirmass, "minimum airmass")
	maxAM := fs.Float64("max-airmass", skybins.DefaultElevationConfig.MaxAirmass, "maximum airmass")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: skybins bins [flags]

Flags:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse flags: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(*common.debug)
	defer logger.Sync() //nolint:errcheck

	site, sem := common.resolve(logger)

	ra, err := skybins.NewRaBinSize(*raSize)
	if err != nil {
		logger.Fatal("invalid -ra", zap.Error(err))
	}
	dec, err := skybins.NewDecBinSize(*decSize)
	if err != nil {
		logger.Fatal("invalid -dec", zap.Error(err))
	}
	kind, err := skybins.ParseTwilightKind(*twilight)
	if err != nil {
		logger.Fatal("invalid -twilight", zap.Error(err))
	}

	eph := newEphemeris(logger)
	defer eph.Close()

	elev := skybins.ElevationConfig{Bounds: kind, MinAirmass: *minAM, MaxAirmass: *maxAM}
	cfg := skybins.DefaultCalculatorConfig(eph)
	cfg.DecCalc = skybins.NewElevationDecCalc(eph, eph, elev)
	switch strings.ToLower(*raMethod) {
	case "historical":
	case "elevation":
		rc := skybins.NewElevationRaCalc(eph, eph, elev)
		rc.TransitOnly = *transit
		cfg.RaCalc = rc
	default:
		logger.Fatal("unsupported -ra-method (use historical or elevation)", zap.String("value", *raMethod))
	}

	calc, err := skybins.NewCalculator(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create calculator", zap.Error(err))
	}

	res, err := calc.Get(site, sem, ra, dec)
	if err != nil {
		logger.Fatal("calculation failed", zap.Error(err))
	}

	if *common.jsonOut {
		printBinsJSON(site, sem, ra, dec, res)
	} else {
		printBinsHuman(site, sem, ra, dec, res)
	}
}

func printBinsHuman(site skybins.Site, sem skybins.Semester, ra, dec skybins.BinSize, res *skybins.Result) {
	fmt.Printf("%s %s  (RA bins %s, Dec bins %s)\n\n", site.Name, sem, ra, dec)

	fmt.Println("RA (h)     time")
	for i, h := range res.RaHours() {
		center := ra.Centers()[i] / 60
		fmt.Printf("  %6.2f  %10s\n", center, h)
	}

	fmt.Printf("\nDec (deg)  usable (relative to zenith, at RA %.2f°)\n", res.MaxRa)
	for i, p := range res.DecPercentages() {
		fmt.Printf("  %+6.1f  %10s\n", dec.Centers()[i], p)
	}
}

func printBinsJSON(site skybins.Site, sem skybins.Semester, ra, dec skybins.BinSize, res *skybins.Result) {
	out := struct {
		Site           string            `json:"site"`
		Semester       string            `json:"semester"`
		RaSize         int               `json:"ra_size_minutes"`
		DecSize        int               `json:"dec_size_degrees"`
		MaxRa          float64           `json:"max_ra_degrees"`
		RaHours        []skybins.Hours   `json:"ra_hours"`
		DecPercentages []skybins.Percent `json:"dec_percentages"`
	}{
		Site:           site.Name,
		Semester:       sem.String(),
		RaSize:         ra.Size(),
		DecSize:        dec.Size(),
		MaxRa:          res.MaxRa,
		RaHours:        res.RaHours(),
		DecPercentages: res.DecPercentages(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

// ---------------------
// nights
// ---------------------

func runNights(args []string) {
	fs := flag.NewFlagSet("nights", flag.ExitOnError)
	common := addCommon(fs)
	twilight := fs.String("twilight", "nautical", "twilight: civil, nautical, astronomical, official")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: skybins nights [flags]

Flags:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse flags: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(*common.debug)
	defer logger.Sync() //nolint:errcheck

	site, sem := common.resolve(logger)
	kind, err := skybins.ParseTwilightKind(*twilight)
	if err != nil {
		logger.Fatal("invalid -twilight", zap.Error(err))
	}

	eph := newEphemeris(logger)
	defer eph.Close()

	nights, err := skybins.NewNightSequence(eph, site, sem.Start(site), sem.End(site), kind).All()
	if err != nil {
		logger.Fatal("night sequence failed", zap.Error(err))
	}

	if *common.jsonOut {
		type night struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
			Hours float64   `json:"hours"`
		}
		out := make([]night, len(nights))
		for i, n := range nights {
			out[i] = night{Start: n.Start, End: n.End, Hours: n.Duration().Hours()}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	var total time.Duration
	for _, n := range nights {
		total += n.Duration()
		fmt.Printf("%s  (%.2f h)\n", n, n.Duration().Hours())
	}
	fmt.Printf("\n%d nights, %.1f hours of %s night\n", len(nights), total.Hours(), kind)
}

// ---------------------
// serve
// ---------------------

type serveConfig struct {
	Addr      string
	CacheSize int
	Warm      []skybins.Semester
}

// loadServeConfig reads environment defaults; bad values are logged and
// ignored.
func loadServeConfig(logger *zap.Logger) serveConfig {
	cfg := serveConfig{Addr: ":8080", CacheSize: skybins.DefaultCacheSize}

	if v := os.Getenv("SKYBINS_HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}

	if v := os.Getenv("SKYBINS_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SKYBINS_CACHE_SIZE value, using default",
				zap.String("value", v), zap.Int("default", cfg.CacheSize))
		} else {
			cfg.CacheSize = n
		}
	}

	if v := os.Getenv("SKYBINS_WARM_SEMESTERS"); v != "" {
		for _, s := range strings.Split(v, ",") {
			sem, err := skybins.ParseSemester(s)
			if err != nil {
				logger.Warn("ignoring invalid semester in SKYBINS_WARM_SEMESTERS", zap.String("value", s))
				continue
			}
			cfg.Warm = append(cfg.Warm, sem)
		}
	}
	return cfg
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "listen address (default $SKYBINS_HTTP_ADDR or :8080)")
	cacheSize := fs.Int("cache-size", 0, "result cache entries (default $SKYBINS_CACHE_SIZE or 50)")
	debug := fs.Bool("debug", false, "development logging at debug level")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse flags: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(*debug)
	defer logger.Sync() //nolint:errcheck

	cfg := loadServeConfig(logger)
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *cacheSize > 0 {
		cfg.CacheSize = *cacheSize
	}

	eph := newEphemeris(logger)
	defer eph.Close()

	calcCfg := skybins.DefaultCalculatorConfig(eph)
	calcCfg.CacheSize = cfg.CacheSize
	calc, err := skybins.NewCalculator(calcCfg, logger)
	if err != nil {
		logger.Fatal("failed to create calculator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.Warm) > 0 {
		go func() {
			for _, site := range skybins.Sites() {
				err := calc.Warm(ctx, site, cfg.Warm, skybins.DefaultRaBinSize, skybins.DefaultDecBinSize, 2)
				if err != nil {
					logger.Warn("cache warmup stopped", zap.String("site", site.Name), zap.Error(err))
					return
				}
			}
			logger.Info("cache warmed", zap.Int("entries", calc.Stats().Entries))
		}()
	}

	srv := api.NewServer(cfg.Addr, calc, eph, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}
