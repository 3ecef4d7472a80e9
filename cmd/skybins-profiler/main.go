// Command skybins-profiler compares the built-in twilight nights against a
// reference table.
//
// CSV format:
//
//	date,evening,morning
//	2020-02-01,19:03,06:08
//	2020-02-02,19:04,06:08
//
// - date is the local calendar date the night begins on (YYYY-MM-DD)
// - evening is local twilight on that date, morning is local twilight on
//   the following date (HH:MM or HH:MM:SS, 24-hour clock)
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thurmanmarka/skybins"
)

type stats struct {
	count int
	sum   float64
	min   float64
	max   float64
}

func (s *stats) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	if s.count == 0 {
		s.min, s.max = v, v
	} else {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	s.sum += v
	s.count++
}

func (s *stats) mean() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.sum / float64(s.count)
}

// row is one comparison, errors in minutes (ours - reference).
type row struct {
	date       string
	eveningErr float64
	morningErr float64
}

type summary struct {
	rows    []row
	evening stats // signed
	morning stats
	absEve  stats
	absMorn stats
	skipped int
}

func parseLocalTime(date time.Time, hhmm string) (time.Time, error) {
	layout := "15:04"
	if strings.Count(hhmm, ":") == 2 {
		layout = "15:04:05"
	}
	parsed, err := time.Parse(layout, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, date.Location()), nil
}

// profile reads reference rows from r and compares each against src.
func profile(r io.Reader, src skybins.NightSource, site skybins.Site, kind skybins.TwilightKind, logger *zap.Logger) (summary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return summary{}, fmt.Errorf("reading CSV: %w", err)
	}

	var sum summary
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}
		if len(rec) < 3 {
			logger.Warn("skipping short row", zap.Int("row", i+1), zap.Int("columns", len(rec)))
			sum.skipped++
			continue
		}

		dateStr := strings.TrimSpace(rec[0])
		date, err := time.ParseInLocation("2006-01-02", dateStr, site.Zone)
		if err != nil {
			logger.Warn("skipping row with bad date", zap.Int("row", i+1), zap.String("date", dateStr))
			sum.skipped++
			continue
		}
		refEve, err1 := parseLocalTime(date, strings.TrimSpace(rec[1]))
		refMorn, err2 := parseLocalTime(date.AddDate(0, 0, 1), strings.TrimSpace(rec[2]))
		if err1 != nil || err2 != nil {
			logger.Warn("skipping row with bad time", zap.Int("row", i+1))
			sum.skipped++
			continue
		}

		n, err := src.Night(kind, date.Add(14*time.Hour), site)
		if err != nil {
			logger.Warn("no night", zap.String("date", dateStr), zap.Error(err))
			sum.skipped++
			continue
		}

		res := row{
			date:       dateStr,
			eveningErr: n.Start.Sub(refEve).Minutes(),
			morningErr: n.End.Sub(refMorn).Minutes(),
		}
		sum.rows = append(sum.rows, res)
		sum.evening.add(res.eveningErr)
		sum.morning.add(res.morningErr)
		sum.absEve.add(math.Abs(res.eveningErr))
		sum.absMorn.add(math.Abs(res.morningErr))
	}
	return sum, nil
}

func printStats(name string, s stats) {
	fmt.Printf("\n%s (minutes):\n", name)
	fmt.Printf("  count: %d\n", s.count)
	fmt.Printf("  min:   %.3f\n", s.min)
	fmt.Printf("  max:   %.3f\n", s.max)
	fmt.Printf("  mean:  %.3f\n", s.mean())
}

func main() {
	var (
		siteName = flag.String("site", "GN", "site: GN or GS")
		twilight = flag.String("twilight", "nautical", "twilight kind: civil, nautical, astronomical, official")
		refCSV   = flag.String("refcsv", "", "path to reference CSV file (date,evening,morning)")
		outCSV   = flag.String("outcsv", "", "optional path to write per-row error CSV")
		verbose  = flag.Bool("verbose", false, "print per-night errors instead of only the summary")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if *refCSV == "" {
		logger.Fatal("missing -refcsv (path to reference CSV)")
	}
	site, err := skybins.LookupSite(*siteName)
	if err != nil {
		logger.Fatal("invalid -site", zap.Error(err))
	}
	kind, err := skybins.ParseTwilightKind(*twilight)
	if err != nil {
		logger.Fatal("invalid -twilight", zap.Error(err))
	}

	f, err := os.Open(*refCSV)
	if err != nil {
		logger.Fatal("failed to open refcsv", zap.String("path", *refCSV), zap.Error(err))
	}
	defer f.Close()

	eph, err := skybins.NewEphemeris(1024)
	if err != nil {
		logger.Fatal("failed to create ephemeris", zap.Error(err))
	}
	defer eph.Close()

	sum, err := profile(f, eph, site, kind, logger)
	if err != nil {
		logger.Fatal("profile failed", zap.Error(err))
	}

	if *outCSV != "" {
		out, err := os.Create(*outCSV)
		if err != nil {
			logger.Fatal("failed to create outcsv", zap.String("path", *outCSV), zap.Error(err))
		}
		defer out.Close()
		w := csv.NewWriter(out)
		_ = w.Write([]string{"date", "evening_err", "morning_err"})
		for _, r := range sum.rows {
			_ = w.Write([]string{r.date, fmt.Sprintf("%.6f", r.eveningErr), fmt.Sprintf("%.6f", r.morningErr)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			logger.Error("failed to write outcsv", zap.Error(err))
		}
	}

	if *verbose {
		for _, r := range sum.rows {
			fmt.Printf("%s: evening %+.2f min, morning %+.2f min\n", r.date, r.eveningErr, r.morningErr)
		}
	}

	fmt.Println("=== skybins profiler summary ===")
	fmt.Printf("Site:     %s (%.4f / %.4f)\n", site.Name, site.Lat, site.Lon)
	fmt.Printf("Twilight: %s\n", kind)
	fmt.Printf("Rows:     %d (processed), %d skipped\n", len(sum.rows), sum.skipped)

	if len(sum.rows) == 0 {
		fmt.Println("No valid rows to compute stats.")
		return
	}
	printStats("Evening error", sum.absEve)
	printStats("Morning error", sum.absMorn)
	printStats("Evening signed error, ours - ref", sum.evening)
	printStats("Morning signed error, ours - ref", sum.morning)
}
