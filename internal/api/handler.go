package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/thurmanmarka/skybins"
)

// BinService is the part of *skybins.Calculator the API needs.
type BinService interface {
	Get(site skybins.Site, sem skybins.Semester, ra, dec skybins.BinSize) (*skybins.Result, error)
	Stats() skybins.CacheStats
}

var errMissingParam = errors.New("missing query parameter")

func HttpError(w http.ResponseWriter, message string, code int, logger *zap.Logger) {
	writeJSON(w, code, ErrorMessage{Message: message}, logger)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encountered when encoding response", zap.Error(err))
	}
}

// statusFor maps calculation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, skybins.ErrBinSize),
		errors.Is(err, skybins.ErrBadSemester),
		errors.Is(err, skybins.ErrUnknownSite),
		errors.Is(err, skybins.ErrIncompleteKey),
		errors.Is(err, errMissingParam):
		return http.StatusBadRequest
	case errors.Is(err, skybins.ErrZeroZenithTotal),
		errors.Is(err, skybins.ErrZenithOutOfRange),
		errors.Is(err, skybins.ErrNoNight):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func requiredParam(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", errMissingParam, name)
	}
	return v, nil
}

// siteAndSemester reads the site and semester query parameters.
func siteAndSemester(r *http.Request) (skybins.Site, skybins.Semester, error) {
	name, err := requiredParam(r, "site")
	if err != nil {
		return skybins.Site{}, skybins.Semester{}, err
	}
	site, err := skybins.LookupSite(name)
	if err != nil {
		return skybins.Site{}, skybins.Semester{}, err
	}
	s, err := requiredParam(r, "semester")
	if err != nil {
		return skybins.Site{}, skybins.Semester{}, err
	}
	sem, err := skybins.ParseSemester(s)
	if err != nil {
		return skybins.Site{}, skybins.Semester{}, err
	}
	return site, sem, nil
}

// sizeParam reads an optional integer bin size, falling back to def.
func sizeParam(r *http.Request, name string, axis skybins.Axis, def skybins.BinSize) (skybins.BinSize, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return skybins.BinSize{}, fmt.Errorf("%w: %s=%q is not an integer", skybins.ErrBinSize, name, v)
	}
	return skybins.NewBinSize(axis, n)
}

// SitesHandler lists the built-in sites.
func SitesHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sites := skybins.Sites()
		out := make([]SiteDTO, 0, len(sites))
		for _, s := range sites {
			out = append(out, mapSiteToDTO(s))
		}
		writeJSON(w, http.StatusOK, out, logger)
	}
}

// SiteHandler describes one site.
func SiteHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site, err := skybins.LookupSite(mux.Vars(r)["site"])
		if err != nil {
			HttpError(w, err.Error(), http.StatusNotFound, logger)
			return
		}
		writeJSON(w, http.StatusOK, mapSiteToDTO(site), logger)
	}
}

// BinsHandler returns RA hours and Dec percentages for
// ?site=GN&semester=2020A[&ra=60][&dec=10].
func BinsHandler(s BinService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site, sem, err := siteAndSemester(r)
		if err != nil {
			HttpError(w, err.Error(), statusFor(err), logger)
			return
		}
		ra, err := sizeParam(r, "ra", skybins.AxisRA, skybins.DefaultRaBinSize)
		if err != nil {
			HttpError(w, err.Error(), statusFor(err), logger)
			return
		}
		dec, err := sizeParam(r, "dec", skybins.AxisDec, skybins.DefaultDecBinSize)
		if err != nil {
			HttpError(w, err.Error(), statusFor(err), logger)
			return
		}

		res, err := s.Get(site, sem, ra, dec)
		if err != nil {
			logger.Error("Error encountered when computing bins",
				zap.String("site", site.Name), zap.Stringer("semester", sem), zap.Error(err))
			HttpError(w, err.Error(), statusFor(err), logger)
			return
		}

		writeJSON(w, http.StatusOK, BinsResponseDTO{
			Site:           site.Name,
			Semester:       sem.String(),
			RaSizeMinutes:  ra.Size(),
			DecSizeDegrees: dec.Size(),
			MaxRaDegrees:   res.MaxRa,
			RaHours:        res.RaHours(),
			DecPercentages: res.DecPercentages(),
		}, logger)
	}
}

// NightsHandler lists the nights of ?site=GN&semester=2020A[&twilight=nautical].
func NightsHandler(nights skybins.NightSource, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site, sem, err := siteAndSemester(r)
		if err != nil {
			HttpError(w, err.Error(), statusFor(err), logger)
			return
		}
		kind := skybins.TwilightNautical
		if v := r.URL.Query().Get("twilight"); v != "" {
			if kind, err = skybins.ParseTwilightKind(v); err != nil {
				HttpError(w, err.Error(), http.StatusBadRequest, logger)
				return
			}
		}

		list, err := skybins.NewNightSequence(nights, site, sem.Start(site), sem.End(site), kind).All()
		if err != nil {
			logger.Error("Error encountered when listing nights", zap.String("site", site.Name), zap.Error(err))
			HttpError(w, err.Error(), statusFor(err), logger)
			return
		}
		writeJSON(w, http.StatusOK, NightsResponseDTO{
			Site:     site.Name,
			Semester: sem.String(),
			Twilight: kind.String(),
			Nights:   mapNightsToDTO(list),
		}, logger)
	}
}

// CacheStatsHandler reports result-cache statistics.
func CacheStatsHandler(s BinService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Stats(), logger)
	}
}

// Healthz always reports ok while the process is serving.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}
