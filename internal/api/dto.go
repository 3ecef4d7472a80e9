package api

import (
	"time"

	"github.com/thurmanmarka/skybins"
)

type ErrorMessage struct {
	Message string `json:"message"`
}

type SiteDTO struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Altitude float64 `json:"altitude_m"`
	Zone     string  `json:"zone"`
}

type BinsResponseDTO struct {
	Site           string            `json:"site"`
	Semester       string            `json:"semester"`
	RaSizeMinutes  int               `json:"ra_size_minutes"`
	DecSizeDegrees int               `json:"dec_size_degrees"`
	MaxRaDegrees   float64           `json:"max_ra_degrees"`
	RaHours        []skybins.Hours   `json:"ra_hours"`
	DecPercentages []skybins.Percent `json:"dec_percentages"`
}

type NightDTO struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration float64   `json:"duration_hours"`
}

type NightsResponseDTO struct {
	Site     string     `json:"site"`
	Semester string     `json:"semester"`
	Twilight string     `json:"twilight"`
	Nights   []NightDTO `json:"nights"`
}

func mapSiteToDTO(s skybins.Site) SiteDTO {
	zone := ""
	if s.Zone != nil {
		zone = s.Zone.String()
	}
	return SiteDTO{Name: s.Name, Lat: s.Lat, Lon: s.Lon, Altitude: s.Altitude, Zone: zone}
}

func mapNightsToDTO(nights []skybins.Night) []NightDTO {
	out := make([]NightDTO, 0, len(nights))
	for _, n := range nights {
		out = append(out, NightDTO{
			Start:    n.Start.UTC(),
			End:      n.End.UTC(),
			Duration: n.Duration().Hours(),
		})
	}
	return out
}
