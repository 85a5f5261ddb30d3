package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Evacuation levels, from least to most severe.
const (
	LevelGreen  = "Green"
	LevelYellow = "Yellow"
	LevelOrange = "Orange"
	LevelRed    = "Red"
	LevelBlack  = "Black"
)

// approachLayouts are the close-approach date formats accepted, tried in order.
var approachLayouts = []string{
	"2006-Jan-02 15:04",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Countdown is the time remaining until a close approach.
type Countdown struct {
	TotalSeconds float64 `json:"total_seconds"`
	Days         int64   `json:"days"`
	Hours        int64   `json:"hours"`
	Minutes      int64   `json:"minutes"`
	Formatted    string  `json:"formatted"`
}

// Evacuation is the public-safety recommendation for a given lead time.
type Evacuation struct {
	Required bool     `json:"required"`
	Status   string   `json:"status"`
	Level    string   `json:"level"`
	Message  string   `json:"message"`
	Actions  []string `json:"actions,omitempty"`
}

// ApproachReport describes the next close approach of a catalogued object.
type ApproachReport struct {
	HasApproachData       bool        `json:"has_approach_data"`
	Message               string      `json:"message,omitempty"`
	ApproachDate          string      `json:"approach_date,omitempty"`
	ApproachDateFormatted string      `json:"approach_date_formatted,omitempty"`
	TimeUntilApproach     *Countdown  `json:"time_until_approach,omitempty"`
	MissDistanceKm        float64     `json:"miss_distance_km"`
	VelocityKmS           float64     `json:"velocity_km_s"`
	WillImpact            bool        `json:"will_impact"`
	ImpactProbability     string      `json:"impact_probability,omitempty"`
	Evacuation            *Evacuation `json:"evacuation,omitempty"`
}

// TimeToApproach computes the countdown to the first close approach of record.
// Missing or unparseable dates yield a report with HasApproachData false.
func TimeToApproach(record CatalogRecord) ApproachReport {
	if len(record.CloseApproachData) == 0 {
		return ApproachReport{Message: "No close approach data available"}
	}
	next := record.CloseApproachData[0]

	raw := next.DateFull
	if raw == "" {
		raw = next.Date
	}
	if raw == "" {
		return ApproachReport{Message: "No valid approach date found"}
	}
	at, err := ParseApproachDate(raw)
	if err != nil {
		return ApproachReport{Message: fmt.Sprintf("Invalid date format: %s", raw)}
	}

	var velocity float64
	if next.VelocityKmS != nil {
		velocity = *next.VelocityKmS
	}

	remaining := at.Sub(clock.Now().UTC())
	countdown := splitDuration(remaining)
	willImpact := next.MissDistanceKm < EarthRadiusKm

	probability := "Very Low"
	if willImpact {
		probability = "High"
	}
	evacuation := EvacuationFor(countdown.Days, willImpact)

	return ApproachReport{
		HasApproachData:       true,
		ApproachDate:          at.Format("2006-01-02T15:04:05"),
		ApproachDateFormatted: at.Format("2006-01-02 15:04:05 UTC"),
		TimeUntilApproach:     &countdown,
		MissDistanceKm:        next.MissDistanceKm,
		VelocityKmS:           velocity,
		WillImpact:            willImpact,
		ImpactProbability:     probability,
		Evacuation:            &evacuation,
	}
}

// ParseApproachDate parses a close-approach timestamp as UTC.
func ParseApproachDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range approachLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	if date, _, ok := strings.Cut(s, "T"); ok {
		if t, err := time.ParseInLocation("2006-01-02", date, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid("close_approach_date", "unrecognized format %q", s)
}

// splitDuration breaks d into whole days (floored, so negative durations
// give negative days) and the non-negative hours and minutes left over.
func splitDuration(d time.Duration) Countdown {
	total := d.Seconds()
	days := int64(math.Floor(total / 86400))
	rest := int64(total - float64(days)*86400)
	hours := rest / 3600
	minutes := (rest % 3600) / 60
	return Countdown{
		TotalSeconds: total,
		Days:         days,
		Hours:        hours,
		Minutes:      minutes,
		Formatted:    fmt.Sprintf("%dd %dh %dm", days, hours, minutes),
	}
}

// EvacuationFor maps the days left before an approach to a recommendation.
func EvacuationFor(days int64, willImpact bool) Evacuation {
	if !willImpact {
		return Evacuation{
			Status:  "No evacuation needed",
			Level:   LevelGreen,
			Message: "Asteroid will safely pass by Earth",
		}
	}

	switch {
	case days < 0:
		return Evacuation{
			Required: true,
			Status:   "IMPACT OCCURRED",
			Level:    LevelBlack,
			Message:  "Impact has already occurred",
		}
	case days < 1:
		return Evacuation{
			Required: true,
			Status:   "IMMEDIATE EVACUATION",
			Level:    LevelRed,
			Message:  "Less than 24 hours until impact. Seek immediate shelter in designated safe zones.",
			Actions: []string{
				"Move to underground shelters immediately",
				"Stay away from windows and coastal areas",
				"Follow emergency services instructions",
				"Ensure emergency supplies (water, food, medical kit)",
			},
		}
	case days < 7:
		return Evacuation{
			Required: true,
			Status:   "CRITICAL - Begin evacuation",
			Level:    LevelRed,
			Message:  fmt.Sprintf("%d days until impact. Evacuate impact zone immediately.", days),
			Actions: []string{
				"Leave impact zone and surrounding areas (500+ km radius)",
				"Travel inland if near coast (tsunami risk)",
				"Stock emergency supplies for 2+ weeks",
				"Follow official evacuation routes",
				"Keep communication devices charged",
			},
		}
	case days < 30:
		return Evacuation{
			Required: true,
			Status:   "High Alert - Prepare to evacuate",
			Level:    LevelOrange,
			Message:  fmt.Sprintf("%d days until impact. Prepare evacuation plan.", days),
			Actions: []string{
				"Identify evacuation routes and safe zones",
				"Prepare emergency kit (documents, supplies, medications)",
				"Plan transportation and accommodation",
				"Monitor official channels for updates",
				"Coordinate with family and community",
			},
		}
	case days < 180:
		return Evacuation{
			Status:  "Elevated - Monitor situation",
			Level:   LevelYellow,
			Message: fmt.Sprintf("%d days until potential impact. Stay informed.", days),
			Actions: []string{
				"Monitor news and official warnings",
				"Review family emergency plan",
				"Identify potential evacuation destinations",
				"Maintain emergency supplies",
				"Await deflection mission results",
			},
		}
	default:
		return Evacuation{
			Status:  "Advisory - Mitigation possible",
			Level:   LevelGreen,
			Message: fmt.Sprintf("%d days until approach. Time for deflection missions.", days),
			Actions: []string{
				"Space agencies can attempt deflection",
				"Monitor trajectory updates",
				"Public awareness campaigns",
				"Scientific community coordination",
			},
		}
	}
}
