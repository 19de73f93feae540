package pipeline

import (
	"math"
	"strings"

	"github.com/philosophercode/travelback-sub000/internal/photo"
	"github.com/philosophercode/travelback-sub000/internal/shared/geo"
)

// agreementThresholdKm is the distance under which the GPS and vision
// candidates are treated as describing the same place.
const agreementThresholdKm = 1.0

// SpecificityScore ranks how precisely a location names a place. A landmark
// dominates the score: a named place is strong evidence even over
// administrative precision.
func SpecificityScore(loc photo.Location) float64 {
	score := loc.Confidence * 2
	if strings.TrimSpace(loc.Country) != "" {
		score += 1
	}
	if strings.TrimSpace(loc.City) != "" {
		score += 2
	}
	if strings.TrimSpace(loc.Neighborhood) != "" {
		score += 3
	}
	if strings.TrimSpace(loc.Landmark) != "" {
		score += 5
	}
	if strings.TrimSpace(loc.Address) != "" {
		score += 2
	}
	return score
}

// Reconcile combines a GPS-derived and a vision-derived location candidate
// into one. Either may be nil; with a single candidate it is returned
// unchanged. The rules are ordered and deterministic:
//
// Within agreementThresholdKm the sources describe the same place: keep the
// GPS coordinates (positionally more precise), take the textual fields from
// the higher-scoring candidate, and use the max of the two confidences.
//
// Beyond the threshold the sources disagree: vision wins outright when it is
// confident (> 0.7) and names a landmark, else the higher specificity score
// wins, else vision wins on confidence > 0.5, else GPS.
func Reconcile(gps, vision *photo.Location) *photo.Location {
	switch {
	case gps == nil && vision == nil:
		return nil
	case vision == nil:
		return gps
	case gps == nil:
		return vision
	}

	dist := geo.HaversineKm(gps.Latitude, gps.Longitude, vision.Latitude, vision.Longitude)
	if dist < agreementThresholdKm {
		return mergeAgreeing(gps, vision)
	}

	if vision.Confidence > 0.7 && strings.TrimSpace(vision.Landmark) != "" {
		return vision
	}
	gpsScore, visionScore := SpecificityScore(*gps), SpecificityScore(*vision)
	if visionScore > gpsScore {
		return vision
	}
	if gpsScore > visionScore {
		return gps
	}
	if vision.Confidence > 0.5 {
		return vision
	}
	return gps
}

func mergeAgreeing(gps, vision *photo.Location) *photo.Location {
	winner, provenance := gps, photo.ProvenanceGeocoding
	if SpecificityScore(*vision) > SpecificityScore(*gps) {
		winner, provenance = vision, photo.ProvenanceLLMVisual
	}

	merged := *winner
	merged.Latitude = gps.Latitude
	merged.Longitude = gps.Longitude
	merged.Provenance = provenance
	merged.Confidence = math.Max(gps.Confidence, vision.Confidence)
	return &merged
}
