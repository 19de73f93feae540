package pipeline

import (
	"testing"

	"github.com/philosophercode/travelback-sub000/internal/photo"
)

func TestSpecificityScore(t *testing.T) {
	tests := []struct {
		name string
		loc  photo.Location
		want float64
	}{
		{"empty", photo.Location{}, 0},
		{"country only", photo.Location{Country: "France"}, 1},
		{"city and country", photo.Location{Country: "France", City: "Paris", Confidence: 0.5}, 4},
		{"landmark dominates", photo.Location{Landmark: "Eiffel Tower"}, 5},
		{"whitespace ignored", photo.Location{City: "  "}, 0},
		{
			"full",
			photo.Location{Country: "France", City: "Paris", Neighborhood: "Montmartre", Landmark: "Sacre-Coeur", Address: "35 Rue du Chevalier", Confidence: 1},
			15,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpecificityScore(tt.loc); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReconcileSingleCandidates(t *testing.T) {
	gps := &photo.Location{Latitude: 48.85, Longitude: 2.35, Provenance: photo.ProvenanceGeocoding}
	vision := &photo.Location{Latitude: 48.86, Longitude: 2.29, Provenance: photo.ProvenanceLLMVisual}

	if got := Reconcile(nil, nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if got := Reconcile(gps, nil); got != gps {
		t.Fatalf("expected gps candidate back")
	}
	if got := Reconcile(nil, vision); got != vision {
		t.Fatalf("expected vision candidate back")
	}
}

func TestReconcileAgreementMergesOnGPSCoordinates(t *testing.T) {
	gps := &photo.Location{
		Latitude: 48.8584, Longitude: 2.2945,
		Country: "France", City: "Paris",
		Provenance: photo.ProvenanceGeocoding, Confidence: 0.9,
	}
	vision := &photo.Location{
		Latitude: 48.8590, Longitude: 2.2950,
		Country: "France", City: "Paris", Landmark: "Eiffel Tower",
		Provenance: photo.ProvenanceLLMVisual, Confidence: 0.8,
	}

	got := Reconcile(gps, vision)
	if got.Latitude != gps.Latitude || got.Longitude != gps.Longitude {
		t.Fatalf("expected gps coordinates, got %v,%v", got.Latitude, got.Longitude)
	}
	if got.Landmark != "Eiffel Tower" {
		t.Fatalf("expected vision text fields to win, got %+v", got)
	}
	if got.Provenance != photo.ProvenanceLLMVisual {
		t.Fatalf("expected llm_visual provenance, got %s", got.Provenance)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("expected max confidence 0.9, got %v", got.Confidence)
	}
}

func TestReconcileAgreementGPSTextWins(t *testing.T) {
	gps := &photo.Location{
		Latitude: 48.8584, Longitude: 2.2945,
		Country: "France", City: "Paris", Neighborhood: "Gros-Caillou", Address: "5 Avenue Anatole",
		Provenance: photo.ProvenanceGeocoding, Confidence: 0.9,
	}
	vision := &photo.Location{
		Latitude: 48.8590, Longitude: 2.2950,
		Country:    "France",
		Provenance: photo.ProvenanceLLMVisual, Confidence: 0.4,
	}

	got := Reconcile(gps, vision)
	if got.Provenance != photo.ProvenanceGeocoding {
		t.Fatalf("expected geocoding provenance, got %s", got.Provenance)
	}
	if got.Neighborhood != "Gros-Caillou" {
		t.Fatalf("expected gps text fields, got %+v", got)
	}
}

func TestReconcileDisagreementConfidentLandmarkWins(t *testing.T) {
	gps := &photo.Location{
		Latitude: 48.8584, Longitude: 2.2945,
		Country: "France", City: "Paris", Neighborhood: "Gros-Caillou", Address: "5 Avenue Anatole",
		Provenance: photo.ProvenanceGeocoding, Confidence: 0.9,
	}
	vision := &photo.Location{
		Latitude: 41.8902, Longitude: 12.4922,
		Country: "Italy", City: "Rome", Landmark: "Colosseum",
		Provenance: photo.ProvenanceLLMVisual, Confidence: 0.85,
	}

	if got := Reconcile(gps, vision); got != vision {
		t.Fatalf("expected confident landmark vision to win, got %+v", got)
	}
}

func TestReconcileDisagreementHigherScoreWins(t *testing.T) {
	gps := &photo.Location{
		Latitude: 48.8584, Longitude: 2.2945,
		Country: "France", City: "Paris", Neighborhood: "Gros-Caillou",
		Provenance: photo.ProvenanceGeocoding, Confidence: 0.9,
	}
	vision := &photo.Location{
		Latitude: 41.8902, Longitude: 12.4922,
		Country: "Italy", City: "Rome",
		Provenance: photo.ProvenanceLLMVisual, Confidence: 0.6,
	}

	if got := Reconcile(gps, vision); got != gps {
		t.Fatalf("expected higher-scoring gps to win, got %+v", got)
	}
}

func TestReconcileDisagreementConfidenceTieBreak(t *testing.T) {
	// Identical field structure, so equal scores need equal confidences.
	gps := &photo.Location{
		Latitude: 48.8584, Longitude: 2.2945,
		Country: "France", City: "Paris",
		Provenance: photo.ProvenanceGeocoding, Confidence: 0.6,
	}
	vision := &photo.Location{
		Latitude: 41.8902, Longitude: 12.4922,
		Country: "Italy", City: "Rome",
		Provenance: photo.ProvenanceLLMVisual, Confidence: 0.6,
	}

	if got := Reconcile(gps, vision); got != vision {
		t.Fatalf("expected vision to win the confidence tie-break, got %+v", got)
	}

	gps.Confidence, vision.Confidence = 0.4, 0.4
	if got := Reconcile(gps, vision); got != gps {
		t.Fatalf("expected gps to win at low confidence, got %+v", got)
	}
}
