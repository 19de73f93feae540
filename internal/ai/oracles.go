package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/philosophercode/travelback-sub000/internal/photo"
)

const describePrompt = `Describe this travel photo. Respond with bare JSON:
{"caption": "one-sentence description", "scene": "scene type, e.g. beach, museum, street", "tags": ["up to five keywords"]}
%s`

const detectLocationPrompt = `Identify where this travel photo was taken. Respond with bare JSON:
{"latitude": 0.0, "longitude": 0.0, "country": "", "city": "", "neighborhood": "", "landmark": "", "confidence": 0.0}
Use your best estimate for coordinates. confidence is 0 to 1; use a low value when unsure. Leave fields you cannot determine empty.`

const narrateDayPrompt = `You are writing a travel journal. Summarize day %d (%s) of the trip "%s" from these moments:

%s
Approximate distance covered: %.1f km.

Respond with bare JSON: {"title": "short evocative day title", "summary": "2-4 sentence narrative of the day"}`

const summarizeTripPrompt = `You are writing a travel journal. Write a short overview of the trip "%s" from its day summaries:

%s
Respond with bare JSON: {"overview": "3-5 sentence narrative of the whole trip"}`

// minVisionConfidence gates vision-detected locations before they reach
// reconciliation.
const minVisionConfidence = 0.3

// Moment is one photo's contribution to a day narration prompt.
type Moment struct {
	Time    time.Time
	Caption string
	Place   string
}

type DayContext struct {
	TripName   string
	DayNumber  int
	Date       time.Time
	Moments    []Moment
	DistanceKm float64
}

type DayNarrative struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// DaySummary is a completed day itinerary fed into the trip overview prompt.
type DaySummary struct {
	DayNumber int
	Title     string
	Summary   string
}

func (c *Client) DescribePhoto(ctx context.Context, image []byte, hint string) (photo.Description, error) {
	if hint != "" {
		hint = "Context: " + hint
	}
	raw, err := c.chatVision(ctx, fmt.Sprintf(describePrompt, hint), image)
	if err != nil {
		return photo.Description{}, err
	}

	var desc photo.Description
	if err := decodeJSON(raw, &desc); err != nil {
		return photo.Description{}, err
	}
	if desc.Caption == "" {
		return photo.Description{}, eris.New("description output missing caption")
	}
	return desc, nil
}

// DetectLocation asks the vision model where the photo was taken. Candidates
// below the confidence floor, or naming neither city nor country, are
// discarded and reported as no match.
func (c *Client) DetectLocation(ctx context.Context, image []byte) (*photo.Location, error) {
	raw, err := c.chatVision(ctx, detectLocationPrompt, image)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Latitude     *float64 `json:"latitude"`
		Longitude    *float64 `json:"longitude"`
		Country      string   `json:"country"`
		City         string   `json:"city"`
		Neighborhood string   `json:"neighborhood"`
		Landmark     string   `json:"landmark"`
		Confidence   float64  `json:"confidence"`
	}
	if err := decodeJSON(raw, &parsed); err != nil {
		return nil, err
	}
	if parsed.Latitude == nil || parsed.Longitude == nil {
		return nil, eris.New("location output missing coordinates")
	}

	loc := photo.Location{
		Latitude:     *parsed.Latitude,
		Longitude:    *parsed.Longitude,
		Country:      parsed.Country,
		City:         parsed.City,
		Neighborhood: parsed.Neighborhood,
		Landmark:     parsed.Landmark,
		Provenance:   photo.ProvenanceLLMVisual,
		Confidence:   parsed.Confidence,
	}
	if loc.Confidence < minVisionConfidence || !loc.HasPlaceName() {
		return nil, nil
	}
	return &loc, nil
}

func (c *Client) NarrateDay(ctx context.Context, day DayContext) (DayNarrative, error) {
	var sb strings.Builder
	for _, m := range day.Moments {
		sb.WriteString("- ")
		if !m.Time.IsZero() {
			sb.WriteString(m.Time.Format("15:04") + " ")
		}
		sb.WriteString(m.Caption)
		if m.Place != "" {
			sb.WriteString(" (" + m.Place + ")")
		}
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf(narrateDayPrompt, day.DayNumber, day.Date.Format("2006-01-02"), day.TripName, sb.String(), day.DistanceKm)
	raw, err := c.chat(ctx, prompt)
	if err != nil {
		return DayNarrative{}, err
	}

	var narrative DayNarrative
	if err := decodeJSON(raw, &narrative); err != nil {
		return DayNarrative{}, err
	}
	if narrative.Title == "" || narrative.Summary == "" {
		return DayNarrative{}, eris.New("day narrative missing title or summary")
	}
	return narrative, nil
}

func (c *Client) SummarizeTrip(ctx context.Context, tripName string, days []DaySummary) (string, error) {
	var sb strings.Builder
	for _, d := range days {
		fmt.Fprintf(&sb, "Day %d, %s: %s\n", d.DayNumber, d.Title, d.Summary)
	}

	raw, err := c.chat(ctx, fmt.Sprintf(summarizeTripPrompt, tripName, sb.String()))
	if err != nil {
		return "", err
	}

	var parsed struct {
		Overview string `json:"overview"`
	}
	if err := decodeJSON(raw, &parsed); err != nil {
		return "", err
	}
	if parsed.Overview == "" {
		return "", eris.New("trip overview output empty")
	}
	return parsed.Overview, nil
}
