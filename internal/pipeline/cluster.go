package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/philosophercode/travelback-sub000/internal/photo"
)

// Day is one derived day bucket: photos sharing a calendar date, numbered
// in ascending date order.
type Day struct {
	Number int
	Date   time.Time
	Photos []photo.Photo
}

// ClusterDays recomputes day buckets for the trip from persisted photo
// state. Photos are grouped by the UTC calendar date of their capture time;
// photos without a capture time stay unassigned. Prior assignments are
// cleared first, so re-running with an unchanged photo set is idempotent.
func (p *Pipeline) ClusterDays(ctx context.Context, tripID string) ([]Day, error) {
	photos, err := p.photos.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, eris.Wrap(err, "listing photos for clustering")
	}

	if err := p.photos.ClearDayNumbers(ctx, tripID); err != nil {
		return nil, eris.Wrap(err, "clearing day assignments")
	}

	buckets := map[string][]photo.Photo{}
	for _, ph := range photos {
		if ph.CapturedAt == nil {
			continue
		}
		key := ph.CapturedAt.UTC().Format("2006-01-02")
		buckets[key] = append(buckets[key], ph)
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]Day, 0, len(dates))
	for i, date := range dates {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, eris.Wrap(err, "parsing bucket date")
		}
		day := Day{Number: i + 1, Date: parsed, Photos: buckets[date]}
		sort.Slice(day.Photos, func(a, b int) bool {
			return day.Photos[a].CapturedAt.Before(*day.Photos[b].CapturedAt)
		})

		for _, ph := range day.Photos {
			if err := p.photos.AssignDay(ctx, ph.ID, day.Number); err != nil {
				return nil, eris.Wrapf(err, "assigning day %d", day.Number)
			}
		}
		days = append(days, day)
	}
	return days, nil
}
