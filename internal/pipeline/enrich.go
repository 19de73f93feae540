package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/philosophercode/travelback-sub000/internal/photo"
)

// enrichPhoto runs the full per-photo flow: describe, locate, reconcile,
// persist. Oracle failures degrade the photo (missing description or
// location) without failing it; only an unreadable image or a persistence
// error marks the photo failed. Errors never propagate to sibling photos.
func (p *Pipeline) enrichPhoto(ctx context.Context, ph photo.Photo) error {
	if err := p.photos.SetStatus(ctx, ph.ID, photo.StatusProcessing, ""); err != nil {
		return eris.Wrap(err, "marking photo processing")
	}

	if err := p.enrich(ctx, ph); err != nil {
		if stErr := p.photos.SetStatus(ctx, ph.ID, photo.StatusFailed, err.Error()); stErr != nil {
			zap.L().Warn("failed to mark photo failed", zap.String("photo_id", ph.ID), zap.Error(stErr))
		}
		return eris.Wrapf(err, "enriching photo %s", ph.ID)
	}

	return p.photos.SetStatus(ctx, ph.ID, photo.StatusCompleted, "")
}

func (p *Pipeline) enrich(ctx context.Context, ph photo.Photo) error {
	log := zap.L().With(zap.String("photo_id", ph.ID))

	file, err := p.images.Open(ph.StoredName)
	if err != nil {
		return eris.Wrap(err, "opening stored photo")
	}
	image, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		return eris.Wrap(err, "reading stored photo")
	}

	desc, err := p.describer.DescribePhoto(ctx, image, exifHint(ph))
	if err != nil {
		log.Warn("photo description failed", zap.Error(err))
	} else if err := p.photos.SaveDescription(ctx, ph.ID, desc); err != nil {
		return eris.Wrap(err, "saving description")
	}

	gpsLoc := p.gpsCandidate(ctx, ph, log)

	visionLoc, err := p.detector.DetectLocation(ctx, image)
	if err != nil {
		log.Warn("vision location detection failed", zap.Error(err))
		visionLoc = nil
	}

	if final := Reconcile(gpsLoc, visionLoc); final != nil {
		if err := p.photos.SaveLocation(ctx, ph.ID, *final); err != nil {
			return eris.Wrap(err, "saving location")
		}
	}
	return nil
}

// gpsCandidate reverse-geocodes the photo's EXIF coordinates when present.
// A geocoder miss or failure degrades to a bare-coordinates candidate; the
// fix itself is still trustworthy.
func (p *Pipeline) gpsCandidate(ctx context.Context, ph photo.Photo, log *zap.Logger) *photo.Location {
	if ph.Latitude == nil || ph.Longitude == nil {
		return nil
	}

	loc, err := p.geocoder.ReverseGeocode(ctx, *ph.Latitude, *ph.Longitude)
	if err != nil {
		log.Warn("reverse geocoding failed", zap.Error(err))
	}
	if loc != nil {
		return loc
	}
	return &photo.Location{
		Latitude:   *ph.Latitude,
		Longitude:  *ph.Longitude,
		Provenance: photo.ProvenanceExif,
		Confidence: 1.0,
	}
}

func exifHint(ph photo.Photo) string {
	hint := ""
	if ph.CapturedAt != nil {
		hint = "taken " + ph.CapturedAt.Format("2006-01-02 15:04")
	}
	if ph.Latitude != nil && ph.Longitude != nil {
		if hint != "" {
			hint += ", "
		}
		hint += fmt.Sprintf("near %.4f, %.4f", *ph.Latitude, *ph.Longitude)
	}
	return hint
}
