package photo

import (
	"io"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Meta holds the EXIF fields extracted at upload time.
type Meta struct {
	CapturedAt *time.Time
	Latitude   *float64
	Longitude  *float64
}

// ExtractMeta reads capture time and GPS coordinates from the image's EXIF
// block. Images without EXIF (or without the relevant tags) yield an empty
// Meta with no error.
func ExtractMeta(r io.Reader) Meta {
	var meta Meta

	x, err := exif.Decode(r)
	if err != nil {
		return meta
	}

	if tm, err := x.DateTime(); err == nil {
		meta.CapturedAt = &tm
	}
	if lat, lon, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &lon
	}
	return meta
}
