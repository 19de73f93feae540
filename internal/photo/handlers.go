package photo

import (
	"bytes"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/philosophercode/travelback-sub000/internal/storage"
)

func RegisterRoutes(r fiber.Router, svc *Service, store storage.Storage) {
	r.Post("/trips/:id/photos", func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "multipart form required")
		}
		files := form.File["photos"]
		if len(files) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "at least one photo required")
		}

		tripID := c.Params("id")
		created := make([]Photo, 0, len(files))
		for _, fh := range files {
			file, err := fh.Open()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}

			meta := ExtractMeta(bytes.NewReader(data))
			storedName, err := store.Save(bytes.NewReader(data), fh.Filename)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}

			contentType := fh.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			p, err := svc.Create(c.Context(), Photo{
				TripID:       tripID,
				StoredName:   storedName,
				OriginalName: fh.Filename,
				ContentType:  contentType,
				SizeBytes:    fh.Size,
				CapturedAt:   meta.CapturedAt,
				Latitude:     meta.Latitude,
				Longitude:    meta.Longitude,
			})
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			created = append(created, p)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/trips/:id/photos", func(c *fiber.Ctx) error {
		photos, err := svc.ListByTrip(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(photos)
	})

	r.Get("/photos/:id/file", func(c *fiber.Ctx) error {
		p, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "photo not found")
		}
		file, err := store.Open(p.StoredName)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "photo file not found")
		}

		// fasthttp reads the stream after the handler returns and closes it
		// itself, so the file must not be closed here.
		c.Set(fiber.HeaderContentType, p.ContentType)
		return c.SendStream(file)
	})
}
