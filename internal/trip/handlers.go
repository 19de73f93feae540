package trip

import (
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2"

	"github.com/philosophercode/travelback-sub000/internal/storage"
)

// Starter triggers background processing for a trip; it errors when a run is
// already in flight.
type Starter interface {
	Start(tripID string) error
}

func RegisterRoutes(r fiber.Router, svc *Service, runner Starter, store storage.Storage) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req Trip
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		created, err := svc.CreateTrip(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		trips, err := svc.ListTrips(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(trips)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		t, err := svc.GetTrip(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "trip not found")
		}
		return c.JSON(t)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		names, err := svc.DeleteTrip(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		for _, name := range names {
			if err := store.Delete(name); err != nil {
				zap.L().Warn("failed to delete stored photo", zap.String("name", name), zap.Error(err))
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/process", func(c *fiber.Ctx) error {
		id := c.Params("id")
		t, err := svc.GetTrip(c.Context(), id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "trip not found")
		}
		if t.Status == StatusPending || t.Status == StatusProcessing {
			return fiber.NewError(fiber.StatusConflict, "trip is already being processed")
		}
		if err := svc.SetStatus(c.Context(), id, StatusPending, ""); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if err := runner.Start(id); err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": id, "status": StatusPending})
	})

	r.Get("/:id/itineraries", func(c *fiber.Ctx) error {
		items, err := svc.Itineraries(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(items)
	})
}
