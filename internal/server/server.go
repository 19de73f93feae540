package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/philosophercode/travelback-sub000/internal/ai"
	"github.com/philosophercode/travelback-sub000/internal/config"
	"github.com/philosophercode/travelback-sub000/internal/geocode"
	"github.com/philosophercode/travelback-sub000/internal/photo"
	"github.com/philosophercode/travelback-sub000/internal/pipeline"
	"github.com/philosophercode/travelback-sub000/internal/storage"
	"github.com/philosophercode/travelback-sub000/internal/stream"
	"github.com/philosophercode/travelback-sub000/internal/trip"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Hub    *stream.Hub
	Runner *pipeline.Runner
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) (*Server, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.Env == "production",
		BodyLimit:             64 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	hub := stream.NewHub()
	tripSvc := trip.NewService(db)
	photoSvc := photo.NewService(db)
	aiClient := ai.NewClient(cfg)
	geocoder := geocode.NewCachedGeocoder(geocode.NewNominatimClient(cfg.GeocodeBaseURL), redisClient)

	pipe := pipeline.New(tripSvc, photoSvc, store, aiClient, aiClient, geocoder, aiClient, hub, cfg.PhotoConcurrency)
	runner := pipeline.NewRunner(pipe)

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Hub:    hub,
		Runner: runner,
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	trip.RegisterRoutes(api.Group("/trips"), tripSvc, runner, store)
	photo.RegisterRoutes(api, photoSvc, store)
	stream.RegisterRoutes(app, hub, func(ctx context.Context, tripID string) (string, error) {
		t, err := tripSvc.GetTrip(ctx, tripID)
		return t.Status, err
	})

	return s, nil
}
