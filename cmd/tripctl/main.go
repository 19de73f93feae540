package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philosophercode/travelback-sub000/internal/ai"
	"github.com/philosophercode/travelback-sub000/internal/config"
	"github.com/philosophercode/travelback-sub000/internal/db"
	"github.com/philosophercode/travelback-sub000/internal/geocode"
	"github.com/philosophercode/travelback-sub000/internal/photo"
	"github.com/philosophercode/travelback-sub000/internal/pipeline"
	"github.com/philosophercode/travelback-sub000/internal/storage"
	"github.com/philosophercode/travelback-sub000/internal/stream"
	"github.com/philosophercode/travelback-sub000/internal/trip"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tripctl",
	Short: "Operator commands for trip processing",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger, err := zap.NewDevelopment()
		if err == nil {
			zap.ReplaceGlobals(logger)
		}
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(sweepCmd)
}

func connect(cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := db.ConnectPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := db.Migrate(context.Background(), pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return pool, nil
}

var processCmd = &cobra.Command{
	Use:   "process <trip-id>",
	Short: "Run the processing pipeline for a trip synchronously",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		pool, err := connect(cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		store, err := storage.NewLocalStorage(cfg.UploadDir)
		if err != nil {
			return err
		}

		rdb := db.ConnectRedis(cfg)
		if rdb != nil {
			defer rdb.Close()
		}

		tripSvc := trip.NewService(pool)
		photoSvc := photo.NewService(pool)
		aiClient := ai.NewClient(cfg)
		geocoder := geocode.NewCachedGeocoder(geocode.NewNominatimClient(cfg.GeocodeBaseURL), rdb)
		pipe := pipeline.New(tripSvc, photoSvc, store, aiClient, aiClient, geocoder, aiClient, stream.NewHub(), cfg.PhotoConcurrency)

		tripID := args[0]
		if err := tripSvc.SetStatus(cmd.Context(), tripID, trip.StatusPending, ""); err != nil {
			return fmt.Errorf("marking trip pending: %w", err)
		}
		if err := pipe.Run(cmd.Context(), tripID); err != nil {
			return fmt.Errorf("processing trip %s: %w", tripID, err)
		}
		fmt.Printf("trip %s processed\n", tripID)
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Force-fail trips stuck in processing past the staleness window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		pool, err := connect(cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		window := time.Duration(cfg.StaleAfterMinutes) * time.Minute
		swept, err := trip.NewService(pool).SweepStale(cmd.Context(), window)
		if err != nil {
			return fmt.Errorf("sweeping stale trips: %w", err)
		}
		fmt.Printf("swept %d stale trips\n", swept)
		return nil
	},
}
