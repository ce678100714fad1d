/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/musiccompanion/apiserver/config"
	"github.com/musiccompanion/apiserver/internal/db"
	"github.com/musiccompanion/apiserver/internal/mq"
	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/internal/storage"
	"github.com/musiccompanion/apiserver/internal/store"
	"github.com/musiccompanion/apiserver/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Removes stored media of deleted songs and vocal recordings",
	Long: `Consumes song.deleted and vocal.deleted events and deletes the media
objects they reference once no other song or recording points at them.
Needs the database, MQ_BACKEND and STORAGE_BACKEND.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.MQ.Backend == config.MQBackendMemory {
			return errors.New("the memory bus only works inside the server process")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		bus, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if bus == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer func() { _ = bus.Close() }()

		objects, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		if objects == nil {
			return errors.New("STORAGE_BACKEND is not configured")
		}

		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()

		media := services.NewMediaService(objects).WithReferences(
			store.NewSongRepository(conn),
			store.NewVocalRecordingRepository(conn),
			store.NewRecordingRepository(conn),
		)

		log.Info("media cleanup worker started",
			zap.String("mq", cfg.MQ.Backend),
			zap.String("storage", cfg.Storage.Backend),
		)
		return worker.NewMediaCleaner(bus, media, log).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
