package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bizfish/tag-a-meal-app/cmd/config"
	migration "github.com/bizfish/tag-a-meal-app/cmd/database/migrate"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.ConnectDB()
		if err != nil {
			return err
		}
		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := migration.Migrate(db); err != nil {
				return err
			}
		}

		app, err := config.NewApp(db)
		if err != nil {
			return err
		}

		go func() {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit
			log.Info("shutting down")
			if err := app.Shutdown(); err != nil {
				log.Errorf("shutdown: %v", err)
			}
		}()

		return app.Listen(fmt.Sprintf(":%s", utils.GetConfig("APP_PORT")))
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "run database migrations before serving")
}
