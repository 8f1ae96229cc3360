package commands

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/studyhub-dev/studyhub/db"
	"github.com/studyhub-dev/studyhub/internal/auth"
	"github.com/studyhub-dev/studyhub/internal/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Run: func(cmd *cobra.Command, args []string) {
		loadEnv()

		if err := auth.InitJWTSecret(); err != nil {
			log.Fatalf("Failed to initialize JWT secret: %v", err)
		}

		if err := connectDB(); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		if err := db.MigrateDatabase(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		if err := db.SeedLookups(); err != nil {
			log.Fatalf("Failed to seed lookup data: %v", err)
		}

		r := router.NewRouter()

		var port string

		if port = os.Getenv("PORT"); port == "" {
			port = "3000"
			log.Println("PORT not set, defaulting to 3000")
		}

		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}
