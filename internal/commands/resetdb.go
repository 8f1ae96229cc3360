package commands

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/studyhub-dev/studyhub/db"
)

var resetDBCmd = &cobra.Command{
	Use:   "resetdb",
	Short: "Drop all tables, re-migrate and reseed lookup data",
	Run: func(cmd *cobra.Command, args []string) {
		loadEnv()

		if err := connectDB(); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		if err := db.ResetDatabase(); err != nil {
			log.Fatalf("Failed to reset database: %v", err)
		}

		log.Println("Database reset and seeded successfully")
	},
}
