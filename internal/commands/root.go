package commands

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/studyhub-dev/studyhub/db"
)

var rootCmd = &cobra.Command{
	Use:   "studyhub",
	Short: "Collaborative study organizer API",
	Long:  "Studyhub is a multi-user study organizer: subjects, shared task lists, study-session logs and discussion feeds behind a JSON API.",
}

// connectDB opens postgres when DATABASE_URL is set, otherwise an
// embedded sqlite file for local runs.
func connectDB() error {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return db.ConnectDatabase(dsn)
	}

	path := os.Getenv("SQLITE_PATH")

	if path == "" {
		path = "studyhub.db"
	}

	return db.ConnectSQLite(path)
}

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetDBCmd)
}
