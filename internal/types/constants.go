package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// AllowedOrigins is the CORS allowlist: the vite dev and preview
// servers of the studyhub client, extendable through CLIENT_URL and the
// comma-separated ALLOWED_ORIGINS.
var AllowedOrigins = initAllowedOrigins()

func initAllowedOrigins() []string {
	origins := []string{
		"http://localhost:5173",
		"http://localhost:4173",
	}

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
