// tracker-service
//
// Job application tracker. Exposes a REST API (and optionally gRPC) for:
//   - job records: list, create, partial update, delete
//   - table, board and stats views with OA / interview deadline badges
//   - upcoming reminders inside each job's reminder window
//
// Publishes EVENT_JOB_* and EVENT_STATUS_CHANGED to Redis when configured.
package main

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"jobtracker/tracker-service/internal/cli"
)

const version = "1.0.0"

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	if err := cli.NewRootCommand(version).Execute(); err != nil {
		log.WithError(err).Error("tracker-service")
		os.Exit(1)
	}
}
