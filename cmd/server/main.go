package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/notmine/community-server/internal/api"
	"github.com/notmine/community-server/internal/config"
	"github.com/notmine/community-server/internal/repositories"
)

// @title notmine.com Community API
// @version 1.0
// @description Forum, session and profile API for the notmine.com community portal.
// @host localhost:8080
// @BasePath /
func main() {
	// Connect to database; without DB_URL the server still starts and
	// reports the unavailable state on every data route.
	repositories.ConnectDatabase()

	if err := repositories.InitAvatarStorage(config.Envs.Avatars); err != nil {
		log.Fatalf("Avatar storage init failed: %v", err)
	}

	const defaultPort = "8080"
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	mux := api.SetupRouter()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting community server on port: %s", port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", port, err)
	}
}
