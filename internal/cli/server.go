package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quiz-session-service/internal/app"
	"quiz-session-service/internal/auth"
	"quiz-session-service/internal/config"
	"quiz-session-service/internal/domain"
	"quiz-session-service/internal/infra/memory"
	pgstore "quiz-session-service/internal/infra/postgres"
	redisstore "quiz-session-service/internal/infra/redis"
	transport "quiz-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader
	switch {
	case cfg.Quiz.CatalogFile != "":
		loader = memory.NewFileCatalogLoader(cfg.Quiz.CatalogFile)
	case pool != nil:
		loader = pgstore.NewCatalogLoader(pool)
	default:
		loader = memory.NewStaticCatalogLoader(sampleCatalogs())
	}

	catalogID := cfg.Quiz.ID
	if catalogID == "" {
		catalogID = "quiz-1"
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = redisstore.NewCatalogRepository(redisClient, loader, quizTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, quizTTL)
	}

	var credentials auth.CredentialSource
	switch {
	case cfg.Users.File != "":
		creds, err := memory.LoadCredentialFile(cfg.Users.File)
		if err != nil {
			return err
		}
		credentials = memory.NewStaticCredentialSource(creds)
	case pool != nil:
		credentials = pgstore.NewCredentialSource(pool)
	default:
		credentials = memory.NewStaticCredentialSource(sampleCredentials())
	}

	var results app.ResultStore
	switch {
	case pool != nil:
		results = pgstore.NewResultStore(pool)
	case redisClient != nil:
		results = redisstore.NewResultStore(redisClient, redisTTL)
	default:
		results = memory.NewResultStore()
	}

	service := app.NewSessionService(credentials, catalogs, results, catalogID, cfg.Quiz.SecondsPerQuestion)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz session service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalogs provides minimal demo content for running without any
// backing store; production deployments configure a catalog file or
// Postgres instead.
func sampleCatalogs() map[string]domain.Catalog {
	return map[string]domain.Catalog{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "General Knowledge",
			Sections: []domain.Section{
				{
					Title: "Arithmetic",
					Questions: []domain.Question{
						{ID: "q1", Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, Answer: 1},
						{ID: "q2", Text: "What is 9 - 3?", Options: []string{"6", "7"}, Answer: 0},
					},
				},
				{
					Title: "Geography",
					Questions: []domain.Question{
						{ID: "q3", Text: "Capital of France?", Options: []string{"Paris", "Rome", "Madrid"}, Answer: 0},
					},
				},
			},
		},
	}
}

func sampleCredentials() map[string]string {
	return map[string]string{
		"JCV001": auth.HashPassword("Pass@01"),
		"JCV002": auth.HashPassword("Abc@12"),
	}
}
