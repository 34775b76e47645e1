package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/app"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/auth"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/config"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/infra/memory"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/infra/postgres"
	redisinfra "github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/infra/redis"
	transport "github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// services is the wired application: authoring and scoring share one quiz cache.
type services struct {
	authoring *app.AuthoringService
	scoring   *app.ScoringService
	limiter   transport.Limiter
	closers   []func() error
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	if cfg.Admin.JWTSecret == "" {
		log.Warn().Msg("admin secret not configured, authoring routes are disabled")
	}

	writeTimeout := config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second)
	router := transport.NewRouter(
		transport.NewHandler(svc.scoring, svc.authoring),
		transport.RouterOptions{
			Limiter:           svc.limiter,
			AllowedOrigins:    cfg.CORS.AllowedOrigins,
			Timeout:           writeTimeout,
			Admin:             auth.NewService(cfg.Admin.JWTSecret),
			TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		},
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildServices picks Postgres or the in-memory store for persistence and Redis or a
// process-local cache for quizzes and throttling, depending on what is configured.
func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	svc := &services{}

	var (
		store       app.QuizStore
		submissions app.SubmissionStore
		loader      memory.QuizLoader
		seedSample  bool
	)
	if cfg.Postgres.URL != "" {
		db := openPostgres(cfg)
		svc.closers = append(svc.closers, db.Close)
		if err := migrateDB(ctx, db); err != nil {
			svc.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.closers = append(svc.closers, func() error { pool.Close(); return nil })

		pg := postgres.NewStore(db)
		store, submissions, loader = pg, pg, postgres.NewQuizLoader(pool)
	} else {
		log.Warn().Msg("postgres not configured, using in-memory store")
		mem := memory.NewStore()
		store, submissions, loader = mem, mem, mem
		seedSample = true
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.closers = append(svc.closers, redisClient.Close)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			svc.Close()
			return nil, err
		}
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizzes app.QuizRepository
	if redisClient != nil {
		quizzes = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizzes = memory.NewQuizRepository(loader, quizTTL)
	}

	if cfg.Throttle.Limit > 0 {
		window := config.TTLDuration(cfg.Throttle.Window, time.Hour)
		if redisClient != nil {
			svc.limiter = redisinfra.NewLimiter(redisClient, cfg.Throttle.Limit, window)
		} else {
			svc.limiter = memory.NewLimiter(cfg.Throttle.Limit, window)
		}
	}

	svc.authoring = app.NewAuthoringService(store, quizzes)
	svc.scoring = app.NewScoringService(quizzes, submissions)

	if seedSample {
		if _, err := svc.authoring.ImportQuiz(ctx, sampleQuiz()); err != nil {
			svc.Close()
			return nil, err
		}
	}
	return svc, nil
}

// sampleQuiz gives the in-memory mode something to serve.
func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		Title: "Capitals",
		Questions: []domain.Question{
			{
				Text:  "Capital of France?",
				Type:  domain.QuestionMCQ,
				Order: 1,
				Choices: []domain.Choice{
					{Text: "Paris", IsCorrect: true},
					{Text: "Lyon"},
					{Text: "Marseille"},
				},
			},
			{
				Text:  "Canberra is the capital of Australia.",
				Type:  domain.QuestionTrueFalse,
				Order: 2,
				Choices: []domain.Choice{
					{Text: "True", IsCorrect: true},
					{Text: "False"},
				},
			},
			{
				Text:  "Name a city you would like to visit.",
				Type:  domain.QuestionText,
				Order: 3,
			},
		},
	}
}
