package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/BasavaMaasti/StudyHub/internal/auth"
	"github.com/BasavaMaasti/StudyHub/internal/cache"
	"github.com/BasavaMaasti/StudyHub/internal/config"
	"github.com/BasavaMaasti/StudyHub/internal/database"
	"github.com/BasavaMaasti/StudyHub/internal/genai"
	"github.com/BasavaMaasti/StudyHub/internal/handler"
	"github.com/BasavaMaasti/StudyHub/internal/interview"
	"github.com/BasavaMaasti/StudyHub/internal/logger"
	"github.com/BasavaMaasti/StudyHub/internal/payment"
	"github.com/BasavaMaasti/StudyHub/internal/repository"
)

type application struct {
	DB         *pgxpool.Pool
	Logger     *zap.Logger
	Config     *config.Config
	Repository *repository.Repository
	Handler    *handler.Handler
}

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, _ := logger.NewLogger(cfg.Env)
	defer log.Sync()
	sugar := log.Sugar()
	sugar.Infof("config loaded, env=%s", cfg.Env)

	pool, err := database.Connect(ctx, cfg.DB.DSN, cfg.DB.MaxConns, cfg.DB.MaxConnLifetime)
	if err != nil {
		sugar.Fatal(err)
	}
	defer pool.Close()

	rdb := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cache.Ping(ctx, rdb); err != nil {
		// Webhook dedup degrades gracefully without redis.
		sugar.Warnw("redis unavailable", "err", err)
	}

	repo := repository.NewRepository(pool)
	geminiClient := genai.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	stripeClient := payment.NewClient(cfg.Stripe.SecretKey)
	tokenMaker := auth.NewJWTMaker(cfg.JWT.Secret, cfg.JWT.TokenTTL)

	h := &handler.Handler{
		Logger:          log,
		Users:           repo,
		Courses:         repo,
		Interviews:      repo,
		Purchases:       repo,
		Questions:       &interview.QuestionSource{Gen: geminiClient, Logger: log},
		Evaluator:       interview.NewEvaluator(geminiClient, log),
		Payments:        stripeClient,
		Dedup:           cache.NewEventDedup(rdb, 24*time.Hour),
		TokenMaker:      tokenMaker,
		WebhookSecret:   cfg.Stripe.WebhookSecret,
		FrontendURL:     cfg.FrontendURL,
		Production:      cfg.IsProduction(),
		ReconcilePolicy: handler.DefaultReconcilePolicy(),
	}

	app := &application{
		DB:         pool,
		Logger:     log,
		Config:     cfg,
		Repository: repo,
		Handler:    h,
	}

	if err := app.serve(); err != nil {
		sugar.Fatal(err)
	}
}
