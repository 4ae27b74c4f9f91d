package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"drawparty/internal/config"
	"drawparty/internal/metrics"
	"drawparty/internal/presence"
	"drawparty/internal/routers"
	"drawparty/internal/session"
	"drawparty/internal/utils"
)

var listenAndServe = http.ListenAndServe

func main() {
	logger := utils.NewLogger()
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatalw("server exited", "error", err)
	}
}

func run(logger *zap.SugaredLogger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	var pres *presence.Publisher
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pres = presence.NewPublisher(logger, rdb)
		logger.Infow("presence mirror enabled", "redis", cfg.RedisAddr)
	}

	mgr := session.NewManager(logger, session.NewHub(), pres)
	r := newRouter(logger, mgr, cfg.CORSAllow)

	addr := ":" + cfg.Port
	logger.Infow("drawparty listening", "addr", addr)
	return listenAndServe(addr, r)
}

func newRouter(logger *zap.SugaredLogger, mgr *session.Manager, corsAllow []string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsAllow,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(metrics.Middleware)
	r.Mount("/", routers.New(logger, mgr))
	return r
}
