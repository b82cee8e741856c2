package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"leadrouter/internal/config"
	"leadrouter/internal/jobs"
	"leadrouter/internal/leads"
	"leadrouter/internal/metrics"
	"leadrouter/internal/store"
)

type Server struct {
	app    *fiber.App
	config *config.Config
	redis  *redis.Client
	logger *slog.Logger
}

// NewServer wires the lead intake, queue management, health and metrics
// endpoints. The queue, store and validator are shared with the worker.
func NewServer(cfg *config.Config, queue *jobs.Queue, st store.LeadStore, validator *leads.Validator, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	// Inject shared components into context for handlers
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("queue", queue)
		c.Locals("store", st)
		c.Locals("validator", validator)
		return c.Next()
	})

	// Request logging + metrics middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)
		c.Set("X-Request-Id", reqID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()

		metrics.RecordRequest(method, path, status, latency.Milliseconds())

		if logger != nil {
			attrs := []any{
				"request_id", reqID,
				"method", method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			}
			if taskID := c.Locals("task_id"); taskID != nil {
				attrs = append(attrs, "task_id", taskID)
			}
			logger.Info("request", attrs...)
		}

		return err
	})

	// Redis client for rate limiting and health checks
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		if opt, err := redis.ParseURL(cfg.Redis.URL); err == nil {
			rdb = redis.NewClient(opt)
		} else if logger != nil {
			logger.Warn("redis_url_invalid", "error", err)
		}
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if c.Query("deep") != "true" {
			return c.JSON(fiber.Map{"status": "ok", "queueDepth": queue.Len()})
		}

		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		storeStatus := "ok"
		if err := st.Ping(ctx); err != nil {
			storeStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = "error"
			} else {
				redisStatus = "ok"
			}
		}

		status := "ok"
		if storeStatus != "ok" || redisStatus == "error" {
			status = "error"
		}

		return c.JSON(fiber.Map{
			"status":     status,
			"store":      storeStatus,
			"redis":      redisStatus,
			"queueDepth": queue.Len(),
		})
	})

	// Prometheus-style metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Type("text/plain")
		return c.SendString(metrics.Export(queue.Len()))
	})

	authMw := authMiddleware(cfg)
	var rateMw fiber.Handler
	if rdb != nil {
		rateMw = rateLimitMiddleware(cfg, rdb)
	} else {
		rateMw = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api", authMw)
	registerAPIRoutes(api, rateMw)

	return &Server{
		app:    app,
		config: cfg,
		redis:  rdb,
		logger: logger,
	}
}

func registerAPIRoutes(group fiber.Router, rateMw fiber.Handler) {
	group.Post("/leads", rateMw, enqueueLeadHandler)
	group.Get("/leads", listLeadsHandler)
	group.Post("/leadsqueue/cancel", cancelTaskHandler)
	group.Get("/leadsqueue/status", taskStatusHandler)
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	if s.redis != nil {
		_ = s.redis.Close()
	}
	return err
}
