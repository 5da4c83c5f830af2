package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/edusync/gateway/internal/api"
	"github.com/edusync/gateway/internal/backend"
	"github.com/edusync/gateway/internal/event"
	"github.com/edusync/gateway/internal/instructor"
	"github.com/edusync/gateway/internal/quiz"
	"github.com/edusync/gateway/internal/student"
	"github.com/edusync/gateway/internal/telemetry"
	"github.com/edusync/gateway/internal/tokens"
)

type Config struct {
	HTTP struct {
		Port int32
	}

	Backend struct {
		BaseURL string
		Timeout time.Duration
	}

	Redis struct {
		Tokens struct {
			Addrs  []string
			Pass   string
			Prefix string
			TTL    time.Duration
		}

		Pubsub struct {
			Addrs  []string
			Pass   string
			Prefix string
		}
	}
}

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis struct {
			tokens redis.UniversalClient
			pubsub redis.UniversalClient
		}

		backend *backend.Client
	}

	tokens   tokens.Store
	sessions *quiz.Registry

	service struct {
		student    *student.Service
		instructor *instructor.Service
	}

	http *http.Server
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	s.eb = event.NewBus()

	if err := s.initInfra(); err != nil {
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initInfra() error {
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	s.infra.backend = backend.NewClient(backend.Config{
		BaseURL: s.c.Backend.BaseURL,
		Timeout: s.c.Backend.Timeout,
	})

	return nil
}

func (s *Server) initRedis() error {
	connect := func(addrs []string, pass string) (redis.UniversalClient, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    addrs,
			Password: pass,
		})

		if err := telemetry.MonitorRedis(r); err != nil {
			return nil, err
		}

		if err := r.Ping(ctx).Err(); err != nil {
			return nil, err
		}

		return r, nil
	}

	var err error
	s.infra.redis.tokens, err = connect(s.c.Redis.Tokens.Addrs, s.c.Redis.Tokens.Pass)
	if err != nil {
		return fmt.Errorf("tokens: %w", err)
	}

	s.infra.redis.pubsub, err = connect(s.c.Redis.Pubsub.Addrs, s.c.Redis.Pubsub.Pass)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}

	return nil
}

func (s *Server) initService() {
	s.tokens = tokens.NewRedisStore(tokens.RedisConfig{
		Redis:  s.infra.redis.tokens,
		Prefix: s.c.Redis.Tokens.Prefix,
		TTL:    s.c.Redis.Tokens.TTL,
	})

	s.sessions = quiz.NewRegistry()

	s.service.student = student.NewService(student.Config{
		Backend:  s.infra.backend,
		Sessions: s.sessions,
		EventBus: s.eb,
	})

	s.service.instructor = instructor.NewService(instructor.Config{
		Backend: s.infra.backend,
	})
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery())

	api.New(api.Config{
		Router:       e,
		EventBus:     s.eb,
		Backend:      s.infra.backend,
		Tokens:       s.tokens,
		Student:      s.service.student,
		Instructor:   s.service.instructor,
		Redis:        s.infra.redis.pubsub,
		PubsubPrefix: s.c.Redis.Pubsub.Prefix,
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.eb.Stop()

	slog.InfoContext(ctx, "server: shutdown completed")
}
