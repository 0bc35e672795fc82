// Package stubserver is a development backend implementing the three
// HTTP contracts the client consumes: login, register, and shorten.
// It exists so the client can be exercised end to end without the
// production deployment; do not expose it publicly.
package stubserver

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"qlink-client/config"
)

// Server wires the stub handlers to redis-backed storage.
type Server struct {
	rdb       *redis.Client
	cfg       config.StubConfig
	router    *mux.Router
	opTimeout time.Duration
	tokenTTL  time.Duration
}

// New builds the stub backend around an existing redis client.
func New(cfg config.StubConfig, redisCfg config.RedisConfig, rdb *redis.Client) *Server {
	s := &Server{
		rdb:       rdb,
		cfg:       cfg,
		opTimeout: time.Duration(redisCfg.OperationTimeout) * time.Second,
		tokenTTL:  time.Duration(cfg.TokenTTLHours) * time.Hour,
	}
	if s.opTimeout <= 0 {
		s.opTimeout = 5 * time.Second
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = 24 * time.Hour
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/api/shorten", s.handleShorten).Methods("POST")
	r.HandleFunc("/{slug:[a-zA-Z0-9_]+}", s.handleRedirect).Methods("GET")
	s.router = r

	return s
}

// Router returns the HTTP handler for mounting or serving.
func (s *Server) Router() *mux.Router {
	return s.router
}

// NewRedis connects to redis for the stub backend's storage.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Info().Str("address", cfg.Address).Msg("Connected to Redis")
	return rdb, nil
}
