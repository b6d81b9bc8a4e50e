package worker

import (
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/worker/handlers"
	"backend/internal/worker/tasks"
)

// Server wraps the asynq consumer. It shares the Redis instance with the
// queue client and processes the billing queue ahead of default work.
type Server struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewServer(cfg *config.Config, h *handlers.Handlers, logger *zap.Logger) *Server {
	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"billing": 3,
				"default": 1,
			},
			Logger: &asynqZapLogger{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendInvoice, h.HandleSendInvoice)
	mux.HandleFunc(tasks.TypeLeadFollowUp, h.HandleLeadFollowUp)

	return &Server{srv: srv, mux: mux, logger: logger}
}

// Start runs the consumer loop in a background goroutine.
func (s *Server) Start() error {
	return s.srv.Start(s.mux)
}

// Shutdown waits for in-flight tasks to finish.
func (s *Server) Shutdown() {
	s.srv.Shutdown()
}

// asynqZapLogger adapts zap to asynq's logging interface.
type asynqZapLogger struct {
	logger *zap.Logger
}

func (l *asynqZapLogger) Debug(args ...interface{}) { l.logger.Sugar().Debug(args...) }
func (l *asynqZapLogger) Info(args ...interface{})  { l.logger.Sugar().Info(args...) }
func (l *asynqZapLogger) Warn(args ...interface{})  { l.logger.Sugar().Warn(args...) }
func (l *asynqZapLogger) Error(args ...interface{}) { l.logger.Sugar().Error(args...) }
func (l *asynqZapLogger) Fatal(args ...interface{}) { l.logger.Sugar().Fatal(args...) }
