package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"csvdesk/internal/config"
)

// HealthService reports the liveness of the application and its
// dependencies.
type HealthService struct {
	cfg       *config.Config
	mailer    Mailer
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health check response body.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Runtime   map[string]any           `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth describes one dependency.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service.
func NewHealthService(cfg *config.Config, mailer Mailer, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		cfg:       cfg,
		mailer:    mailer,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check inspects the upload directory and the mail configuration and
// returns the aggregate status. A missing mail configuration degrades the
// status rather than failing it; uploads still work without it.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   config.AppVersion,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Runtime: map[string]any{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Services: map[string]ServiceHealth{},
	}

	status.Services["upload_dir"] = s.checkUploadDir()
	status.Services["mail"] = s.checkMail()

	for _, svc := range status.Services {
		switch svc.Status {
		case "unhealthy":
			status.Status = "unhealthy"
		case "degraded":
			if status.Status == "healthy" {
				status.Status = "degraded"
			}
		}
	}
	return status
}

func (s *HealthService) checkUploadDir() ServiceHealth {
	info, err := os.Stat(s.cfg.Upload.Dir)
	if err != nil {
		return ServiceHealth{Status: "unhealthy", Message: "upload directory not accessible: " + err.Error()}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "unhealthy", Message: "upload path is not a directory"}
	}
	return ServiceHealth{Status: "healthy"}
}

func (s *HealthService) checkMail() ServiceHealth {
	if s.mailer == nil || !s.mailer.Configured() {
		return ServiceHealth{Status: "degraded", Message: "mail transport not configured"}
	}
	return ServiceHealth{Status: "healthy"}
}
