package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
	"github.com/nursabrinaas08/data-cleaning/pkg/contracts"
)

// SessionCounter reports on the open live sessions
type SessionCounter interface {
	ClientCount() int
	GetHubMetrics() map[string]interface{}
}

// HealthService provides health check functionality
type HealthService struct {
	sessions  SessionCounter
	cleaner   *CleaningService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth     `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Uptime  string                 `json:"uptime,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
	StatusDisabled = "disabled"
)

// NewHealthService creates a health service. sessions is nil when live
// sessions are disabled.
func NewHealthService(cleaner *CleaningService, sessions SessionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "health_service")

	logger.Info("HealthService initialized",
		slog.String("version", contracts.Version),
		slog.Bool("sessions_enabled", sessions != nil))

	return &HealthService{
		sessions:  sessions,
		cleaner:   cleaner,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"cleaning":  hs.checkCleaningHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if service.Status == StatusNotReady {
			status.Status = StatusNotReady
			break
		}
	}

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "ReadinessCheck: service not ready",
			slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status with runtime statistics
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	stats := infrastructure.ReadRuntimeStats(hs.startTime)
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime:   &stats,
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"stage":        info.Stage,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"api_version":  info.APIVersion,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkCleaningHealth() ServiceHealth {
	if hs.cleaner == nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: "cleaning service not initialized",
		}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: "Cleaning service is healthy",
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.sessions == nil {
		return ServiceHealth{
			Status:  StatusDisabled,
			Message: "Live sessions are disabled",
		}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: "WebSocket service is healthy",
		Uptime:  time.Since(hs.startTime).String(),
		Details: hs.sessions.GetHubMetrics(),
	}
}

// ActiveSessions returns the number of open live sessions
func (hs *HealthService) ActiveSessions() int {
	if hs.sessions == nil {
		return 0
	}
	return hs.sessions.ClientCount()
}
