package jobs

import (
	"rentiva-backend/internal/config"
	"rentiva-backend/internal/logger"
	"rentiva-backend/internal/repository"
	"rentiva-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	txm    repository.TxManager
	orders service.OrderService
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(txm repository.TxManager, orders service.OrderService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		txm:    txm,
		orders: orders,
		config: cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
