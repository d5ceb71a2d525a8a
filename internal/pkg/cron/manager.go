package cron

import (
	"Lazo/internal/api/config"
	"Lazo/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine           *cron.Cron
	cronSpec         string
	counterRepairJob *job.CounterRepairJob
}

func NewCronManager(cfg *config.Config, counterRepairJob *job.CounterRepairJob) *Manager {
	return &Manager{
		engine:           cron.New(),
		cronSpec:         cfg.Repair.CronSpec,
		counterRepairJob: counterRepairJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.cronSpec, s.counterRepairJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
