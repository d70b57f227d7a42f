package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"next_read/config"
	"next_read/logger"
)

// LeadRetention is what the retention task needs from the lead log.
type LeadRetention interface {
	PurgeLeadsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStatus(ctx context.Context, since time.Time) (map[string]int, error)
}

// 任务类型
type TaskType int

const (
	TaskLeadRetention TaskType = iota
)

// 任务状态
type TaskStatus struct {
	LastRun     time.Time
	NextRun     time.Time
	IsRunning   bool
	Description string
	LastError   string
}

// 任务调度器
type Scheduler struct {
	cfg     *config.Config
	cron    *cron.Cron
	leads   LeadRetention
	tasks   map[TaskType]*TaskStatus
	entries map[TaskType]cron.EntryID
	mutex   sync.Mutex
	now     func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

// 创建新的调度器，leads 为 nil 时不注册线索清理任务
func NewScheduler(cfg *config.Config, leads LeadRetention) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:     cfg,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		leads:   leads,
		tasks:   make(map[TaskType]*TaskStatus),
		entries: make(map[TaskType]cron.EntryID),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start registers the configured tasks and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.leads == nil || s.cfg.Retention.LeadDays <= 0 {
		logger.Info("线索清理任务未启用", "lead_days", s.cfg.Retention.LeadDays, "database", s.leads != nil)
		return nil
	}

	spec := s.cfg.Retention.Cron
	id, err := s.cron.AddFunc(spec, func() {
		if err := s.RunNow(TaskLeadRetention); err != nil {
			logger.Error("线索清理任务执行错误", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retention cron %q: %w", spec, err)
	}

	s.mutex.Lock()
	s.entries[TaskLeadRetention] = id
	s.tasks[TaskLeadRetention] = &TaskStatus{
		Description: fmt.Sprintf("清理 %d 天前的线索记录 (%s UTC)", s.cfg.Retention.LeadDays, spec),
	}
	s.mutex.Unlock()

	s.cron.Start()
	logger.Info("调度器已启动", "task_count", len(s.cron.Entries()), "retention_cron", spec)
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	logger.Info("调度器已停止")
}

// Status returns a copy of every task's status.
func (s *Scheduler) Status() map[TaskType]TaskStatus {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make(map[TaskType]TaskStatus, len(s.tasks))
	for t, st := range s.tasks {
		cp := *st
		if id, ok := s.entries[t]; ok {
			cp.NextRun = s.cron.Entry(id).Next
		}
		out[t] = cp
	}
	return out
}

// RunNow runs a task synchronously. A task that is already running is skipped.
func (s *Scheduler) RunNow(taskType TaskType) error {
	s.mutex.Lock()
	status, ok := s.tasks[taskType]
	if !ok {
		status = &TaskStatus{Description: "manual run"}
		s.tasks[taskType] = status
	}
	if status.IsRunning {
		s.mutex.Unlock()
		logger.Warn("任务仍在运行，跳过本次执行", "task", status.Description)
		return nil
	}
	status.IsRunning = true
	s.mutex.Unlock()

	start := s.now()
	var err error
	switch taskType {
	case TaskLeadRetention:
		err = s.purgeLeads(start)
	default:
		err = fmt.Errorf("unknown task %d", taskType)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	status.IsRunning = false
	status.LastRun = start
	status.LastError = ""
	if err != nil {
		status.LastError = err.Error()
	}
	logger.Info("任务执行完成", "task", status.Description, "cost", time.Since(start).String(), "ok", err == nil)
	return err
}

func (s *Scheduler) purgeLeads(now time.Time) error {
	if s.leads == nil {
		return fmt.Errorf("lead log is not configured")
	}
	ctx, cancel := context.WithTimeout(s.ctx, time.Minute)
	defer cancel()

	cutoff := now.AddDate(0, 0, -s.cfg.Retention.LeadDays)
	removed, err := s.leads.PurgeLeadsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	counts, err := s.leads.CountByStatus(ctx, now.Add(-24*time.Hour))
	if err != nil {
		logger.Warn("统计线索投递失败", "error", err)
	}
	logger.Info("线索清理完成", "removed", removed, "cutoff", cutoff.Format(time.RFC3339), "last_24h", counts)
	return nil
}
