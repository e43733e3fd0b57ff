package scheduler

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Config describes when triggers fire.
type Config struct {
	Timezone string
	Logger   *zap.Logger
}

// Scheduler fires registered triggers on cron specs. Triggers must return quickly;
// long work belongs on a jobs.Queue.
type Scheduler struct {
	mu      sync.Mutex
	parser  cron.Parser
	loc     *time.Location
	logger  *zap.Logger
	c       *cron.Cron
	entries map[string]cron.EntryID
	started bool
}

// New builds a scheduler. An unknown timezone falls back to UTC with a warning.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := time.UTC
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			logger.Warn("invalid scheduler timezone, using UTC", zap.String("tz", tz), zap.Error(err))
		} else {
			loc = l
		}
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		parser:  parser,
		loc:     loc,
		logger:  logger,
		c:       cron.New(cron.WithParser(parser), cron.WithLocation(loc)),
		entries: make(map[string]cron.EntryID),
	}
}

// Validate reports whether spec parses.
func (s *Scheduler) Validate(spec string) error {
	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Add registers fn under name, replacing any trigger with the same name.
func (s *Scheduler) Add(name, spec string, fn func()) error {
	if err := s.Validate(spec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[name]; ok {
		s.c.Remove(id)
	}
	id, err := s.c.AddFunc(spec, func() {
		s.logger.Info("trigger fired", zap.String("trigger", name))
		fn()
	})
	if err != nil {
		return fmt.Errorf("register trigger %s: %w", name, err)
	}
	s.entries[name] = id
	return nil
}

// Next returns the next fire time of name in the scheduler timezone, or zero when unknown.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}
	entry := s.c.Entry(id)
	if entry.Schedule == nil {
		return time.Time{}
	}
	return entry.Schedule.Next(time.Now().In(s.loc))
}

// Start begins firing triggers.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.c.Start()
	s.started = true
	s.logger.Info("scheduler started", zap.String("tz", s.loc.String()), zap.Int("triggers", len(s.entries)))
}

// Stop halts the cron loop and waits for running triggers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()
	<-s.c.Stop().Done()
	s.logger.Info("scheduler stopped")
}
