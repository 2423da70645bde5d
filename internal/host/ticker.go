// Package host drives the face the way a watch platform would: a minute
// tick, idle-to-ambient transitions and the backlight.
package host

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// MinuteTicker calls tick at the start of every wall-clock minute.
type MinuteTicker struct {
	scheduler *gocron.Scheduler
	tick      func()
	logger    Logger
}

func NewMinuteTicker(loc *time.Location, tick func(), logger Logger) *MinuteTicker {
	if loc == nil {
		loc = time.Local
	}
	return &MinuteTicker{
		scheduler: gocron.NewScheduler(loc),
		tick:      tick,
		logger:    logger,
	}
}

// Start schedules the tick job and starts the underlying scheduler.
func (m *MinuteTicker) Start() error {
	_, err := m.scheduler.Cron("* * * * *").Do(func() {
		if m.logger != nil {
			m.logger.Infof("host", "time tick")
		}
		m.tick()
	})
	if err != nil {
		return fmt.Errorf("schedule time tick: %w", err)
	}
	m.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future ticks.
func (m *MinuteTicker) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

// Jobs returns the number of scheduled jobs.
func (m *MinuteTicker) Jobs() int {
	return len(m.scheduler.Jobs())
}
