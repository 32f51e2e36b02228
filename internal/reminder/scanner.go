// Package reminder periodically inspects the habit board and surfaces
// streak reminders to the user.
package reminder

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"lifeflow/internal/model"
	"lifeflow/internal/notify"
	"lifeflow/internal/syncer"
)

// Milestones are the streak lengths worth celebrating.
var Milestones = []int{7, 14, 30, 60, 100}

// IsMilestone reports whether a streak just reached a milestone.
func IsMilestone(streak int) bool {
	for _, m := range Milestones {
		if streak == m {
			return true
		}
	}
	return false
}

// MilestoneMessage builds the celebration toast for a habit that just hit a
// milestone streak.
func MilestoneMessage(title string, streak int) string {
	return fmt.Sprintf("%s reached a %d-day streak!", title, streak)
}

// Scanner walks the board on a schedule and raises habit reminders.
type Scanner struct {
	board    *syncer.Board
	toasts   *notify.Center
	logger   *zap.Logger
	tzOffset int
	sched    *Scheduler
}

func NewScanner(board *syncer.Board, toasts *notify.Center, tzOffsetMinutes int, logger *zap.Logger) *Scanner {
	return &Scanner{
		board:    board,
		toasts:   toasts,
		logger:   logger,
		tzOffset: tzOffsetMinutes,
		sched:    NewScheduler(time.UTC),
	}
}

// Start registers the daily nudge and the periodic at-risk scan.
func (s *Scanner) Start(dailyAt string, atRiskEvery time.Duration) error {
	if _, err := s.sched.ScheduleDaily(dailyAt, func() {
		s.ScanUnstarted(time.Now())
	}); err != nil {
		return err
	}
	if _, err := s.sched.ScheduleInterval(atRiskEvery, func() {
		s.ScanAtRisk(time.Now())
	}); err != nil {
		return err
	}
	s.sched.Start()
	s.logger.Info("Reminder scanner started",
		zap.String("daily_at", dailyAt),
		zap.Duration("at_risk_every", atRiskEvery),
	)
	return nil
}

func (s *Scanner) Stop() {
	s.sched.Stop()
}

// ScanAtRisk finds habits with a live streak that have not been checked in
// today. Returns the number of habits flagged.
func (s *Scanner) ScanAtRisk(now time.Time) int {
	today := model.LocalDate(now, s.tzOffset)

	atRisk := 0
	for _, task := range s.board.TasksSnapshot() {
		if !s.habitPendingToday(task, today) || task.CurrentStreak == 0 {
			continue
		}
		atRisk++
		s.logger.Info("Habit streak at risk",
			zap.String("task_id", task.ID),
			zap.String("title", task.Title),
			zap.Int("current_streak", task.CurrentStreak),
		)
	}

	if atRisk > 0 {
		s.toasts.Show(fmt.Sprintf("%d habit(s) at risk of losing their streak today", atRisk), notify.KindInfo)
	}
	return atRisk
}

// ScanUnstarted nudges habits that have no streak yet. Returns the number of
// habits nudged.
func (s *Scanner) ScanUnstarted(now time.Time) int {
	today := model.LocalDate(now, s.tzOffset)

	unstarted := 0
	for _, task := range s.board.TasksSnapshot() {
		if !s.habitPendingToday(task, today) || task.CurrentStreak != 0 {
			continue
		}
		unstarted++
		s.logger.Info("Habit not yet started today",
			zap.String("task_id", task.ID),
			zap.String("title", task.Title),
		)
	}

	if unstarted > 0 {
		s.toasts.Show(fmt.Sprintf("You have %d habit(s) waiting for their first check-in", unstarted), notify.KindInfo)
	}
	return unstarted
}

func (s *Scanner) habitPendingToday(task *model.TaskCard, today time.Time) bool {
	if !task.IsHabit || task.IsDeleted {
		return false
	}
	return task.LastCheckinDate == nil || !model.SameDay(*task.LastCheckinDate, today)
}
