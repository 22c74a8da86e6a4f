package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"habit-tracker/internal/metrics"
	"habit-tracker/internal/model"
	"habit-tracker/internal/tracking"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	snapshots SnapshotLoader
	cal       tracking.Calendar
}

func NewReminderService(snapshots SnapshotLoader, cal tracking.Calendar) *ReminderService {
	return &ReminderService{snapshots: snapshots, cal: cal}
}

// DailySummary lists the trackers due today with their completion marks,
// followed by short statistics. HTML formatted.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	snap, err := s.snapshots.Load(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("build daily summary: %w", err)
	}

	done := tracking.NewCompletions(s.cal, snap.Records)
	res := tracking.VisibleCategories(s.cal, snap.Trackers, snap.Categories, done, tracking.Query{
		Date:   now,
		Now:    now,
		Filter: model.AllTrackers,
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Ежедневный отчёт</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.In(s.cal.Location()).Format("02.01.2006")))

	builder.WriteString("🔥 <b>Трекеры на сегодня</b>\n")
	if res.Visible == 0 {
		builder.WriteString("— на сегодня ничего не запланировано\n")
	} else {
		completed := 0
		for _, group := range res.Categories {
			builder.WriteString(fmt.Sprintf("\n<i>%s</i>\n", html.EscapeString(group.Title)))
			for _, t := range group.Trackers {
				isDone := done.IsCompleted(t.ID, now)
				if isDone {
					completed++
				}
				builder.WriteString(formatTracker(t, isDone, done.Count(t.ID)))
			}
		}
		builder.WriteString(fmt.Sprintf("\nВыполнено: %d из %d\n", completed, res.Visible))
	}

	if tracking.HasData(snap.Records) {
		stats := tracking.ComputeStatistics(s.cal, snap.Trackers, snap.Records)
		builder.WriteString("\n📊 <b>Статистика</b>\n")
		builder.WriteString(formatStatistics(stats))
	}

	return strings.TrimSpace(builder.String()), nil
}

// Deliver renders the summary of every user and hands it to send. A failure
// for one user does not stop the others; the number of delivered summaries is
// returned with the first error.
func (s *ReminderService) Deliver(ctx context.Context, users UserLister, now time.Time, send func(model.User, string) error) (int, error) {
	list, err := users.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	sent := 0
	var firstErr error
	for _, u := range list {
		text, err := s.DailySummary(ctx, u, now)
		if err == nil {
			err = send(u, text)
		}
		if err != nil {
			metrics.IncrementReport("failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("deliver summary to user %d: %w", u.ID, err)
			}
			continue
		}
		metrics.IncrementReport("success")
		sent++
	}
	return sent, firstErr
}

func formatTracker(t model.Tracker, done bool, count int) string {
	mark := "⬜"
	if done {
		mark = "✅"
	}
	return fmt.Sprintf("%s %s %s · %s\n", mark, t.Emoji, html.EscapeString(t.Title), FormatDays(count))
}

func formatStatistics(stats tracking.Statistics) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 Лучший период: %d\n", stats.BestStreak))
	sb.WriteString(fmt.Sprintf("🌟 Идеальные дни: %d\n", stats.PerfectDays))
	sb.WriteString(fmt.Sprintf("✔️ Трекеров завершено: %d\n", stats.TotalCompletions))
	sb.WriteString(fmt.Sprintf("📈 Среднее значение: %d\n", stats.AveragePerDay))
	return sb.String()
}

// FormatStatistics renders stats as HTML lines for chat messages.
func FormatStatistics(stats tracking.Statistics) string {
	return strings.TrimSpace(formatStatistics(stats))
}

// FormatDays renders a completion count with the Russian plural of "день".
func FormatDays(n int) string {
	mod100 := n % 100
	mod10 := n % 10
	switch {
	case mod100 >= 11 && mod100 <= 14:
		return fmt.Sprintf("%d дней", n)
	case mod10 == 1:
		return fmt.Sprintf("%d день", n)
	case mod10 >= 2 && mod10 <= 4:
		return fmt.Sprintf("%d дня", n)
	default:
		return fmt.Sprintf("%d дней", n)
	}
}
