package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"habit-tracker/internal/bot"
	"habit-tracker/internal/httpapi"
	"habit-tracker/internal/service"
)

func newBotCmd(configPath *string) *cobra.Command {
	var withHTTP bool

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and the report scheduler",
		Long:  "Polls Telegram for updates, sends the scheduled daily summaries and, with --http, serves the JSON API in the same process.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(*configPath, withHTTP)
		},
	}
	cmd.Flags().BoolVar(&withHTTP, "http", false, "also serve the JSON API")
	return cmd
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runBot(configPath string, withHTTP bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	telegramBot, err := bot.New(a.cfg.Telegram.Token, a.cfg.Telegram.Debug, bot.Services{
		Users:      a.users,
		Trackers:   a.trackers,
		Categories: a.categories,
		Stats:      a.stats,
		Reminders:  a.reminders,
		Board:      a.boardDeps(),
	}, a.cal, a.log)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	scheduler := service.NewSchedulerService(a.cal.Location(), a.log)
	sendReports := func() {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("send reports", zap.Error(err))
		}
	}
	if a.cfg.Report.DailyAt != "" {
		if _, err := scheduler.ScheduleDaily("daily-report", a.cfg.Report.DailyAt, sendReports); err != nil {
			return fmt.Errorf("schedule daily report: %w", err)
		}
	}
	if interval := a.cfg.ReportInterval(); interval > 0 {
		if _, err := scheduler.ScheduleInterval("interval-report", interval, sendReports); err != nil {
			return fmt.Errorf("schedule interval report: %w", err)
		}
	}
	if scheduler.Len() > 0 {
		scheduler.Start()
		defer scheduler.Stop()
	}

	if withHTTP {
		go func() {
			err := httpapi.Start(ctx, httpapi.StartOpts{Addr: a.cfg.HTTP.Addr, Deps: a.httpDeps()})
			if err != nil {
				a.log.Error("http api stopped", zap.Error(err))
				stop()
			}
		}()
	}

	a.log.Info("habit tracker bot started", zap.Int("scheduled_jobs", scheduler.Len()))
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped: %w", err)
	}
	a.log.Info("shutdown complete")
	return nil
}

func runServe(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	return httpapi.Start(ctx, httpapi.StartOpts{Addr: a.cfg.HTTP.Addr, Deps: a.httpDeps()})
}
