package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"habit-tracker/internal/repository"
	"habit-tracker/internal/service"
)

func newStatsCmd(configPath *string) *cobra.Command {
	var telegramID int64

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print completion statistics of one user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, *configPath, telegramID)
		},
	}
	cmd.Flags().Int64Var(&telegramID, "telegram-id", 0, "Telegram user id")
	_ = cmd.MarkFlagRequired("telegram-id")
	return cmd
}

func runStats(cmd *cobra.Command, configPath string, telegramID int64) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.users.FindByTelegramID(ctx, telegramID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("no user with telegram id %d", telegramID)
	}
	if err != nil {
		return err
	}

	stats, ok, err := a.stats.Compute(ctx, user.ID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "Нет отметок для статистики.")
		return nil
	}
	fmt.Fprintln(out, service.FormatStatistics(stats))
	return nil
}
