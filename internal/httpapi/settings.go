package httpapi

import (
	"context"

	"habit-tracker/internal/service"
)

// readOnlySettings lets request parameters override the stored filter
// without persisting them.
type readOnlySettings struct {
	service.SettingsStore
}

func (readOnlySettings) Set(context.Context, uint, string, string) error {
	return nil
}
