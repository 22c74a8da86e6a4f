package service

import (
	"context"
	"fmt"

	"habit-tracker/internal/tracking"
)

// StatisticsService computes the statistics screen from one consistent read.
type StatisticsService struct {
	snapshots SnapshotLoader
	cal       tracking.Calendar
}

func NewStatisticsService(snapshots SnapshotLoader, cal tracking.Calendar) *StatisticsService {
	return &StatisticsService{snapshots: snapshots, cal: cal}
}

// Compute returns the statistics of userID and whether there is any data.
func (s *StatisticsService) Compute(ctx context.Context, userID uint) (tracking.Statistics, bool, error) {
	snap, err := s.snapshots.Load(ctx, userID)
	if err != nil {
		return tracking.Statistics{}, false, fmt.Errorf("compute statistics: %w", err)
	}
	if !tracking.HasData(snap.Records) {
		return tracking.Statistics{}, false, nil
	}
	return tracking.ComputeStatistics(s.cal, snap.Trackers, snap.Records), true, nil
}
