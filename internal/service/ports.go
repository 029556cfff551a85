package service

import (
	"context"
	"time"

	"affordability-assessment/internal/repository"
)

type AssessmentRepository interface {
	Create(ctx context.Context, rec repository.AssessmentRecord) error
	Update(ctx context.Context, rec repository.AssessmentRecord) error
	Get(ctx context.Context, userID int64, id string) (*repository.AssessmentRecord, error)
	List(ctx context.Context, userID int64) ([]repository.AssessmentRecord, error)
	Delete(ctx context.Context, userID int64, id string) error
}

// Cache is the subset of clients.RedisClient the services rely on.
type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...any) error
	SRem(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

type AssessmentNotifier interface {
	NotifyAssessmentUpdated(ctx context.Context, userID int64, assessmentID string, summary any) error
}

type ReportNotifier interface {
	NotifyReportProgress(ctx context.Context, userID int64, reportID string, progress float64, stage string) error
	NotifyReportComplete(ctx context.Context, userID int64, reportID, url, filename string) error
	NotifyReportFailed(ctx context.Context, userID int64, reportID, errMsg string) error
}
