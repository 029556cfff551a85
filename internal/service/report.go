package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"affordability-assessment/internal/clients"
	"affordability-assessment/internal/logger"
	"affordability-assessment/pkg/cache/redis"
)

const (
	reportSetKey    = "report_ids"
	reportKeyPrefix = "reports:"
	reportTTL       = 20 * time.Minute
	reportLinkTTL   = 48 * time.Hour
)

// ReportStatus is the progress record kept in redis while a report is built and
// for a while after it is ready.
type ReportStatus struct {
	Key          string    `json:"key"`
	AssessmentID string    `json:"assessment_id"`
	BrokerRef    string    `json:"broker_ref"`
	UserID       int64     `json:"user_id"`
	Progress     float64   `json:"progress"`
	FileURL      *string   `json:"file_url"`
	FileName     string    `json:"file_name,omitempty"`
	Error        *string   `json:"error,omitempty"`
	Created      time.Time `json:"created_at"`
}

// ReportStore persists a finished workbook and returns a link to it.
type ReportStore interface {
	Put(ctx context.Context, fileName string, data []byte) (string, error)
}

type s3ReportStore struct {
	s3 *clients.S3Client
}

// NewS3ReportStore serves reports through presigned links.
func NewS3ReportStore(s3 *clients.S3Client) ReportStore {
	return &s3ReportStore{s3: s3}
}

func (s *s3ReportStore) Put(ctx context.Context, fileName string, data []byte) (string, error) {
	key, err := s.s3.UploadXLSX(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return s.s3.GetTemporaryURL(ctx, key, reportLinkTTL)
}

type localReportStore struct {
	storage *clients.StorageClient
}

func NewLocalReportStore(storage *clients.StorageClient) ReportStore {
	return &localReportStore{storage: storage}
}

func (s *localReportStore) Put(ctx context.Context, fileName string, data []byte) (string, error) {
	stored, err := s.storage.Save(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return s.storage.GetURL(stored), nil
}

// SessionLoader is satisfied by *AssessmentService.
type SessionLoader interface {
	Get(ctx context.Context, userID int64, id string) (*Session, error)
}

type ReportService struct {
	sessions SessionLoader
	cache    Cache
	store    ReportStore
	notifier ReportNotifier

	wg  sync.WaitGroup
	now func() time.Time
}

func NewReportService(sessions SessionLoader, cache Cache, store ReportStore, notifier ReportNotifier) *ReportService {
	return &ReportService{
		sessions: sessions,
		cache:    cache,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// StartReport snapshots the assessment and builds its workbook in the background.
func (s *ReportService) StartReport(ctx context.Context, userID int64, assessmentID string) (string, error) {
	if s.cache == nil {
		return "", fmt.Errorf("report status store not configured")
	}

	sess, err := s.sessions.Get(ctx, userID, assessmentID)
	if err != nil {
		return "", err
	}

	status := &ReportStatus{
		Key:          reportKeyPrefix + uuid.NewString(),
		AssessmentID: sess.ID,
		BrokerRef:    sess.Assessment.BrokerRef,
		UserID:       userID,
		Created:      s.now().UTC(),
	}
	if err := s.saveStatus(ctx, status); err != nil {
		return "", err
	}
	if err := s.cache.SAdd(ctx, reportSetKey, status.Key); err != nil {
		if delErr := s.cache.Del(ctx, status.Key); delErr != nil {
			logger.Warnf("[REPORT] drop status %s: %v", status.Key, delErr)
		}
		return "", fmt.Errorf("register report: %w", err)
	}

	logger.Infof("[REPORT] %s started for assessment %s (user %d)", status.Key, sess.ID, userID)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(context.Background(), status, sess)
	}()

	return status.Key, nil
}

// Wait blocks until every running report has finished.
func (s *ReportService) Wait() {
	s.wg.Wait()
}

func (s *ReportService) run(ctx context.Context, status *ReportStatus, sess *Session) {
	progress := func(p float64, stage string) {
		status.Progress = p
		_ = s.saveStatus(ctx, status)
		if s.notifier != nil {
			_ = s.notifier.NotifyReportProgress(ctx, status.UserID, status.Key, p, stage)
		}
	}

	f, err := BuildWorkbook(sess, func(done, total int, sheet string) {
		progress(math.Round(float64(done)/float64(total)*90), strings.ToLower(sheet))
	})
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("build report failed: %v", err))
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("write report failed: %v", err))
		return
	}

	if s.store == nil {
		s.fail(ctx, status, "report storage not configured")
		return
	}

	progress(95, "uploading")

	fileName := reportFileName(sess, s.now())
	url, err := s.store.Put(ctx, fileName, buf.Bytes())
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("save report failed: %v", err))
		return
	}

	status.FileURL = &url
	status.FileName = fileName
	progress(100, "ready")
	if s.notifier != nil {
		_ = s.notifier.NotifyReportComplete(ctx, status.UserID, status.Key, url, fileName)
	}

	logger.Infof("[REPORT] %s ready: %s", status.Key, fileName)
}

func (s *ReportService) fail(ctx context.Context, status *ReportStatus, msg string) {
	logger.Errorf("[REPORT] %s: %s", status.Key, msg)

	status.Error = &msg
	status.Progress = 100
	_ = s.saveStatus(ctx, status)
	if s.notifier != nil {
		_ = s.notifier.NotifyReportFailed(ctx, status.UserID, status.Key, msg)
	}
}

func (s *ReportService) saveStatus(ctx context.Context, st *ReportStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode report status: %w", err)
	}
	if err := s.cache.Set(ctx, st.Key, string(data), reportTTL); err != nil {
		return fmt.Errorf("save report status: %w", err)
	}
	return nil
}

func (s *ReportService) loadStatus(ctx context.Context, key string) (*ReportStatus, error) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var st ReportStatus
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode report status: %w", err)
	}
	return &st, nil
}

// GetReports lists the user's reports, newest first. Keys whose status expired are
// dropped from the index on the way.
func (s *ReportService) GetReports(ctx context.Context, userID int64) ([]ReportStatus, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("report status store not configured")
	}

	keys, err := s.cache.SMembers(ctx, reportSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get report keys: %w", err)
	}

	out := make([]ReportStatus, 0, len(keys))
	for _, key := range keys {
		st, err := s.loadStatus(ctx, key)
		if err != nil {
			if redis.IsNil(err) {
				_ = s.cache.SRem(ctx, reportSetKey, key)
			}
			continue
		}
		if st.UserID == userID {
			out = append(out, *st)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Created.After(out[j].Created)
	})
	return out, nil
}

func (s *ReportService) GetReport(ctx context.Context, reportID string, userID int64) (*ReportStatus, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("report status store not configured")
	}
	if !strings.HasPrefix(reportID, reportKeyPrefix) {
		reportID = reportKeyPrefix + reportID
	}

	st, err := s.loadStatus(ctx, reportID)
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if st.UserID != userID {
		return nil, ErrReportNotFound
	}
	return st, nil
}

// PruneIndex drops report keys whose status has already expired and returns how many went.
func (s *ReportService) PruneIndex(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}

	keys, err := s.cache.SMembers(ctx, reportSetKey)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, key := range keys {
		if _, err := s.cache.Get(ctx, key); redis.IsNil(err) {
			if err := s.cache.SRem(ctx, reportSetKey, key); err == nil {
				pruned++
			}
		}
	}
	return pruned, nil
}

func reportFileName(sess *Session, at time.Time) string {
	ref := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(sess.Assessment.BrokerRef))
	if ref == "" {
		ref = sess.ID
	}
	return fmt.Sprintf("affordability_%s_%s.xlsx", ref, at.Format("20060102_150405"))
}
