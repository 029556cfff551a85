package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"affordability-assessment/internal/domain"
	"affordability-assessment/internal/logger"
	"affordability-assessment/internal/repository"
	"affordability-assessment/pkg/cache/redis"
)

const (
	sessionKeyPrefix  = "assessments:"
	defaultSessionTTL = 2 * time.Hour
)

// Session is an assessment as handed to clients: the editable aggregate plus the
// figures and validation messages derived from it at load time.
type Session struct {
	ID         string                  `json:"id"`
	UserID     int64                   `json:"user_id"`
	Assessment *domain.FullAssessment  `json:"assessment"`
	Summary    domain.Summary          `json:"summary"`
	Errors     domain.ValidationErrors `json:"errors"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	BrokerRef string    `json:"broker_ref"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// cachedSession is the redis representation of a stored assessment.
type cachedSession struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	BrokerRef string          `json:"broker_ref"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type AssessmentService struct {
	repo     AssessmentRepository
	cache    Cache
	notifier AssessmentNotifier
	ttl      time.Duration

	locksMu sync.Mutex
	locks   map[string]*editLock
	now     func() time.Time
}

// NewAssessmentService accepts a nil cache or notifier; the service then works
// straight against the repository.
func NewAssessmentService(repo AssessmentRepository, cache Cache, notifier AssessmentNotifier, ttl time.Duration) *AssessmentService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AssessmentService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		ttl:      ttl,
		locks:    map[string]*editLock{},
		now:      time.Now,
	}
}

// editLock serialises edits to one assessment. It is dropped from the map once nobody
// holds or waits for it.
type editLock struct {
	mu   sync.Mutex
	refs int
}

func (s *AssessmentService) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &editLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

func (s *AssessmentService) Create(ctx context.Context, userID int64, brokerRef string) (*Session, error) {
	a := domain.NewFullAssessment()
	a.BrokerRef = brokerRef

	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode assessment: %w", err)
	}

	now := s.now().UTC()
	rec := repository.AssessmentRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		BrokerRef: brokerRef,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.cacheRecord(ctx, rec)

	logger.WithFields(logrus.Fields{"assessment": rec.ID, "user": userID}).Info("[ASSESSMENT] created")

	return newSession(rec, a), nil
}

func (s *AssessmentService) Get(ctx context.Context, userID int64, id string) (*Session, error) {
	rec, a, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return newSession(*rec, a), nil
}

func (s *AssessmentService) List(ctx context.Context, userID int64) ([]SessionInfo, error) {
	recs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SessionInfo, 0, len(recs))
	for _, rec := range recs {
		out = append(out, SessionInfo{
			ID:        rec.ID,
			BrokerRef: rec.BrokerRef,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return out, nil
}

func (s *AssessmentService) Delete(ctx context.Context, userID int64, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssessmentNotFound
		}
		return err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, sessionKeyPrefix+id); err != nil {
			logger.Warnf("[ASSESSMENT] cache delete %s: %v", id, err)
		}
	}

	logger.WithFields(logrus.Fields{"assessment": id, "user": userID}).Info("[ASSESSMENT] deleted")
	return nil
}

// Update loads the assessment, applies fn and stores the result. Nothing is written when
// fn returns an error. Edits on one assessment are serialised.
func (s *AssessmentService) Update(ctx context.Context, userID int64, id string, fn func(*domain.FullAssessment) error) (*Session, error) {
	unlock := s.lock(id)
	defer unlock()

	rec, a, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := fn(a); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode assessment: %w", err)
	}
	rec.BrokerRef = a.BrokerRef
	rec.Payload = payload
	rec.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, *rec); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}
	s.cacheRecord(ctx, *rec)

	sess := newSession(*rec, a)
	if s.notifier != nil {
		if err := s.notifier.NotifyAssessmentUpdated(ctx, userID, id, sess.Summary); err != nil {
			logger.Warnf("[ASSESSMENT] notify %s: %v", id, err)
		}
	}
	return sess, nil
}

func (s *AssessmentService) SetBrokerRef(ctx context.Context, userID int64, id, brokerRef string) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		a.BrokerRef = brokerRef
		return nil
	})
}

func (s *AssessmentService) SetHousehold(ctx context.Context, userID int64, id string, h domain.Household) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		a.Household = h
		a.Household.Relabel()
		return nil
	})
}

func (s *AssessmentService) SetLoanDetails(ctx context.Context, userID int64, id string, ld domain.LoanDetails) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		a.LoanDetails = ld
		return nil
	})
}

// AddApplicant appends an applicant, optionally prefilled from input, and returns its id.
func (s *AssessmentService) AddApplicant(ctx context.Context, userID int64, id string, input *domain.Applicant) (*Session, int64, error) {
	var added int64
	sess, err := s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		ap := a.Applicants.AddApplicant()
		if ap == nil {
			return ErrApplicantLimit
		}
		if input != nil {
			applyApplicant(ap, *input)
		}
		added = ap.ID
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return sess, added, nil
}

func (s *AssessmentService) UpdateApplicant(ctx context.Context, userID int64, id string, applicantID int64, input domain.Applicant) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		ap := a.Applicants.FindApplicant(applicantID)
		if ap == nil {
			return ErrApplicantNotFound
		}
		applyApplicant(ap, input)
		return nil
	})
}

// RemoveApplicant also drops the unsecured credit items owned by the applicant.
func (s *AssessmentService) RemoveApplicant(ctx context.Context, userID int64, id string, applicantID int64) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		ap := a.Applicants.FindApplicant(applicantID)
		if ap == nil {
			return ErrApplicantNotFound
		}
		a.RemoveApplicant(ap)
		return nil
	})
}

func (s *AssessmentService) AddUnsecuredCredit(ctx context.Context, userID int64, id string, input *domain.UnsecuredCreditItem) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		if input != nil {
			if err := checkOwner(a, input.ApplicantID); err != nil {
				return err
			}
		}
		item := a.UnsecuredCredit.AddUnsecuredCredit()
		if input != nil {
			*item = *input
		}
		return nil
	})
}

func (s *AssessmentService) UpdateUnsecuredCredit(ctx context.Context, userID int64, id string, index int, input domain.UnsecuredCreditItem) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		item := a.UnsecuredCredit.At(index)
		if item == nil {
			return ErrCreditItemNotFound
		}
		if err := checkOwner(a, input.ApplicantID); err != nil {
			return err
		}
		*item = input
		return nil
	})
}

func (s *AssessmentService) RemoveUnsecuredCredit(ctx context.Context, userID int64, id string, index int) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		if a.UnsecuredCredit.At(index) == nil {
			return ErrCreditItemNotFound
		}
		a.UnsecuredCredit.RemoveUnsecuredCreditAt(index)
		return nil
	})
}

func (s *AssessmentService) AddSecuredCredit(ctx context.Context, userID int64, id string, input *domain.SecuredCreditItem) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		item := a.SecuredCredit.AddSecuredCredit()
		if input != nil {
			*item = *input
		}
		return nil
	})
}

func (s *AssessmentService) UpdateSecuredCredit(ctx context.Context, userID int64, id string, index int, input domain.SecuredCreditItem) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		item := a.SecuredCredit.At(index)
		if item == nil {
			return ErrCreditItemNotFound
		}
		*item = input
		return nil
	})
}

func (s *AssessmentService) RemoveSecuredCredit(ctx context.Context, userID int64, id string, index int) (*Session, error) {
	return s.Update(ctx, userID, id, func(a *domain.FullAssessment) error {
		if a.SecuredCredit.At(index) == nil {
			return ErrCreditItemNotFound
		}
		a.SecuredCredit.RemoveSecuredCreditAt(index)
		return nil
	})
}

// applyApplicant copies the editable fields; the id is owned by the collection.
func applyApplicant(dst *domain.Applicant, src domain.Applicant) {
	id := dst.ID
	retirementAge := dst.RetirementAge
	*dst = src
	dst.ID = id
	if dst.RetirementAge == 0 {
		dst.RetirementAge = retirementAge
	}
}

// checkOwner rejects items that point at an applicant outside the assessment. Zero is
// allowed so an item can be saved before its owner is picked.
func checkOwner(a *domain.FullAssessment, applicantID int64) error {
	if applicantID == 0 || a.Applicants.FindApplicant(applicantID) != nil {
		return nil
	}
	return ErrApplicantNotFound
}

func (s *AssessmentService) load(ctx context.Context, userID int64, id string) (*repository.AssessmentRecord, *domain.FullAssessment, error) {
	if rec, ok := s.cached(ctx, id); ok {
		if rec.UserID != userID {
			return nil, nil, ErrAssessmentNotFound
		}
		a, err := decodeAssessment(rec.Payload)
		if err == nil {
			return rec, a, nil
		}
		logger.Warnf("[ASSESSMENT] dropping undecodable cache entry %s: %v", id, err)
	}

	rec, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrAssessmentNotFound
		}
		return nil, nil, err
	}

	a, err := decodeAssessment(rec.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("decode assessment %s: %w", id, err)
	}
	s.cacheRecord(ctx, *rec)

	return rec, a, nil
}

func (s *AssessmentService) cached(ctx context.Context, id string) (*repository.AssessmentRecord, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		if !redis.IsNil(err) {
			logger.Warnf("[ASSESSMENT] cache read %s: %v", id, err)
		}
		return nil, false
	}

	var c cachedSession
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		logger.Warnf("[ASSESSMENT] cache decode %s: %v", id, err)
		return nil, false
	}

	return &repository.AssessmentRecord{
		ID:        c.ID,
		UserID:    c.UserID,
		BrokerRef: c.BrokerRef,
		Payload:   c.Payload,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, true
}

func (s *AssessmentService) cacheRecord(ctx context.Context, rec repository.AssessmentRecord) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(cachedSession{
		ID:        rec.ID,
		UserID:    rec.UserID,
		BrokerRef: rec.BrokerRef,
		Payload:   rec.Payload,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	})
	if err != nil {
		logger.Warnf("[ASSESSMENT] cache encode %s: %v", rec.ID, err)
		return
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+rec.ID, string(data), s.ttl); err != nil {
		logger.Warnf("[ASSESSMENT] cache write %s: %v", rec.ID, err)
	}
}

func decodeAssessment(payload []byte) (*domain.FullAssessment, error) {
	a := domain.NewFullAssessment()
	if len(payload) == 0 {
		return a, nil
	}
	if err := json.Unmarshal(payload, a); err != nil {
		return nil, err
	}
	a.Household.Relabel()
	return a, nil
}

func newSession(rec repository.AssessmentRecord, a *domain.FullAssessment) *Session {
	return &Session{
		ID:         rec.ID,
		UserID:     rec.UserID,
		Assessment: a,
		Summary:    a.Summary(),
		Errors:     a.Validate(),
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}
