package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"affordability-assessment/internal/repository"
	"affordability-assessment/pkg/cache/redis"
)

type memRepo struct {
	mu      sync.Mutex
	rows    map[string]repository.AssessmentRecord
	gets    int
	updates int
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]repository.AssessmentRecord{}}
}

func (r *memRepo) Create(_ context.Context, rec repository.AssessmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rec.ID] = rec
	return nil
}

func (r *memRepo) Update(_ context.Context, rec repository.AssessmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[rec.ID]
	if !ok || cur.UserID != rec.UserID {
		return repository.ErrNotFound
	}
	r.updates++
	r.rows[rec.ID] = rec
	return nil
}

func (r *memRepo) Get(_ context.Context, userID int64, id string) (*repository.AssessmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	rec, ok := r.rows[id]
	if !ok || rec.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *memRepo) List(_ context.Context, userID int64) ([]repository.AssessmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.AssessmentRecord
	for _, rec := range r.rows {
		if rec.UserID == userID {
			rec.Payload = nil
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, userID int64, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[id]
	if !ok || rec.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type memCache struct {
	mu   sync.Mutex
	kv   map[string]string
	sets map[string]map[string]struct{}

	saddErr error
}

func newMemCache() *memCache {
	return &memCache{kv: map[string]string{}, sets: map[string]map[string]struct{}{}}
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case string:
		c.kv[key] = v
	case []byte:
		c.kv[key] = string(v)
	}
	return nil
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.kv[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.kv, k)
	}
	return nil
}

func (c *memCache) SAdd(_ context.Context, key string, members ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saddErr != nil {
		return c.saddErr
	}
	if c.sets[key] == nil {
		c.sets[key] = map[string]struct{}{}
	}
	for _, m := range members {
		c.sets[key][m.(string)] = struct{}{}
	}
	return nil
}

func (c *memCache) SRem(_ context.Context, key string, members ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range members {
		delete(c.sets[key], m.(string))
	}
	return nil
}

func (c *memCache) SMembers(_ context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for m := range c.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

type event struct {
	Kind     string
	UserID   int64
	ID       string
	Progress float64
	Stage    string
	URL      string
	Message  string
}

type recNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recNotifier) add(e event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recNotifier) all() []event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]event(nil), n.events...)
}

func (n *recNotifier) NotifyAssessmentUpdated(_ context.Context, userID int64, id string, _ any) error {
	return n.add(event{Kind: "updated", UserID: userID, ID: id})
}

func (n *recNotifier) NotifyReportProgress(_ context.Context, userID int64, id string, p float64, stage string) error {
	return n.add(event{Kind: "progress", UserID: userID, ID: id, Progress: p, Stage: stage})
}

func (n *recNotifier) NotifyReportComplete(_ context.Context, userID int64, id, url, _ string) error {
	return n.add(event{Kind: "complete", UserID: userID, ID: id, URL: url})
}

func (n *recNotifier) NotifyReportFailed(_ context.Context, userID int64, id, msg string) error {
	return n.add(event{Kind: "failed", UserID: userID, ID: id, Message: msg})
}
