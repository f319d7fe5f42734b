package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rankwise/rankwise-api/internal/queue"
	"github.com/rankwise/rankwise-api/internal/repository"
)

// fakeUserStore enforces email uniqueness atomically, matching the
// database's unique-index behavior under concurrent inserts.
type fakeUserStore struct {
	mu      sync.Mutex
	byEmail map[string]repository.User
	failAll bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]repository.User)}
}

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash, plan string) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return repository.User{}, context.DeadlineExceeded
	}
	if _, ok := s.byEmail[email]; ok {
		return repository.User{}, repository.ErrEmailExists
	}
	u := repository.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Plan:         plan,
		CreatedAt:    time.Now().UTC(),
	}
	s.byEmail[email] = u
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byEmail[email]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

type fakeSubscriptionStore struct {
	mu     sync.Mutex
	byUser map[string]repository.Subscription
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{byUser: make(map[string]repository.Subscription)}
}

func (s *fakeSubscriptionStore) Create(_ context.Context, userID, plan string) (repository.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := repository.Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Plan:      plan,
		Status:    "active",
		StartDate: time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}
	s.byUser[userID] = sub
	return sub, nil
}

func (s *fakeSubscriptionStore) GetActiveByUser(_ context.Context, userID string) (repository.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.byUser[userID]
	if !ok {
		return repository.Subscription{}, repository.ErrNotFound
	}
	return sub, nil
}

type fakeArticleStore struct {
	mu   sync.Mutex
	byID map[string]repository.Article
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{byID: make(map[string]repository.Article)}
}

func (s *fakeArticleStore) Create(_ context.Context, userID, title, content string, keywords []string, status string) (repository.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keywords == nil {
		keywords = []string{}
	}
	now := time.Now().UTC()
	a := repository.Article{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Keywords:  keywords,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byID[a.ID] = a
	return a, nil
}

func (s *fakeArticleStore) GetByID(_ context.Context, id string) (repository.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return repository.Article{}, repository.ErrNotFound
	}
	return a, nil
}

func (s *fakeArticleStore) ListByUser(_ context.Context, userID string) ([]repository.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.Article, 0)
	for _, a := range s.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeArticleStore) SetSEOScore(_ context.Context, id string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.SEOScore = &score
	s.byID[id] = a
	return nil
}

type fakeReportStore struct {
	mu      sync.Mutex
	reports []repository.SEOReport
}

func (s *fakeReportStore) Create(_ context.Context, report repository.SEOReport) (repository.SEOReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.ID = uuid.NewString()
	report.CreatedAt = time.Now().UTC()
	s.reports = append(s.reports, report)
	return report, nil
}

func (s *fakeReportStore) LatestByArticle(_ context.Context, articleID string) (repository.SEOReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.reports) - 1; i >= 0; i-- {
		if s.reports[i].ArticleID == articleID {
			return s.reports[i], nil
		}
	}
	return repository.SEOReport{}, repository.ErrNotFound
}

type recordingEvents struct {
	mu     sync.Mutex
	events []queue.UserRegistered
}

func (r *recordingEvents) UserRegistered(_ context.Context, event queue.UserRegistered) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type fakeGenerator struct {
	keywords []string
	err      error
}

func (g *fakeGenerator) Generate(context.Context, string) ([]string, error) {
	return g.keywords, g.err
}
