// Package handler implements the HTTP surface. Handlers bind and validate
// payloads, orchestrate the stores and services, and return typed errors
// that the top-level error handler translates into JSON responses.
package handler

import (
	"context"

	"github.com/rankwise/rankwise-api/internal/queue"
	"github.com/rankwise/rankwise-api/internal/repository"
)

// UserStore is the credential-store contract the auth flow depends on.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, plan string) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id string) (repository.User, error)
}

// SubscriptionStore provides the subscription records opened alongside
// registration.
type SubscriptionStore interface {
	Create(ctx context.Context, userID, plan string) (repository.Subscription, error)
	GetActiveByUser(ctx context.Context, userID string) (repository.Subscription, error)
}

// ArticleStore persists user articles.
type ArticleStore interface {
	Create(ctx context.Context, userID, title, content string, keywords []string, status string) (repository.Article, error)
	GetByID(ctx context.Context, id string) (repository.Article, error)
	ListByUser(ctx context.Context, userID string) ([]repository.Article, error)
	SetSEOScore(ctx context.Context, id string, score float64) error
}

// ReportStore persists SEO analysis reports.
type ReportStore interface {
	Create(ctx context.Context, report repository.SEOReport) (repository.SEOReport, error)
	LatestByArticle(ctx context.Context, articleID string) (repository.SEOReport, error)
}

// SignupEvents receives best-effort registration events.
type SignupEvents interface {
	UserRegistered(ctx context.Context, event queue.UserRegistered) error
}
