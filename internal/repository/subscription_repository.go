package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Subscription mirrors the 'subscriptions' table. A user gets a free
// active subscription at registration; plan changes are out of scope for
// this service and happen through billing.
type Subscription struct {
	ID        string
	UserID    string
	Plan      string
	Status    string
	StartDate time.Time
	EndDate   *time.Time
	CreatedAt time.Time
}

type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// Create opens an active subscription on the given plan.
func (r *SubscriptionRepo) Create(ctx context.Context, userID, plan string) (Subscription, error) {
	now := time.Now().UTC()
	s := Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Plan:      plan,
		Status:    "active",
		StartDate: now,
		CreatedAt: now,
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO subscriptions (id, user_id, plan, status, start_date, created_at) VALUES (?,?,?,?,?,?)",
		s.ID, s.UserID, s.Plan, s.Status, s.StartDate, s.CreatedAt)
	if err != nil {
		return Subscription{}, err
	}
	return s, nil
}

// GetActiveByUser returns the user's current active subscription.
func (r *SubscriptionRepo) GetActiveByUser(ctx context.Context, userID string) (Subscription, error) {
	var s Subscription
	var end sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		`SELECT id,user_id,plan,status,start_date,end_date,created_at
		 FROM subscriptions WHERE user_id=? AND status='active'
		 ORDER BY start_date DESC LIMIT 1`,
		userID).Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.StartDate, &end, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Subscription{}, ErrNotFound
	}
	if err != nil {
		return Subscription{}, err
	}
	if end.Valid {
		s.EndDate = &end.Time
	}
	return s, nil
}
