package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Article mirrors the 'articles' table. Keywords are stored as a JSON
// array in a TEXT column.
type Article struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Keywords  []string
	Status    string
	SEOScore  *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ArticleRepo struct{ DB *sql.DB }

func NewArticleRepo(db *sql.DB) *ArticleRepo { return &ArticleRepo{DB: db} }

// Create inserts an article owned by userID.
func (r *ArticleRepo) Create(ctx context.Context, userID, title, content string, keywords []string, status string) (Article, error) {
	if keywords == nil {
		keywords = []string{}
	}
	kw, err := json.Marshal(keywords)
	if err != nil {
		return Article{}, err
	}
	now := time.Now().UTC()
	a := Article{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Keywords:  keywords,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO articles (id, user_id, title, content, keywords, status, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		a.ID, a.UserID, a.Title, a.Content, string(kw), a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return Article{}, err
	}
	return a, nil
}

// GetByID fetches a single article.
func (r *ArticleRepo) GetByID(ctx context.Context, id string) (Article, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,title,content,keywords,status,seo_score,created_at,updated_at FROM articles WHERE id=? LIMIT 1", id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	return a, err
}

// ListByUser returns the user's articles, newest first.
func (r *ArticleRepo) ListByUser(ctx context.Context, userID string) ([]Article, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,title,content,keywords,status,seo_score,created_at,updated_at FROM articles WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// SetSEOScore stamps the latest analysis score on the article.
func (r *ArticleRepo) SetSEOScore(ctx context.Context, id string, score float64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE articles SET seo_score=?, updated_at=? WHERE id=?",
		score, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (Article, error) {
	var a Article
	var kw string
	var score sql.NullFloat64
	err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Content, &kw, &a.Status, &score, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Article{}, err
	}
	if err := json.Unmarshal([]byte(kw), &a.Keywords); err != nil {
		a.Keywords = []string{}
	}
	if score.Valid {
		a.SEOScore = &score.Float64
	}
	return a, nil
}
