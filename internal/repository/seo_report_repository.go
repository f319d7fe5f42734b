package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SEOReport mirrors the 'seo_reports' table. KeywordDensity and
// Suggestions are stored as JSON in TEXT columns.
type SEOReport struct {
	ID               string
	ArticleID        string
	ReadabilityScore float64
	KeywordDensity   map[string]float64
	MetaDescription  string
	Suggestions      []string
	CreatedAt        time.Time
}

type SEOReportRepo struct{ DB *sql.DB }

func NewSEOReportRepo(db *sql.DB) *SEOReportRepo { return &SEOReportRepo{DB: db} }

// Create persists a report for an article.
func (r *SEOReportRepo) Create(ctx context.Context, report SEOReport) (SEOReport, error) {
	report.ID = uuid.NewString()
	report.CreatedAt = time.Now().UTC()
	if report.KeywordDensity == nil {
		report.KeywordDensity = map[string]float64{}
	}
	if report.Suggestions == nil {
		report.Suggestions = []string{}
	}
	density, err := json.Marshal(report.KeywordDensity)
	if err != nil {
		return SEOReport{}, err
	}
	suggestions, err := json.Marshal(report.Suggestions)
	if err != nil {
		return SEOReport{}, err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO seo_reports (id, article_id, readability_score, keyword_density, meta_description, suggestions, created_at) VALUES (?,?,?,?,?,?,?)",
		report.ID, report.ArticleID, report.ReadabilityScore, string(density), report.MetaDescription, string(suggestions), report.CreatedAt)
	if err != nil {
		return SEOReport{}, err
	}
	return report, nil
}

// LatestByArticle returns the most recent report for an article.
func (r *SEOReportRepo) LatestByArticle(ctx context.Context, articleID string) (SEOReport, error) {
	var report SEOReport
	var density, suggestions string
	err := r.DB.QueryRowContext(ctx,
		`SELECT id,article_id,readability_score,keyword_density,meta_description,suggestions,created_at
		 FROM seo_reports WHERE article_id=? ORDER BY created_at DESC LIMIT 1`,
		articleID).Scan(&report.ID, &report.ArticleID, &report.ReadabilityScore, &density, &report.MetaDescription, &suggestions, &report.CreatedAt)
	if err == sql.ErrNoRows {
		return SEOReport{}, ErrNotFound
	}
	if err != nil {
		return SEOReport{}, err
	}
	if err := json.Unmarshal([]byte(density), &report.KeywordDensity); err != nil {
		report.KeywordDensity = map[string]float64{}
	}
	if err := json.Unmarshal([]byte(suggestions), &report.Suggestions); err != nil {
		report.Suggestions = []string{}
	}
	return report, nil
}
