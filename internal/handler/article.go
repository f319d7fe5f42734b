package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rankwise/rankwise-api/internal/apperr"
	"github.com/rankwise/rankwise-api/internal/middleware"
	"github.com/rankwise/rankwise-api/internal/repository"
	"github.com/rankwise/rankwise-api/internal/service"
	"github.com/rankwise/rankwise-api/internal/validation"
)

// ArticleHandler manages a user's articles and their SEO analysis.
type ArticleHandler struct {
	Articles ArticleStore
	Reports  ReportStore
}

func NewArticleHandler(articles ArticleStore, reports ReportStore) *ArticleHandler {
	return &ArticleHandler{Articles: articles, Reports: reports}
}

type createArticleReq struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Content  string   `json:"content" validate:"required"`
	Keywords []string `json:"keywords" validate:"max=20,dive,required,max=80"`
	Status   string   `json:"status" validate:"omitempty,oneof=draft published"`
}

type articleResp struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Keywords  []string  `json:"keywords"`
	Status    string    `json:"status"`
	SEOScore  *float64  `json:"seo_score,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type reportResp struct {
	ID               string             `json:"id"`
	ArticleID        string             `json:"article_id"`
	ReadabilityScore float64            `json:"readability_score"`
	KeywordDensity   map[string]float64 `json:"keyword_density"`
	MetaDescription  string             `json:"meta_description"`
	Suggestions      []string           `json:"suggestions"`
	CreatedAt        time.Time          `json:"created_at"`
}

// Create stores a new article owned by the caller.
func (h *ArticleHandler) Create(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return apperr.Unauthorized()
	}
	var req createArticleReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation([]apperr.FieldError{{Field: "body", Message: "must be valid JSON"}})
	}
	if err := validation.Check(req); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = "draft"
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	a, err := h.Articles.Create(ctx, claims.Subject, req.Title, req.Content, req.Keywords, req.Status)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"article": toArticleResp(a)})
}

// List returns the caller's articles, newest first.
func (h *ArticleHandler) List(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return apperr.Unauthorized()
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	articles, err := h.Articles.ListByUser(ctx, claims.Subject)
	if err != nil {
		return apperr.Internal(err)
	}
	out := make([]articleResp, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleResp(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"articles": out})
}

// Get returns one of the caller's articles. A non-owned article reads as
// 404 so article IDs cannot be probed.
func (h *ArticleHandler) Get(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return apperr.Unauthorized()
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	a, err := h.ownedArticle(ctx, c.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"article": toArticleResp(a)})
}

// Analyze runs the SEO analysis on an article, persists the report and
// stamps the article's score.
func (h *ArticleHandler) Analyze(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return apperr.Unauthorized()
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	a, err := h.ownedArticle(ctx, c.Param("id"), claims.Subject)
	if err != nil {
		return err
	}

	analysis := service.AnalyzeSEO(a.Title, a.Content, a.Keywords)
	report, err := h.Reports.Create(ctx, repository.SEOReport{
		ArticleID:        a.ID,
		ReadabilityScore: analysis.ReadabilityScore,
		KeywordDensity:   analysis.KeywordDensity,
		MetaDescription:  analysis.MetaDescription,
		Suggestions:      analysis.Suggestions,
	})
	if err != nil {
		return apperr.Internal(err)
	}
	if err := h.Articles.SetSEOScore(ctx, a.ID, analysis.ReadabilityScore); err != nil {
		return apperr.Internal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"report": reportResp{
		ID:               report.ID,
		ArticleID:        report.ArticleID,
		ReadabilityScore: report.ReadabilityScore,
		KeywordDensity:   report.KeywordDensity,
		MetaDescription:  report.MetaDescription,
		Suggestions:      report.Suggestions,
		CreatedAt:        report.CreatedAt,
	}})
}

func (h *ArticleHandler) ownedArticle(ctx context.Context, id, userID string) (repository.Article, error) {
	a, err := h.Articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Article{}, apperr.NotFound("Article not found")
		}
		return repository.Article{}, apperr.Internal(err)
	}
	if a.UserID != userID {
		return repository.Article{}, apperr.NotFound("Article not found")
	}
	return a, nil
}

func toArticleResp(a repository.Article) articleResp {
	return articleResp{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Keywords:  a.Keywords,
		Status:    a.Status,
		SEOScore:  a.SEOScore,
		CreatedAt: a.CreatedAt,
	}
}
