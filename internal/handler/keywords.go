package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rankwise/rankwise-api/internal/apperr"
	"github.com/rankwise/rankwise-api/internal/validation"
)

// KeywordGenerator produces SEO keyword suggestions for a topic.
type KeywordGenerator interface {
	Generate(ctx context.Context, topic string) ([]string, error)
}

// KeywordsHandler exposes the plan-gated AI keyword endpoint.
type KeywordsHandler struct {
	Generator KeywordGenerator
}

func NewKeywordsHandler(gen KeywordGenerator) *KeywordsHandler {
	return &KeywordsHandler{Generator: gen}
}

type keywordsReq struct {
	Topic string `json:"topic" validate:"required,min=3,max=120"`
}

// Suggest asks the generator for keywords on a topic. Upstream failures
// (including a missing API key) surface as 502, never as 500.
func (h *KeywordsHandler) Suggest(c echo.Context) error {
	var req keywordsReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation([]apperr.FieldError{{Field: "body", Message: "must be valid JSON"}})
	}
	if err := validation.Check(req); err != nil {
		return err
	}

	keywords, err := h.Generator.Generate(c.Request().Context(), req.Topic)
	if err != nil {
		return apperr.Upstream("Keyword generation failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"keywords": keywords})
}
