package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-travel-brief/internal/models"
	"github.com/mr1hm/go-travel-brief/internal/resolver"
)

const (
	defaultSuggestLimit = 8
	maxSuggestLimit     = 25
)

type Briefer interface {
	Brief(ctx context.Context, query, compare string) (*models.FusedResult, error)
}

type Suggester interface {
	Suggest(partial string, limit int) []models.Suggestion
}

type Handler struct {
	briefs    Briefer
	suggester Suggester
}

func NewHandler(briefs Briefer, suggester Suggester) *Handler {
	return &Handler{
		briefs:    briefs,
		suggester: suggester,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/destination", h.getDestination)
	r.GET("/api/suggest", h.suggest)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (h *Handler) getDestination(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	compare := strings.TrimSpace(c.Query("compare"))

	result, err := h.briefs.Brief(c.Request.Context(), q, compare)
	if err != nil {
		if errors.Is(err, resolver.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("brief failed", "query", q, "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build destination brief"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) suggest(c *gin.Context) {
	limit := defaultSuggestLimit
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 {
			limit = min(lim, maxSuggestLimit)
		}
	}

	suggestions := []models.Suggestion{}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		if found := h.suggester.Suggest(q, limit); found != nil {
			suggestions = found
		}
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
