package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nitesh/gastronomos/internal/bot"
	"github.com/nitesh/gastronomos/internal/service"
	"github.com/nitesh/gastronomos/pkg/models"
)

// RestaurantService is what the handlers need from the service layer.
type RestaurantService interface {
	AddRestaurant(ctx context.Context, r *models.Restaurant) error
	ListRestaurants(ctx context.Context, limit int) ([]models.Restaurant, error)
	ExtractFromURL(ctx context.Context, rawURL string) *models.Candidate
	ChatSearch(ctx context.Context, query string) models.SearchResults
}

type MessageHandler interface {
	HandleMessage(ctx context.Context, msg bot.Message) (bot.Outcome, error)
}

type Handler struct {
	svc RestaurantService
	bot MessageHandler
}

func NewHandler(svc RestaurantService, b MessageHandler) *Handler {
	return &Handler{svc: svc, bot: b}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := r.Group("/v1")
	{
		v1.GET("/restaurants", h.List)
		v1.POST("/restaurants", h.Add)
		v1.POST("/restaurants/extract", h.Extract)
		v1.GET("/search", h.Search)
		v1.POST("/bot/messages", h.BotMessage)
	}
}

// List: GET /v1/restaurants?limit=50
func (h *Handler) List(c *gin.Context) {
	lim := parseLimit(c.DefaultQuery("limit", "50"))
	res, err := h.svc.ListRestaurants(c.Request.Context(), lim)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{
			"count": len(res),
			"limit": lim,
		},
		"data": res,
	})
}

// Add: POST /v1/restaurants
func (h *Handler) Add(c *gin.Context) {
	var r models.Restaurant
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	r.ID = ""
	err := h.svc.AddRestaurant(c.Request.Context(), &r)
	switch {
	case errors.Is(err, service.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Este restaurante ya ha sido añadido."})
		return
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al añadir el restaurante."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": r})
}

// Extract: POST /v1/restaurants/extract {"url": "..."}
// Responds 200 with data null when nothing could be extracted.
func (h *Handler) Extract(c *gin.Context) {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url"})
		return
	}
	cand := h.svc.ExtractFromURL(c.Request.Context(), body.URL)
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"url": body.URL, "found": cand != nil},
		"data": cand,
	})
}

// Search: GET /v1/search?q=sushi+barato+en+madrid
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	res := h.svc.ChatSearch(c.Request.Context(), q)
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{
			"query":          q,
			"group_count":    len(res.Group),
			"external_count": len(res.External),
		},
		"data": res,
	})
}

// BotMessage: POST /v1/bot/messages
func (h *Handler) BotMessage(c *gin.Context) {
	if h.bot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bot disabled"})
		return
	}
	var msg bot.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	outcome, err := h.bot.HandleMessage(c.Request.Context(), msg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "outcome": outcome})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}

// parseLimit ensures a sane integer limit, with bounds
func parseLimit(s string) int {
	l, err := strconv.Atoi(s)
	if err != nil || l <= 0 {
		return 50
	}
	if l > 200 {
		return 200
	}
	return l
}
