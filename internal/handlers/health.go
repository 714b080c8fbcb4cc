package handlers

import (
	"context"
	"net/http"
	"time"

	"salonmenu/internal/logger"
	helpers "salonmenu/internal/utils/helpers"

	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct{ store Pinger }

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health
// @Summary      Проверка состояния
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)
	if err := h.store.Ping(ctx); err != nil {
		logger.WithCtx(r.Context()).Error("health: хранилище недоступно", zap.Error(err))
		helpers.JSON(w, http.StatusInternalServerError, map[string]string{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     err.Error(),
			"timestamp": now,
		})
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": now,
	})
}
