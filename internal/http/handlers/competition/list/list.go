// Package list реализует HTTP-обработчик постраничного списка соревнований.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/sportsit/internal/http/response"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/models"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Handler обрабатывает запросы на список соревнований.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка соревнований.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.Competition, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список соревнований
// @Tags Competitions
// @Produce  json
// @Param limit query int false "Размер страницы (по умолчанию 10, не больше 100)"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Список соревнований"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /competitions/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.competition.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	res, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list competitions", sl.Err(err))
		response.JSON(w, r, http.StatusInternalServerError, response.Error("could not list competitions"))
		return
	}

	log.Info("success to list competitions", slog.Int("count", len(res)))
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"list_count":   len(res),
		"competitions": res,
	}))
}
