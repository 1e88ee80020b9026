// Package participants реализует HTTP-обработчик списка участников соревнования.
package participants

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/sportsit/internal/http/response"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/models"
	"github.com/magabrotheeeer/sportsit/internal/services/competition"
)

// Handler обрабатывает запросы на список участников.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка участников.
type Service interface {
	Participants(ctx context.Context, id int64) ([]*models.Participant, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Участники соревнования
// @Tags Competitions
// @Produce  json
// @Param id path int true "ID соревнования"
// @Success 200 {object} response.Response "Список участников"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Соревнование не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /competitions/{id}/participants [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.competition.participants"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("failed to decode id from url"))
		return
	}

	ps, err := h.service.Participants(r.Context(), id)
	if err != nil {
		log.Error("failed to list participants", sl.Err(err))
		if errors.Is(err, competition.ErrNotFound) {
			response.JSON(w, r, http.StatusNotFound, response.Error("competition not found"))
			return
		}
		response.JSON(w, r, http.StatusInternalServerError, response.Error("could not list participants"))
		return
	}

	log.Info("success to list participants", slog.Int64("id", id), slog.Int("count", len(ps)))
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"list_count":   len(ps),
		"participants": ps,
	}))
}
