// Package read реализует HTTP-обработчик получения соревнования по ID.
//
// Состояние соревнования пересчитывается по расписанию при каждом чтении.
package read

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
	"github.com/magabrotheeeer/sportsit/internal/policy"
	"github.com/magabrotheeeer/sportsit/internal/services/competition"
)

// Handler обрабатывает запросы на получение соревнования.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис соревнований
}

// Service описывает интерфейс бизнес-логики чтения соревнования.
type Service interface {
	Get(ctx context.Context, id int64) (*models.Competition, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить соревнование
// @Tags Competitions
// @Produce  json
// @Param id path int true "ID соревнования"
// @Success 200 {object} response.Response "Соревнование"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Соревнование не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /competitions/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.competition.read"
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

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to read competition", sl.Err(err))
		switch {
		case errors.Is(err, competition.ErrNotFound):
			response.JSON(w, r, http.StatusNotFound, response.Error("competition not found"))
		case errors.Is(err, policy.ErrInvalidSchedule):
			response.JSON(w, r, http.StatusInternalServerError, response.Error("competition has invalid schedule"))
		default:
			response.JSON(w, r, http.StatusInternalServerError, response.Error("could not read competition"))
		}
		return
	}

	log.Info("success to read competition", slog.Int64("id", c.ID))
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"competition": c,
	}))
}
