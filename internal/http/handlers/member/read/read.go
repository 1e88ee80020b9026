// Package read реализует HTTP-обработчик получения участника по UID.
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
	"github.com/magabrotheeeer/sportsit/internal/services/member"
)

// Handler обрабатывает запросы на получение участника.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения участника.
type Service interface {
	Get(ctx context.Context, uid int64) (*models.Member, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить участника
// @Tags Members
// @Produce  json
// @Param uid path int true "UID участника"
// @Success 200 {object} response.Response "Участник"
// @Failure 400 {object} response.ErrorResponse "Некорректный UID"
// @Failure 404 {object} response.ErrorResponse "Участник не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /members/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, err := strconv.ParseInt(chi.URLParam(r, "uid"), 10, 64)
	if err != nil {
		log.Error("failed to decode uid from url", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("failed to decode uid from url"))
		return
	}

	m, err := h.service.Get(r.Context(), uid)
	if err != nil {
		log.Error("failed to read member", sl.Err(err))
		if errors.Is(err, member.ErrNotFound) {
			response.JSON(w, r, http.StatusNotFound, response.Error("member not found"))
			return
		}
		response.JSON(w, r, http.StatusInternalServerError, response.Error("could not read member"))
		return
	}

	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"member": m,
	}))
}
