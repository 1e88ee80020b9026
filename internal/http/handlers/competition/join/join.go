// Package join реализует HTTP-обработчик записи участника в соревнование.
package join

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sportsit/internal/http/response"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/models"
	"github.com/magabrotheeeer/sportsit/internal/services/competition"
)

// Handler обрабатывает запросы на участие в соревновании.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики записи в соревнование.
type Service interface {
	Join(ctx context.Context, competitionID int64, req *models.JoinRequest) (*models.Participant, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Записаться на соревнование
// @Description Запись открыта только в состоянии RECRUITING.
// @Tags Competitions
// @Accept  json
// @Produce  json
// @Param id path int true "ID соревнования"
// @Param request body models.JoinRequest true "Участник и роль"
// @Success 201 {object} response.Response "Участник записан"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Соревнование или участник не найдены"
// @Failure 409 {object} response.ErrorResponse "Запись закрыта, мест нет или участник уже записан"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /competitions/{id}/join [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.competition.join"
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

	var req models.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		response.JSON(w, r, http.StatusUnprocessableEntity, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	p, err := h.service.Join(r.Context(), id, &req)
	if err != nil {
		log.Error("failed to join competition", sl.Err(err))
		switch {
		case errors.Is(err, competition.ErrNotFound):
			response.JSON(w, r, http.StatusNotFound, response.Error("competition not found"))
		case errors.Is(err, competition.ErrMemberNotFound):
			response.JSON(w, r, http.StatusNotFound, response.Error("member not found"))
		case errors.Is(err, competition.ErrNotRecruiting):
			response.JSON(w, r, http.StatusConflict, response.Error("competition is not recruiting"))
		case errors.Is(err, competition.ErrAlreadyJoined):
			response.JSON(w, r, http.StatusConflict, response.Error("member already joined"))
		case errors.Is(err, competition.ErrCompetitionFull):
			response.JSON(w, r, http.StatusConflict, response.Error("competition is full"))
		case errors.Is(err, competition.ErrInvalidArgument):
			response.JSON(w, r, http.StatusBadRequest, response.Error("invalid join request"))
		default:
			response.JSON(w, r, http.StatusInternalServerError, response.Error("could not join competition"))
		}
		return
	}

	log.Info("member joined competition", slog.Int64("competition_id", id), slog.Int64("member_uid", p.MemberUID))
	response.JSON(w, r, http.StatusCreated, response.StatusOKWithData(map[string]any{
		"participant": p,
	}))
}
