// Package create реализует HTTP-обработчик создания соревнования.
//
// Уровень соревнования выводится из подписки организатора, начальное
// состояние из расписания на момент создания.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sportsit/internal/http/response"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/models"
	"github.com/magabrotheeeer/sportsit/internal/policy"
	"github.com/magabrotheeeer/sportsit/internal/services/competition"
)

// Handler управляет HTTP-запросами на создание соревнований.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис соревнований
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания соревнования.
type Service interface {
	Create(ctx context.Context, req *models.DummyCompetition) (*models.Competition, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать соревнование
// @Description Создает соревнование. Даты передаются в RFC3339.
// @Tags Competitions
// @Accept  json
// @Produce  json
// @Param request body models.DummyCompetition true "Данные соревнования"
// @Success 201 {object} response.Response "Соревнование создано"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или расписание"
// @Failure 404 {object} response.ErrorResponse "Организатор не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /competitions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.competition.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCompetition
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("name", req.Name), slog.Int64("host_uid", req.HostUID))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		response.JSON(w, r, http.StatusUnprocessableEntity, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	c, err := h.service.Create(r.Context(), &req)
	if err != nil {
		log.Error("failed to create competition", sl.Err(err))
		switch {
		case errors.Is(err, policy.ErrInvalidSchedule):
			response.JSON(w, r, http.StatusBadRequest, response.Error("invalid competition schedule"))
		case errors.Is(err, competition.ErrInvalidArgument):
			response.JSON(w, r, http.StatusBadRequest, response.Error("invalid competition data"))
		case errors.Is(err, competition.ErrHostNotFound):
			response.JSON(w, r, http.StatusNotFound, response.Error("host not found"))
		case errors.Is(err, policy.ErrInvalidSubscription):
			response.JSON(w, r, http.StatusInternalServerError, response.Error("host subscription is not valid for hosting"))
		default:
			response.JSON(w, r, http.StatusInternalServerError, response.Error("could not create competition"))
		}
		return
	}

	log.Info("competition created", slog.Int64("id", c.ID), slog.String("state", string(c.State)))
	response.JSON(w, r, http.StatusCreated, response.StatusOKWithData(map[string]any{
		"competition": c,
	}))
}
