// Package create реализует HTTP-обработчик добавления замера состава тела.
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
	"github.com/magabrotheeeer/sportsit/internal/services/bodyinfo"
)

// Handler обрабатывает запросы на добавление замера.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики замеров.
type Service interface {
	Create(ctx context.Context, req *models.DummyBodyInfo) (*models.BodyInfo, error)
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
// @Summary Добавить замер состава тела
// @Tags BodyInfo
// @Accept  json
// @Produce  json
// @Param request body models.DummyBodyInfo true "Замер"
// @Success 201 {object} response.Response "Замер сохранён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Участник не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /body-info [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.bodyinfo.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyBodyInfo
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

	info, err := h.service.Create(r.Context(), &req)
	if err != nil {
		log.Error("failed to save body info", sl.Err(err))
		switch {
		case errors.Is(err, bodyinfo.ErrMemberNotFound):
			response.JSON(w, r, http.StatusNotFound, response.Error("member not found"))
		case errors.Is(err, bodyinfo.ErrInvalidArgument):
			response.JSON(w, r, http.StatusBadRequest, response.Error("invalid body info"))
		default:
			response.JSON(w, r, http.StatusInternalServerError, response.Error("could not save body info"))
		}
		return
	}

	log.Info("body info saved", slog.Int64("id", info.ID), slog.Int64("member_uid", info.MemberUID))
	response.JSON(w, r, http.StatusCreated, response.StatusOKWithData(map[string]any{
		"body_info": info,
	}))
}
