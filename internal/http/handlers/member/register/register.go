// Package register реализует HTTP-обработчик регистрации участника.
package register

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
	"github.com/magabrotheeeer/sportsit/internal/services/member"
)

// Handler обрабатывает регистрацию участников.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис участников
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, req *models.DummyMember) (*models.Member, error)
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
// @Summary Регистрация участника
// @Tags Members
// @Accept  json
// @Produce  json
// @Param request body models.DummyMember true "Данные участника"
// @Success 201 {object} response.Response "Участник зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /members [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyMember
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

	m, err := h.service.Register(r.Context(), &req)
	if err != nil {
		log.Error("failed to register member", sl.Err(err))
		switch {
		case errors.Is(err, member.ErrInvalidArgument):
			response.JSON(w, r, http.StatusBadRequest, response.Error("invalid member data"))
		case errors.Is(err, member.ErrAlreadyExists):
			response.JSON(w, r, http.StatusConflict, response.Error("member already exists"))
		default:
			response.JSON(w, r, http.StatusInternalServerError, response.Error("could not register member"))
		}
		return
	}

	log.Info("member registered", slog.Int64("uid", m.UID))
	response.JSON(w, r, http.StatusCreated, response.StatusOKWithData(map[string]any{
		"member": m,
	}))
}
