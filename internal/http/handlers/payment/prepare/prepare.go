// Package prepare реализует HTTP-обработчик предварительной регистрации платежа в шлюзе.
//
// Handler принимает сумму и imp_uid, вызывает сервис, который генерирует
// уникальный merchant_uid и регистрирует его в шлюзе, и возвращает регистрацию клиенту.
package prepare

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sportsit/internal/gateway"
	"github.com/magabrotheeeer/sportsit/internal/http/response"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/models"
	"github.com/magabrotheeeer/sportsit/internal/services/payment"
)

// Handler обрабатывает запросы на предварительную регистрацию платежа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис платежей
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики предварительной регистрации.
type Service interface {
	PreRegister(ctx context.Context, req *models.PreRegisterRequest) (*models.Registration, error)
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
// @Summary Предварительная регистрация платежа
// @Description Генерирует merchant_uid и регистрирует ожидаемую сумму в платёжном шлюзе.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.PreRegisterRequest true "Данные платежа"
// @Success 200 {object} response.Response "Платёж зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 409 {object} response.ErrorResponse "merchant_uid уже зарегистрирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка платёжного шлюза"
// @Router /payments/prepare [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.prepare"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PreRegisterRequest
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

	reg, err := h.service.PreRegister(r.Context(), &req)
	if err != nil {
		log.Error("failed to pre-register payment", sl.Err(err))
		switch {
		case errors.Is(err, payment.ErrInvalidArgument):
			response.JSON(w, r, http.StatusBadRequest, response.Error("invalid payment registration"))
		case errors.Is(err, payment.ErrAlreadyRegistered):
			response.JSON(w, r, http.StatusConflict, response.Error("payment already registered"))
		case errors.Is(err, gateway.ErrGatewayAuth),
			errors.Is(err, gateway.ErrGateway),
			errors.Is(err, payment.ErrUIDGenerationFailed):
			response.JSON(w, r, http.StatusBadGateway, response.Error("payment gateway is unavailable"))
		default:
			response.JSON(w, r, http.StatusInternalServerError, response.Error("could not register payment"))
		}
		return
	}

	log.Info("payment pre-registered", slog.String("merchant_uid", reg.MerchantUID))
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"registration": reg,
	}))
}
