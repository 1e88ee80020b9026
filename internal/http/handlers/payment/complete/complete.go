// Package complete реализует HTTP-обработчик завершения платежа.
//
// Handler сверяет присланные клиентом данные с записью шлюза и при
// успешной сверке сохраняет заказ.
package complete

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
	"github.com/magabrotheeeer/sportsit/internal/services/payment"
	"github.com/magabrotheeeer/sportsit/internal/storage/repository"
)

// Handler обрабатывает запросы на завершение платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики завершения платежа.
type Service interface {
	Complete(ctx context.Context, req *models.PaymentRequest) (*models.Payment, error)
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
// @Summary Завершить платёж
// @Description Сверяет платёж со шлюзом и сохраняет заказ.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.PaymentRequest true "Данные завершённого платежа"
// @Success 201 {object} response.Response "Заказ сохранён"
// @Failure 400 {object} response.ErrorResponse "Сверка не прошла или некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Покупатель или соревнование не найдены"
// @Failure 409 {object} response.ErrorResponse "Платёж уже сохранён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.complete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PaymentRequest
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

	p, err := h.service.Complete(r.Context(), &req)
	if err != nil {
		log.Error("failed to complete payment", sl.Err(err))
		switch {
		case errors.Is(err, payment.ErrVerificationFailed):
			response.JSON(w, r, http.StatusBadRequest, response.Error("payment verification failed"))
		case errors.Is(err, payment.ErrInvalidArgument):
			response.JSON(w, r, http.StatusBadRequest, response.Error("invalid payment data"))
		case errors.Is(err, repository.ErrNotFound):
			response.JSON(w, r, http.StatusNotFound, response.Error("buyer or competition not found"))
		case errors.Is(err, repository.ErrAlreadyExists):
			response.JSON(w, r, http.StatusConflict, response.Error("payment already saved"))
		default:
			response.JSON(w, r, http.StatusInternalServerError, response.Error("could not save payment"))
		}
		return
	}

	log.Info("payment completed", slog.Int64("id", p.ID), slog.String("merchant_uid", p.MerchantUID))
	response.JSON(w, r, http.StatusCreated, response.StatusOKWithData(map[string]any{
		"payment": p,
	}))
}
