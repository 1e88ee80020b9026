// Package paymentlist реализует HTTP-обработчики списков платежей:
// по покупателю и полный список.
package paymentlist

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

// Service описывает чтение платежей.
type Service interface {
	ListByBuyer(ctx context.Context, buyerUID int64) ([]*models.PaymentDetail, error)
	ListAll(ctx context.Context) ([]*models.PaymentDetail, error)
}

// Handler отдаёт платежи одного покупателя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает обработчик списка платежей покупателя.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Платежи покупателя
// @Tags Payments
// @Produce  json
// @Param buyer_uid query int true "UID покупателя"
// @Success 200 {object} response.Response "Список платежей"
// @Failure 400 {object} response.ErrorResponse "Некорректный buyer_uid"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	buyerUID, err := strconv.ParseInt(r.URL.Query().Get("buyer_uid"), 10, 64)
	if err != nil || buyerUID <= 0 {
		log.Error("invalid buyer_uid", slog.String("buyer_uid", r.URL.Query().Get("buyer_uid")))
		response.JSON(w, r, http.StatusBadRequest, response.Error("invalid buyer_uid"))
		return
	}

	payments, err := h.service.ListByBuyer(r.Context(), buyerUID)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		response.JSON(w, r, http.StatusInternalServerError, response.Error("internal error"))
		return
	}

	log.Info("list payments", slog.Int64("buyer_uid", buyerUID), slog.Int("count", len(payments)))
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"list_count": len(payments),
		"payments":   payments,
	}))
}

// AllHandler отдаёт все платежи.
type AllHandler struct {
	log     *slog.Logger
	service Service
}

// NewAll создает обработчик полного списка платежей.
func NewAll(log *slog.Logger, service Service) *AllHandler {
	return &AllHandler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Все платежи
// @Tags Payments
// @Produce  json
// @Success 200 {object} response.Response "Список платежей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/all [get]
func (h *AllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.all"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payments, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		response.JSON(w, r, http.StatusInternalServerError, response.Error("internal error"))
		return
	}

	log.Info("list all payments", slog.Int("count", len(payments)))
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"list_count": len(payments),
		"payments":   payments,
	}))
}
