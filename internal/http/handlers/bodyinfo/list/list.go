// Package list реализует HTTP-обработчик истории замеров участника.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/sportsit/internal/http/response"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	ListByMember(ctx context.Context, memberUID int64) ([]*models.BodyInfo, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История замеров участника
// @Tags BodyInfo
// @Produce  json
// @Param uid path int true "UID участника"
// @Success 200 {object} response.Response "Замеры"
// @Failure 400 {object} response.ErrorResponse "Некорректный UID"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /body-info/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.bodyinfo.list"
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

	res, err := h.service.ListByMember(r.Context(), uid)
	if err != nil {
		log.Error("failed to list body info", sl.Err(err))
		response.JSON(w, r, http.StatusInternalServerError, response.Error("could not list body info"))
		return
	}

	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"list_count": len(res),
		"body_info":  res,
	}))
}
