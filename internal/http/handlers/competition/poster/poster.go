// Package poster реализует HTTP-обработчик загрузки постера соревнования
// в объектное хранилище.
package poster

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/sportsit/internal/http/response"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/services/competition"
)

// MaxPosterSize предельный размер загружаемого файла.
const MaxPosterSize = 10 << 20

// Handler обрабатывает загрузку постеров.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс загрузки постера.
type Service interface {
	AddPoster(ctx context.Context, competitionID int64, filename, contentType string, body io.Reader) (string, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Загрузить постер соревнования
// @Tags Competitions
// @Accept  multipart/form-data
// @Produce  json
// @Param id path int true "ID соревнования"
// @Param file formData file true "Изображение постера"
// @Success 201 {object} response.Response "URL постера"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Соревнование не найдено"
// @Failure 503 {object} response.ErrorResponse "Хранилище постеров не настроено"
// @Router /competitions/{id}/posters [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.competition.poster"
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

	r.Body = http.MaxBytesReader(w, r.Body, MaxPosterSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		log.Error("failed to read poster file", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.service.AddPoster(r.Context(), id, header.Filename, contentType, file)
	if err != nil {
		log.Error("failed to upload poster", sl.Err(err))
		switch {
		case errors.Is(err, competition.ErrStorageDisabled):
			response.JSON(w, r, http.StatusServiceUnavailable, response.Error("poster storage is disabled"))
		case errors.Is(err, competition.ErrNotFound):
			response.JSON(w, r, http.StatusNotFound, response.Error("competition not found"))
		default:
			response.JSON(w, r, http.StatusInternalServerError, response.Error("could not upload poster"))
		}
		return
	}

	log.Info("poster uploaded", slog.Int64("competition_id", id), slog.String("url", url))
	response.JSON(w, r, http.StatusCreated, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
