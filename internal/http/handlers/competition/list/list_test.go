package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/sportsit/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, limit, offset int) ([]*models.Competition, error) {
	args := m.Called(ctx, limit, offset)
	if res := args.Get(0); res != nil {
		return res.([]*models.Competition), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	two := []*models.Competition{{ID: 1}, {ID: 2}}

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "значения по умолчанию",
			url:  "/competitions/list",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, 10, 0).Return(two, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"list_count":2`,
		},
		{
			name: "явные limit и offset",
			url:  "/competitions/list?limit=5&offset=15",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, 5, 15).Return([]*models.Competition{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"list_count":0`,
		},
		{
			name: "limit ограничен сверху, отрицательный offset сброшен",
			url:  "/competitions/list?limit=1000&offset=-1",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, 100, 0).Return(two, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "ошибка сервиса",
			url:  "/competitions/list",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, 10, 0).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not list competitions`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
