package reactivate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
	"github.com/magabrotheeeer/billing-admin/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Reactivate(ctx context.Context, actor models.Actor, id string, req models.DummyDueDate) (*models.Client, error) {
	args := m.Called(ctx, actor, id, req)
	c, _ := args.Get(0).(*models.Client)
	return c, args.Error(1)
}

func TestReactivateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := models.Actor{UserID: "user-1", Role: "operator"}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "реактивация клиента",
			body: `{"due_date":"2024-07-15"}`,
			setupMock: func(m *MockService) {
				m.On("Reactivate", mock.Anything, actor, "c-1", models.DummyDueDate{DueDate: "2024-07-15"}).
					Return(&models.Client{ID: "c-1", IsActive: true, DueDateString: "15/07/2024"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"due_date_string":"15/07/2024"`,
		},
		{
			name: "нет даты оплаты",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Reactivate", mock.Anything, actor, "c-1", models.DummyDueDate{}).
					Return(nil, billing.ErrMissingRequiredField)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"missing required field"}`,
		},
		{
			name: "клиент уже активен",
			body: `{"due_date":"2024-07-15"}`,
			setupMock: func(m *MockService) {
				m.On("Reactivate", mock.Anything, actor, "c-1", models.DummyDueDate{DueDate: "2024-07-15"}).
					Return(nil, billing.ErrInvalidState)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"invalid lifecycle state"}`,
		},
		{
			name:           "некорректный JSON",
			body:           `due`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/clients/c-1/reactivate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			ctx := context.WithValue(req.Context(), middlewarectx.User, actor.UserID)
			ctx = context.WithValue(ctx, middlewarectx.Role, actor.Role)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "c-1")
			req = req.WithContext(context.WithValue(ctx, chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
