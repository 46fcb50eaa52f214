package paymentremove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
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

func (m *MockService) DeletePayment(ctx context.Context, actor models.Actor, id string, index int, expectedSeq *int64) (*models.Client, error) {
	args := m.Called(ctx, actor, id, index, expectedSeq)
	c, _ := args.Get(0).(*models.Client)
	return c, args.Error(1)
}

func seqPtr(v int64) *int64 { return &v }

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := models.Actor{UserID: "user-1"}

	tests := []struct {
		name           string
		index          string
		query          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "удаление без expected_seq",
			index: "0",
			setupMock: func(m *MockService) {
				m.On("DeletePayment", mock.Anything, actor, "c-1", 0, (*int64)(nil)).
					Return(&models.Client{ID: "c-1", PaymentHistory: []models.PaymentEntry{}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"payment_history":[]`,
		},
		{
			name:  "удаление с expected_seq",
			index: "1",
			query: "?expected_seq=7",
			setupMock: func(m *MockService) {
				m.On("DeletePayment", mock.Anything, actor, "c-1", 1, seqPtr(7)).
					Return(&models.Client{ID: "c-1"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":"c-1"`,
		},
		{
			name:  "пустая история",
			index: "0",
			setupMock: func(m *MockService) {
				m.On("DeletePayment", mock.Anything, actor, "c-1", 0, (*int64)(nil)).Return(nil, billing.ErrOutOfRange)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"payment index out of range"}`,
		},
		{
			name:           "некорректный expected_seq",
			index:          "0",
			query:          "?expected_seq=abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode expected_seq"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/clients/c-1/payments/"+tt.index+tt.query, nil)
			ctx := context.WithValue(req.Context(), middlewarectx.User, actor.UserID)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "c-1")
			rctx.URLParams.Add("index", tt.index)
			req = req.WithContext(context.WithValue(ctx, chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
