package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/parceltrack/internal/tracking/domain"
	"github.com/allisson/parceltrack/internal/tracking/http/dto"
)

type mockTrackingUseCase struct {
	mock.Mock
}

func (m *mockTrackingUseCase) Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error) {
	args := m.Called(ctx, trackingCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrackingInfo), args.Error(1)
}

func (m *mockTrackingUseCase) TrackBatch(
	ctx context.Context,
	trackingCodes []string,
) (map[string]*domain.TrackingInfo, error) {
	args := m.Called(ctx, trackingCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.TrackingInfo), args.Error(1)
}

func (m *mockTrackingUseCase) CheckCritical(ctx context.Context, trackingCodes []string) ([]*domain.TrackingInfo, error) {
	args := m.Called(ctx, trackingCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrackingInfo), args.Error(1)
}

func (m *mockTrackingUseCase) APIStatus(ctx context.Context) *domain.APIStatus {
	return m.Called(ctx).Get(0).(*domain.APIStatus)
}

func (m *mockTrackingUseCase) ListHistory(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HistoryEntry), args.Error(1)
}

func (m *mockTrackingUseCase) ClearHistory(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTrackingUseCase) CleanHistory(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Trigger() error {
	return m.Called().Error(0)
}

func setupTestHandler(t *testing.T) (*TrackingHandler, *mockTrackingUseCase, *mockRefresher) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	useCase := &mockTrackingUseCase{}
	refresher := &mockRefresher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Cleanup(func() {
		useCase.AssertExpectations(t)
		refresher.AssertExpectations(t)
	})

	return NewTrackingHandler(useCase, refresher, logger), useCase, refresher
}

func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTrackingHandler_TrackHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, useCase, _ := setupTestHandler(t)
		info := &domain.TrackingInfo{
			Code:   "AA123456789BR",
			Events: []domain.TrackingEvent{{Status: "Objeto postado", Location: "Curitiba/PR"}},
		}

		useCase.On("Track", mock.Anything, "AA123456789BR").Return(info, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tracking/codes/AA123456789BR", nil)
		c.Params = gin.Params{{Key: "code", Value: "AA123456789BR"}}

		handler.TrackHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var got domain.TrackingInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Objeto postado", got.LatestStatus())
	})

	t.Run("Error_InvalidCode", func(t *testing.T) {
		handler, _, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/tracking/codes/x", nil)
		c.Params = gin.Params{{Key: "code", Value: "x"}}

		handler.TrackHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "validation_error", decodeBody(t, w)["error"])
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, useCase, _ := setupTestHandler(t)

		useCase.On("Track", mock.Anything, "AA123456789BR").Return(nil, domain.ErrTrackingNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tracking/codes/AA123456789BR", nil)
		c.Params = gin.Params{{Key: "code", Value: "AA123456789BR"}}

		handler.TrackHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_CarrierUnavailable", func(t *testing.T) {
		handler, useCase, _ := setupTestHandler(t)

		useCase.On("Track", mock.Anything, "AA123456789BR").Return(nil, domain.ErrCarrierUnavailable).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tracking/codes/AA123456789BR", nil)
		c.Params = gin.Params{{Key: "code", Value: "AA123456789BR"}}

		handler.TrackHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "service_unavailable", decodeBody(t, w)["error"])
	})
}

func TestTrackingHandler_BatchHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, useCase, _ := setupTestHandler(t)
		codes := []string{"AA123456789BR", "BB987654321BR"}
		results := map[string]*domain.TrackingInfo{
			"AA123456789BR": {Code: "AA123456789BR", Events: []domain.TrackingEvent{}},
			"BB987654321BR": {Code: "BB987654321BR", Events: []domain.TrackingEvent{}, Error: "carrier unavailable"},
		}

		useCase.On("TrackBatch", mock.Anything, codes).Return(results, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tracking/batch", dto.TrackBatchRequest{TrackingCodes: codes})

		handler.BatchHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var got map[string]domain.TrackingInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "carrier unavailable", got["BB987654321BR"].Error)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tracking/batch", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))

		handler.BatchHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeBody(t, w)["error"])
	})

	t.Run("Error_EmptyList", func(t *testing.T) {
		handler, _, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tracking/batch", dto.TrackBatchRequest{TrackingCodes: []string{}})

		handler.BatchHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestTrackingHandler_CheckCriticalHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, useCase, _ := setupTestHandler(t)
		critical := []*domain.TrackingInfo{{Code: "BB987654321BR"}}

		useCase.On("CheckCritical", mock.Anything, []string{"AA123456789BR", "BB987654321BR"}).
			Return(critical, nil).
			Once()

		c, w := createTestContext(
			http.MethodGet,
			"/v1/tracking/critical?tracking_codes=AA123456789BR&tracking_codes=BB987654321BR",
			nil,
		)

		handler.CheckCriticalHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var got []domain.TrackingInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "BB987654321BR", got[0].Code)
	})

	t.Run("Error_MissingCodes", func(t *testing.T) {
		handler, _, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/tracking/critical", nil)

		handler.CheckCriticalHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestTrackingHandler_StatusHandler(t *testing.T) {
	handler, useCase, _ := setupTestHandler(t)

	useCase.On("APIStatus", mock.Anything).
		Return(&domain.APIStatus{Status: domain.APIStatusOffline, Message: "carrier unavailable"}).
		Once()

	c, w := createTestContext(http.MethodGet, "/v1/tracking/status", nil)

	handler.StatusHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "offline", decodeBody(t, w)["status"])
}

func TestTrackingHandler_History(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		handler, useCase, _ := setupTestHandler(t)
		entries := []*domain.HistoryEntry{{TrackingCode: "AA123456789BR", Status: "Objeto postado", Success: true}}

		useCase.On("ListHistory", mock.Anything, 10).Return(entries, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/tracking/history?limit=10", nil)

		handler.ListHistoryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var got dto.HistoryListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 1, got.Total)
		assert.Equal(t, "AA123456789BR", got.Items[0].TrackingCode)
	})

	t.Run("List_InvalidLimit", func(t *testing.T) {
		handler, _, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/tracking/history?limit=1000", nil)

		handler.ListHistoryHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Clear", func(t *testing.T) {
		handler, useCase, _ := setupTestHandler(t)

		useCase.On("ClearHistory", mock.Anything).Return(int64(5), nil).Once()

		c, w := createTestContext(http.MethodDelete, "/v1/tracking/history", nil)

		handler.ClearHistoryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Deleted 5 tracking history entries", body["message"])
		assert.Equal(t, float64(5), body["count"])
	})
}

func TestTrackingHandler_RefreshHandler(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		handler, _, refresher := setupTestHandler(t)

		refresher.On("Trigger").Return(nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tracking/refresh", nil)

		handler.RefreshHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("Conflict", func(t *testing.T) {
		handler, _, refresher := setupTestHandler(t)

		refresher.On("Trigger").Return(domain.ErrPassInProgress).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tracking/refresh", nil)

		handler.RefreshHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("SchedulerDisabled", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		handler := NewTrackingHandler(&mockTrackingUseCase{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

		c, w := createTestContext(http.MethodPost, "/v1/tracking/refresh", nil)

		handler.RefreshHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
