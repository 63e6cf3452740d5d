package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chips520/wms-simple-version/internal/models"
	"github.com/chips520/wms-simple-version/internal/repository"
	"github.com/chips520/wms-simple-version/internal/service"
)

// Mock service for testing
type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) Create(ctx context.Context, req *models.LocationCreate) (*models.MaterialLocation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaterialLocation), args.Error(1)
}

func (m *MockLocationService) Get(ctx context.Context, id int64) (*models.MaterialLocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaterialLocation), args.Error(1)
}

func (m *MockLocationService) List(ctx context.Context, query service.ListQuery) ([]models.MaterialLocation, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaterialLocation), args.Error(1)
}

func (m *MockLocationService) Update(ctx context.Context, id int64, update *models.LocationUpdate) (*models.MaterialLocation, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaterialLocation), args.Error(1)
}

func (m *MockLocationService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLocationService) ClearByID(ctx context.Context, id int64) (*models.MaterialLocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaterialLocation), args.Error(1)
}

func (m *MockLocationService) ClearByMaterialTray(ctx context.Context, materialID, trayNumber string) (*models.MaterialLocation, error) {
	args := m.Called(ctx, materialID, trayNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaterialLocation), args.Error(1)
}

func (m *MockLocationService) BatchUpdate(ctx context.Context, items []models.BatchUpdateItem) ([]models.MaterialLocation, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaterialLocation), args.Error(1)
}

func (m *MockLocationService) BatchClear(ctx context.Context, ids []int64) ([]models.MaterialLocation, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaterialLocation), args.Error(1)
}

func strPtr(s string) *string {
	return &s
}

func testRouter(svc service.LocationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	r := gin.New()
	h := NewLocationHandler(svc, log)
	locations := r.Group("/locations")
	{
		locations.POST("", h.CreateLocation)
		locations.GET("", h.ListLocations)
		locations.GET("/:id", h.GetLocation)
		locations.PUT("/:id", h.UpdateLocation)
		locations.DELETE("/:id", h.DeleteLocation)
		locations.POST("/clear-one", h.ClearLocation)
		locations.POST("/clear-by-material-tray", h.ClearByMaterialTray)
		locations.POST("/batch-update", h.BatchUpdateLocations)
		locations.POST("/batch-clear", h.BatchClearLocations)
	}
	return r
}

func performRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func testLocation(id int64) *models.MaterialLocation {
	return &models.MaterialLocation{
		ID:         id,
		MaterialID: strPtr("MAT1"),
		TrayNumber: strPtr("A1"),
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateLocationReturns201(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("Create", mock.Anything, mock.AnythingOfType("*models.LocationCreate")).
		Return(testLocation(1), nil)

	w := performRequest(testRouter(mockSvc), http.MethodPost, "/locations", gin.H{
		"material_id": "MAT1",
		"tray_number": "A1",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var got models.MaterialLocation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, int64(1), got.ID)
	require.Equal(t, "MAT1", *got.MaterialID)
}

func TestGetLocationNotFound(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("Get", mock.Anything, int64(42)).Return(nil, repository.ErrNotFound)

	w := performRequest(testRouter(mockSvc), http.MethodGet, "/locations/42", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetLocationInvalidID(t *testing.T) {
	mockSvc := new(MockLocationService)

	w := performRequest(testRouter(mockSvc), http.MethodGet, "/locations/abc", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestListLocationsPassesFilters(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("List", mock.Anything, mock.MatchedBy(func(q service.ListQuery) bool {
		return q.MaterialID != nil && *q.MaterialID == "MAT1" &&
			q.TrayNumber == nil && q.Skip == 0 && q.Limit == 1
	})).Return([]models.MaterialLocation{*testLocation(1)}, nil)

	w := performRequest(testRouter(mockSvc), http.MethodGet, "/locations?material_id=MAT1&limit=1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestListLocationsInvalidSkip(t *testing.T) {
	mockSvc := new(MockLocationService)

	w := performRequest(testRouter(mockSvc), http.MethodGet, "/locations?skip=x", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestUpdateLocationNotFound(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("Update", mock.Anything, int64(42), mock.Anything).
		Return(nil, repository.ErrNotFound)

	w := performRequest(testRouter(mockSvc), http.MethodPut, "/locations/42", gin.H{
		"material_id": "X",
	})

	require.Equal(t, http.StatusNotFound, w.Code)
}

// Only keys present in the body end up set in the update payload
func TestUpdateLocationSparseDecoding(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(u *models.LocationUpdate) bool {
		return u.StatusNotes.Set && u.StatusNotes.Valid && u.StatusNotes.Value == "x" &&
			u.TaskID.Set && !u.TaskID.Valid &&
			!u.MaterialID.Set && !u.TrayNumber.Set && !u.ProcessID.Set
	})).Return(testLocation(1), nil)

	w := performRequest(testRouter(mockSvc), http.MethodPut, "/locations/1", gin.H{
		"status_notes": "x",
		"task_id":      nil,
	})

	require.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDeleteLocationReturns204(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("Delete", mock.Anything, int64(1)).Return(nil)

	w := performRequest(testRouter(mockSvc), http.MethodDelete, "/locations/1", nil)

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestClearLocationNotFound(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("ClearByID", mock.Anything, int64(42)).Return(nil, repository.ErrNotFound)

	w := performRequest(testRouter(mockSvc), http.MethodPost, "/locations/clear-one", gin.H{
		"location_id": 42,
	})

	require.Equal(t, http.StatusNotFound, w.Code)
}

// Both criteria are required before storage is touched
func TestClearByMaterialTrayRequiresBothCriteria(t *testing.T) {
	mockSvc := new(MockLocationService)
	router := testRouter(mockSvc)

	for _, body := range []gin.H{
		{},
		{"material_id": "PARTIAL_MAT"},
		{"tray_number": "PARTIAL_TRAY"},
	} {
		w := performRequest(router, http.MethodPost, "/locations/clear-by-material-tray", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
	}
	mockSvc.AssertNotCalled(t, "ClearByMaterialTray", mock.Anything, mock.Anything, mock.Anything)
}

func TestClearByMaterialTrayNotFound(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("ClearByMaterialTray", mock.Anything, "NOPE", "NOPE").
		Return(nil, repository.ErrNotFound)

	w := performRequest(testRouter(mockSvc), http.MethodPost, "/locations/clear-by-material-tray", gin.H{
		"material_id": "NOPE",
		"tray_number": "NOPE",
	})

	require.Equal(t, http.StatusNotFound, w.Code)
}

// A batch with missing IDs still returns 200 with the records that were
// actually cleared
func TestBatchClearPartialSuccess(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("BatchClear", mock.Anything, []int64{1, 999999}).
		Return([]models.MaterialLocation{*testLocation(1)}, nil)

	w := performRequest(testRouter(mockSvc), http.MethodPost, "/locations/batch-clear", gin.H{
		"location_ids": []int64{1, 999999},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var got []models.MaterialLocation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ID)
}

func TestBatchUpdateDecodesItems(t *testing.T) {
	mockSvc := new(MockLocationService)
	mockSvc.On("BatchUpdate", mock.Anything, mock.MatchedBy(func(items []models.BatchUpdateItem) bool {
		return len(items) == 1 && items[0].LocationID == 7 &&
			items[0].Data.MaterialID.Set && items[0].Data.MaterialID.Value == "MAT2"
	})).Return([]models.MaterialLocation{*testLocation(7)}, nil)

	w := performRequest(testRouter(mockSvc), http.MethodPost, "/locations/batch-update", gin.H{
		"updates": []gin.H{
			{"location_id": 7, "data": gin.H{"material_id": "MAT2"}},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}
