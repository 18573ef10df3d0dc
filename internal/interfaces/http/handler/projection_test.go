package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	collectionsapp "github.com/inmobiliaria/backend/internal/application/collections"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func projectionRouter(svc *mockProjectionService) *gin.Engine {
	h := NewProjectionHandler(svc)
	r := authed()
	r.GET("/collections/projections", h.Report)
	r.POST("/collections/projections/refresh", h.Refresh)
	r.PUT("/collections/projections/:period/notes", h.UpdateNotes)
	return r
}

func TestProjectionHandler_Report(t *testing.T) {
	svc := new(mockProjectionService)
	svc.On("Report", mock.Anything, testTenant, mock.MatchedBy(func(req collectionsapp.ProjectionRangeRequest) bool {
		return req.From != nil && req.From.Month() == time.January && req.To == nil
	})).Return(&collectionsapp.ProjectionReport{
		Projections:       []collectionsapp.ProjectionResponse{{Period: "2025-01"}},
		CompliancePercent: decimal.RequireFromString("71.43"),
	}, nil)

	w := do(projectionRouter(svc), http.MethodGet, "/collections/projections?from=2025-01-01", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got collectionsapp.ProjectionReport
	envelope(t, w, &got)
	require.Len(t, got.Projections, 1)
	assert.Equal(t, "2025-01", got.Projections[0].Period)
	assert.True(t, got.CompliancePercent.Equal(decimal.RequireFromString("71.43")))
}

func TestProjectionHandler_Refresh(t *testing.T) {
	svc := new(mockProjectionService)
	r := projectionRouter(svc)

	w := do(r, http.MethodPost, "/collections/projections/refresh", map[string]any{"year": 2025, "month": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("Refresh", mock.Anything, testTenant, shared.Date(2025, time.June, 1)).
		Return(&collectionsapp.ProjectionResponse{Period: "2025-06", ExpectedPayments: 3}, nil)
	w = do(r, http.MethodPost, "/collections/projections/refresh", map[string]any{"year": 2025, "month": 6})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got collectionsapp.ProjectionResponse
	envelope(t, w, &got)
	assert.Equal(t, 3, got.ExpectedPayments)
	svc.AssertExpectations(t)
}

func TestProjectionHandler_UpdateNotes(t *testing.T) {
	svc := new(mockProjectionService)
	r := projectionRouter(svc)

	w := do(r, http.MethodPut, "/collections/projections/junio/notes", map[string]any{"notes": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("UpdateNotes", mock.Anything, testTenant, shared.Date(2025, time.June, 1),
		collectionsapp.UpdateProjectionNotesRequest{Notes: "Dos locales en remodelación"}).
		Return(nil, shared.ErrNotFound).Once()
	w = do(r, http.MethodPut, "/collections/projections/2025-06/notes", map[string]any{"notes": "Dos locales en remodelación"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}
