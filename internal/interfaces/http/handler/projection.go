package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	collectionsapp "github.com/inmobiliaria/backend/internal/application/collections"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// ProjectionHandler serves the monthly collection projections
type ProjectionHandler struct {
	BaseHandler
	projections ProjectionService
}

// NewProjectionHandler creates a new ProjectionHandler
func NewProjectionHandler(projections ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{projections: projections}
}

// Report godoc
// @ID           projectionReport
// @Summary      Projected against collected rent per month
// @Description  Defaults to the twelve months ending this month
// @Tags         collections
// @Produce      json
// @Param        from query string false "First day" format(date)
// @Param        to query string false "Last day" format(date)
// @Success      200 {object} APIResponse[collectionsapp.ProjectionReport]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collections/projections [get]
func (h *ProjectionHandler) Report(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req collectionsapp.ProjectionRangeRequest
	if !h.bindQuery(c, &req) {
		return
	}
	report, err := h.projections.Report(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}

// Refresh godoc
// @ID           refreshProjection
// @Summary      Rebuild the projection of a month from the ledger
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        request body collectionsapp.RefreshProjectionRequest true "Month"
// @Success      200 {object} APIResponse[collectionsapp.ProjectionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collections/projections/refresh [post]
func (h *ProjectionHandler) Refresh(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req collectionsapp.RefreshProjectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	period := shared.Date(req.Year, time.Month(req.Month), 1)
	projection, err := h.projections.Refresh(c.Request.Context(), tenantID, period)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, projection)
}

// UpdateNotes godoc
// @ID           updateProjectionNotes
// @Summary      Replace the notes of a month's projection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        period path string true "Month as YYYY-MM"
// @Param        request body collectionsapp.UpdateProjectionNotesRequest true "Notes"
// @Success      200 {object} APIResponse[collectionsapp.ProjectionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collections/projections/{period}/notes [put]
func (h *ProjectionHandler) UpdateNotes(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	period, err := time.Parse("2006-01", c.Param("period"))
	if err != nil {
		h.BadRequest(c, "period must be YYYY-MM")
		return
	}
	var req collectionsapp.UpdateProjectionNotesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	projection, err := h.projections.UpdateNotes(c.Request.Context(), tenantID, period, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, projection)
}
