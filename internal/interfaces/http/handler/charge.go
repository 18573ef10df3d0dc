package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/inmobiliaria/backend/internal/application/ledger"
)

// ChargeHandler serves charges: monthly generation, ad-hoc charges and
// the overdue sweep
type ChargeHandler struct {
	BaseHandler
	charges ChargeService
}

// NewChargeHandler creates a new ChargeHandler
func NewChargeHandler(charges ChargeService) *ChargeHandler {
	return &ChargeHandler{charges: charges}
}

// Generate godoc
// @ID           generateCharges
// @Summary      Generate the monthly rent charges
// @Description  Creates the fixed recurring charge of every in-force contract for the period. Running it twice creates nothing new.
// @Tags         charges
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.GenerateChargesRequest true "Period"
// @Success      200 {object} APIResponse[ledgerapp.GenerateChargesResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /charges/generate [post]
func (h *ChargeHandler) Generate(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req ledgerapp.GenerateChargesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.charges.GenerateFixedCharges(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Create godoc
// @ID           createCharge
// @Summary      Raise an ad-hoc charge
// @Tags         charges
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateChargeRequest true "Charge"
// @Success      201 {object} APIResponse[ledgerapp.ChargeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /charges [post]
func (h *ChargeHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req ledgerapp.CreateChargeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	charge, err := h.charges.CreateAdHocCharge(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, charge)
}

// Cancel godoc
// @ID           cancelCharge
// @Summary      Cancel an unpaid charge
// @Tags         charges
// @Accept       json
// @Produce      json
// @Param        id path string true "Charge ID" format(uuid)
// @Param        request body ledgerapp.CancelChargeRequest false "Reason"
// @Success      200 {object} APIResponse[ledgerapp.ChargeResponse]
// @Failure      422 {object} ErrorResponse "Charge has payments applied"
// @Security     BearerAuth
// @Router       /charges/{id}/cancel [post]
func (h *ChargeHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "charge")
	if !ok {
		return
	}
	var req ledgerapp.CancelChargeRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	charge, err := h.charges.CancelCharge(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, charge)
}

// MarkOverdue godoc
// @ID           markChargesOverdue
// @Summary      Run the overdue sweep for the tenant
// @Tags         charges
// @Produce      json
// @Success      200 {object} APIResponse[ledgerapp.OverdueScanResult]
// @Security     BearerAuth
// @Router       /charges/mark-overdue [post]
func (h *ChargeHandler) MarkOverdue(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	result, err := h.charges.MarkOverdue(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// GetByID godoc
// @ID           getCharge
// @Summary      Get a charge
// @Tags         charges
// @Produce      json
// @Param        id path string true "Charge ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.ChargeResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /charges/{id} [get]
func (h *ChargeHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "charge")
	if !ok {
		return
	}
	charge, err := h.charges.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, charge)
}

// List godoc
// @ID           listCharges
// @Summary      List charges
// @Tags         charges
// @Produce      json
// @Param        contract_id query string false "Contract" format(uuid)
// @Param        status query string false "Display status" Enums(PENDING, PARTIAL, PAID, OVERDUE, CANCELLED)
// @Param        type query string false "Charge type"
// @Param        due_from query string false "Due on or after" format(date)
// @Param        due_to query string false "Due on or before" format(date)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ledgerapp.ChargeResponse]
// @Security     BearerAuth
// @Router       /charges [get]
func (h *ChargeHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var filter ledgerapp.ChargeListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	charges, total, err := h.charges.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, charges, total, filter.Page, filter.PageSize)
}

// Stats godoc
// @ID           chargeStats
// @Summary      Charge totals per status
// @Tags         charges
// @Produce      json
// @Success      200 {object} APIResponse[ledger.ChargeStats]
// @Security     BearerAuth
// @Router       /charges/stats [get]
func (h *ChargeHandler) Stats(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	stats, err := h.charges.Stats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, stats)
}
