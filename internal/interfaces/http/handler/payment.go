package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/inmobiliaria/backend/internal/application/ledger"
)

// PaymentHandler serves payments and their application to charges
type PaymentHandler struct {
	BaseHandler
	payments PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create godoc
// @ID           createPayment
// @Summary      Record a payment
// @Description  Records the payment and, when allocations are given or auto_apply is set, applies it in the same transaction
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreatePaymentRequest true "Payment"
// @Success      201 {object} APIResponse[ledgerapp.ApplicationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req ledgerapp.CreatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.payments.CreatePayment(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// ApplyAutomatic godoc
// @ID           applyPaymentAutomatic
// @Summary      Apply a payment oldest charge first
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.ApplicationResult]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/apply [post]
func (h *PaymentHandler) ApplyAutomatic(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}
	result, err := h.payments.ApplyAutomatic(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// ApplyManual godoc
// @ID           applyPaymentManual
// @Summary      Apply a payment to chosen charges
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body ledgerapp.ApplyManualRequest true "Allocations"
// @Success      200 {object} APIResponse[ledgerapp.ApplicationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/allocations [post]
func (h *PaymentHandler) ApplyManual(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}
	var req ledgerapp.ApplyManualRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.payments.ApplyManual(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelPayment
// @Summary      Cancel a payment
// @Description  Reverses every application of the payment and restores the charges
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body ledgerapp.CancelPaymentRequest false "Reason"
// @Success      200 {object} APIResponse[ledgerapp.PaymentResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}
	var req ledgerapp.CancelPaymentRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.CancelPayment(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, payment)
}

// Reject godoc
// @ID           rejectPayment
// @Summary      Reject a bounced payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body ledgerapp.RejectPaymentRequest true "Reason"
// @Success      200 {object} APIResponse[ledgerapp.PaymentResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/reject [post]
func (h *PaymentHandler) Reject(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}
	var req ledgerapp.RejectPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.RejectPayment(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, payment)
}

// GetByID godoc
// @ID           getPayment
// @Summary      Get a payment with its applications
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}
	payment, err := h.payments.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, payment)
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Param        contract_id query string false "Contract" format(uuid)
// @Param        person_id query string false "Payer" format(uuid)
// @Param        status query string false "Status" Enums(PENDING, APPLIED, PARTIAL, CANCELLED, REJECTED)
// @Param        date_from query string false "Paid on or after" format(date)
// @Param        date_to query string false "Paid on or before" format(date)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ledgerapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var filter ledgerapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	payments, total, err := h.payments.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}
