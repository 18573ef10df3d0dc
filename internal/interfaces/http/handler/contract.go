package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	leaseapp "github.com/inmobiliaria/backend/internal/application/lease"
)

// ContractHandler serves the lease contract lifecycle
type ContractHandler struct {
	BaseHandler
	contracts ContractService
	charges   ChargeService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contracts ContractService, charges ChargeService) *ContractHandler {
	return &ContractHandler{contracts: contracts, charges: charges}
}

// Create godoc
// @ID           createContract
// @Summary      Create a draft contract
// @Description  Registers a contract in DRAFT. The number is generated when omitted.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request body leaseapp.CreateContractRequest true "Contract terms"
// @Success      201 {object} APIResponse[leaseapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req leaseapp.CreateContractRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = getUserID(c)

	contract, err := h.contracts.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, contract)
}

// GetByID godoc
// @ID           getContract
// @Summary      Get a contract
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[leaseapp.ContractResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id} [get]
func (h *ContractHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	contract, err := h.contracts.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, contract)
}

// List godoc
// @ID           listContracts
// @Summary      List contracts
// @Tags         contracts
// @Produce      json
// @Param        search query string false "Contract number search"
// @Param        status query string false "Display status" Enums(DRAFT, ACTIVE, EXPIRING_SOON, EXPIRED, TERMINATED, RENEWED, CANCELLED)
// @Param        property_id query string false "Property" format(uuid)
// @Param        person_id query string false "Lessee" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]leaseapp.ContractResponse]
// @Security     BearerAuth
// @Router       /contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var filter leaseapp.ContractListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	contracts, total, err := h.contracts.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, contracts, total, filter.Page, filter.PageSize)
}

// ListExpiring godoc
// @ID           listExpiringContracts
// @Summary      Contracts ending soon
// @Description  In-force contracts whose end date falls within the next days (default: the configured window)
// @Tags         contracts
// @Produce      json
// @Param        days query int false "Window in days"
// @Success      200 {object} APIResponse[[]leaseapp.ContractResponse]
// @Security     BearerAuth
// @Router       /contracts/expiring [get]
func (h *ContractHandler) ListExpiring(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 366 {
			h.BadRequest(c, "days must be between 0 and 366")
			return
		}
		days = n
	}
	contracts, err := h.contracts.ListExpiring(c.Request.Context(), tenantID, days)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, contracts)
}

// Stats godoc
// @ID           contractStats
// @Summary      Contract counts per status
// @Tags         contracts
// @Produce      json
// @Success      200 {object} APIResponse[leaseapp.ContractStats]
// @Security     BearerAuth
// @Router       /contracts/stats [get]
func (h *ContractHandler) Stats(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	stats, err := h.contracts.Stats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, stats)
}

// Update godoc
// @ID           updateContract
// @Summary      Replace the terms of a draft
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body leaseapp.UpdateContractRequest true "New terms"
// @Success      200 {object} APIResponse[leaseapp.ContractResponse]
// @Failure      422 {object} ErrorResponse "Contract is not a draft"
// @Security     BearerAuth
// @Router       /contracts/{id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	var req leaseapp.UpdateContractRequest
	if !h.bindJSON(c, &req) {
		return
	}
	contract, err := h.contracts.UpdateDraft(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, contract)
}

// UpdateNotes godoc
// @ID           updateContractNotes
// @Summary      Set contract notes
// @Description  Notes stay editable in every status
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body leaseapp.UpdateNotesRequest true "Notes"
// @Success      200 {object} APIResponse[leaseapp.ContractResponse]
// @Security     BearerAuth
// @Router       /contracts/{id}/notes [patch]
func (h *ContractHandler) UpdateNotes(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	var req leaseapp.UpdateNotesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	contract, err := h.contracts.UpdateNotes(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, contract)
}

// Activate godoc
// @ID           activateContract
// @Summary      Activate a draft
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[leaseapp.ContractResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id}/activate [post]
func (h *ContractHandler) Activate(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	contract, err := h.contracts.Activate(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, contract)
}

// Terminate godoc
// @ID           terminateContract
// @Summary      Terminate an in-force contract early
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body leaseapp.TerminateContractRequest true "Reason"
// @Success      200 {object} APIResponse[leaseapp.ContractResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id}/terminate [post]
func (h *ContractHandler) Terminate(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	var req leaseapp.TerminateContractRequest
	if !h.bindJSON(c, &req) {
		return
	}
	contract, err := h.contracts.Terminate(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, contract)
}

// Cancel godoc
// @ID           cancelContract
// @Summary      Cancel a contract
// @Description  Allowed while no charge has been paid
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body leaseapp.CancelContractRequest false "Reason"
// @Success      200 {object} APIResponse[leaseapp.ContractResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	var req leaseapp.CancelContractRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	contract, err := h.contracts.Cancel(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, contract)
}

// Renew godoc
// @ID           renewContract
// @Summary      Renew an in-force contract
// @Description  Closes the contract as RENEWED and creates its active successor starting the day after it ends
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body leaseapp.RenewContractRequest true "Renewal terms"
// @Success      201 {object} APIResponse[leaseapp.RenewalResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id}/renew [post]
func (h *ContractHandler) Renew(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	var req leaseapp.RenewContractRequest
	if !h.bindJSON(c, &req) {
		return
	}
	renewal, err := h.contracts.Renew(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, renewal)
}

// Delete godoc
// @ID           deleteContract
// @Summary      Delete a contract
// @Description  Drafts without charges are removed; anything else is deactivated
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[leaseapp.DeleteResult]
// @Security     BearerAuth
// @Router       /contracts/{id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	result, err := h.contracts.Delete(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// ScanExpirations godoc
// @ID           scanContractExpirations
// @Summary      Run the expiry scan for the tenant
// @Tags         contracts
// @Produce      json
// @Success      200 {object} APIResponse[leaseapp.ExpiryScanResult]
// @Security     BearerAuth
// @Router       /contracts/scan-expirations [post]
func (h *ContractHandler) ScanExpirations(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	result, err := h.contracts.ScanExpirations(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Charges godoc
// @ID           listContractCharges
// @Summary      Charges of a contract
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[[]ledgerapp.ChargeResponse]
// @Security     BearerAuth
// @Router       /contracts/{id}/charges [get]
func (h *ContractHandler) Charges(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	charges, err := h.charges.ListByContract(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, charges)
}

// Balance godoc
// @ID           contractBalance
// @Summary      Outstanding balance of a contract
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.OutstandingBalance]
// @Security     BearerAuth
// @Router       /contracts/{id}/balance [get]
func (h *ContractHandler) Balance(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	balance, err := h.charges.OutstandingBalance(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, balance)
}
