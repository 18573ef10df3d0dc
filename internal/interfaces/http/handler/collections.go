package handler

import (
	"github.com/gin-gonic/gin"
	collectionsapp "github.com/inmobiliaria/backend/internal/application/collections"
)

// CollectionsHandler serves the delinquent portfolio
type CollectionsHandler struct {
	BaseHandler
	collections CollectionsService
}

// NewCollectionsHandler creates a new CollectionsHandler
func NewCollectionsHandler(collections CollectionsService) *CollectionsHandler {
	return &CollectionsHandler{collections: collections}
}

// asOf reads an optional as_of day from the query string
func (h *CollectionsHandler) asOf(c *gin.Context) (*collectionsapp.AsOfRequest, bool) {
	var req collectionsapp.AsOfRequest
	if !h.bindQuery(c, &req) {
		return nil, false
	}
	return &req, true
}

// Sync godoc
// @ID           syncCollections
// @Summary      Sync the portfolio with the ledger
// @Description  Opens accounts for overdue charges, refreshes open ones and closes the settled
// @Tags         collections
// @Produce      json
// @Param        as_of query string false "Day to sync as of" format(date)
// @Success      200 {object} APIResponse[collectionsapp.SyncResult]
// @Security     BearerAuth
// @Router       /collections/sync [post]
func (h *CollectionsHandler) Sync(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	req, ok := h.asOf(c)
	if !ok {
		return
	}
	result, err := h.collections.SyncFromAging(c.Request.Context(), tenantID, req.AsOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// AccrueAll godoc
// @ID           accrueAllPenalties
// @Summary      Accrue penalties on every open account
// @Tags         collections
// @Produce      json
// @Param        as_of query string false "Day to accrue to" format(date)
// @Success      200 {object} APIResponse[collectionsapp.AccrualResult]
// @Security     BearerAuth
// @Router       /collections/accrue [post]
func (h *CollectionsHandler) AccrueAll(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	req, ok := h.asOf(c)
	if !ok {
		return
	}
	result, err := h.collections.AccrueAll(c.Request.Context(), tenantID, req.AsOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Accrue godoc
// @ID           accruePenalty
// @Summary      Accrue the penalty of one account
// @Tags         collections
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        as_of query string false "Day to accrue to" format(date)
// @Success      200 {object} APIResponse[collectionsapp.AccountResponse]
// @Security     BearerAuth
// @Router       /collections/{id}/accrue [post]
func (h *CollectionsHandler) Accrue(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}
	req, ok := h.asOf(c)
	if !ok {
		return
	}
	account, err := h.collections.AccruePenalty(c.Request.Context(), tenantID, id, req.AsOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, account)
}

// RegisterFollowUp godoc
// @ID           registerFollowUp
// @Summary      Register a contact attempt
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        request body collectionsapp.FollowUpRequest true "Follow-up"
// @Success      201 {object} APIResponse[collectionsapp.FollowUpResult]
// @Failure      422 {object} ErrorResponse "Account is closed"
// @Security     BearerAuth
// @Router       /collections/{id}/follow-ups [post]
func (h *CollectionsHandler) RegisterFollowUp(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}
	var req collectionsapp.FollowUpRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.UserID = getUserID(c)

	result, err := h.collections.RegisterFollowUp(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// FollowUps godoc
// @ID           listFollowUps
// @Summary      Contact history of an account
// @Tags         collections
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[[]collectionsapp.FollowUpResponse]
// @Security     BearerAuth
// @Router       /collections/{id}/follow-ups [get]
func (h *CollectionsHandler) FollowUps(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}
	followUps, err := h.collections.FollowUps(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, followUps)
}

// RecordPayment godoc
// @ID           recordCollectionPayment
// @Summary      Lower the pending amount of an account
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        request body collectionsapp.RecordPaymentRequest true "Amount"
// @Success      200 {object} APIResponse[collectionsapp.AccountResponse]
// @Security     BearerAuth
// @Router       /collections/{id}/payments [post]
func (h *CollectionsHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}
	var req collectionsapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.collections.RecordPayment(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, account)
}

// ChangeState godoc
// @ID           changeCollectionState
// @Summary      Move an account through the collection workflow
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        request body collectionsapp.ChangeStateRequest true "Target state"
// @Success      200 {object} APIResponse[collectionsapp.AccountResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collections/{id}/state [put]
func (h *CollectionsHandler) ChangeState(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}
	var req collectionsapp.ChangeStateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.collections.ChangeState(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, account)
}

// BillPenalty godoc
// @ID           billPenalty
// @Summary      Bill the accrued penalty as a charge
// @Tags         collections
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      201 {object} APIResponse[collectionsapp.BillPenaltyResult]
// @Failure      422 {object} ErrorResponse "Nothing left to bill"
// @Security     BearerAuth
// @Router       /collections/{id}/bill-penalty [post]
func (h *CollectionsHandler) BillPenalty(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}
	result, err := h.collections.BillPenalty(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID godoc
// @ID           getDelinquentAccount
// @Summary      Get a delinquent account
// @Tags         collections
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[collectionsapp.AccountResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collections/{id} [get]
func (h *CollectionsHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}
	account, err := h.collections.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, account)
}

// List godoc
// @ID           listDelinquentAccounts
// @Summary      List delinquent accounts
// @Tags         collections
// @Produce      json
// @Param        state query string false "Collection state"
// @Param        bucket query string false "Aging bucket"
// @Param        contract_id query string false "Contract" format(uuid)
// @Param        only_open query bool false "Hide closed accounts"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]collectionsapp.AccountResponse]
// @Security     BearerAuth
// @Router       /collections [get]
func (h *CollectionsHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var filter collectionsapp.AccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	accounts, total, err := h.collections.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, accounts, total, filter.Page, filter.PageSize)
}

// DueActions godoc
// @ID           collectionDueActions
// @Summary      Follow-ups whose next action falls due
// @Tags         collections
// @Produce      json
// @Param        day query string false "Day (default today)" format(date)
// @Success      200 {object} APIResponse[[]collectionsapp.FollowUpResponse]
// @Security     BearerAuth
// @Router       /collections/due-actions [get]
func (h *CollectionsHandler) DueActions(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	day, ok := h.queryDate(c, "day")
	if !ok {
		return
	}
	actions, err := h.collections.DueActions(c.Request.Context(), tenantID, day)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, actions)
}

// Summary godoc
// @ID           collectionSummary
// @Summary      Portfolio totals per state and bucket
// @Tags         collections
// @Produce      json
// @Success      200 {object} APIResponse[collections.Summary]
// @Security     BearerAuth
// @Router       /collections/summary [get]
func (h *CollectionsHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	summary, err := h.collections.Summary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}

// Portfolio godoc
// @ID           collectionsPortfolio
// @Summary      Overdue portfolio report
// @Description  Every open account ordered by days overdue with its latest follow-up and the portfolio totals
// @Tags         collections
// @Produce      json
// @Success      200 {object} APIResponse[collectionsapp.PortfolioReport]
// @Security     BearerAuth
// @Router       /collections/portfolio [get]
func (h *CollectionsHandler) Portfolio(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	report, err := h.collections.PortfolioReport(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}
