package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/inmobiliaria/backend/internal/application/ledger"
	reportapp "github.com/inmobiliaria/backend/internal/application/report"
)

// ReportHandler serves read-only views over the ledger: aging, account
// statements and move-out settlements
type ReportHandler struct {
	BaseHandler
	aging      AgingService
	statements StatementService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(aging AgingService, statements StatementService) *ReportHandler {
	return &ReportHandler{aging: aging, statements: statements}
}

// AgingSummary godoc
// @ID           agingSummary
// @Summary      Aging buckets of the tenant, a contract or a person
// @Tags         reports
// @Produce      json
// @Param        contract_id query string false "Contract" format(uuid)
// @Param        person_id query string false "Person" format(uuid)
// @Param        as_of query string false "Day (default today)" format(date)
// @Success      200 {object} APIResponse[ledger.AgingSummary]
// @Security     BearerAuth
// @Router       /reports/aging/summary [get]
func (h *ReportHandler) AgingSummary(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req ledgerapp.AgingScopeRequest
	if !h.bindQuery(c, &req) {
		return
	}
	summary, err := h.aging.Summarize(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}

// AgingReport godoc
// @ID           agingReport
// @Summary      Aging per contract with totals
// @Tags         reports
// @Produce      json
// @Param        as_of query string false "Day (default today)" format(date)
// @Success      200 {object} APIResponse[ledgerapp.AgingReport]
// @Security     BearerAuth
// @Router       /reports/aging [get]
func (h *ReportHandler) AgingReport(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	asOf, ok := h.queryDate(c, "as_of")
	if !ok {
		return
	}
	report, err := h.aging.Report(c.Request.Context(), tenantID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}

// Statement godoc
// @ID           accountStatement
// @Summary      Account statement of a contract
// @Description  Charges and payments in date order with a running balance
// @Tags         reports
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        from query string false "First day" format(date)
// @Param        to query string false "Last day" format(date)
// @Success      200 {object} APIResponse[reportapp.AccountStatement]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id}/statement [get]
func (h *ReportHandler) Statement(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	from, ok := h.queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := h.queryDate(c, "to")
	if !ok {
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		h.BadRequest(c, "to must not be before from")
		return
	}
	statement, err := h.statements.AccountStatement(c.Request.Context(), tenantID, id, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, statement)
}

// Settlement godoc
// @ID           contractSettlement
// @Summary      Move-out settlement of a contract
// @Description  Pending balance against the deposit: deduction, refund and amount still owed
// @Tags         reports
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        as_of query string false "Day (default today)" format(date)
// @Success      200 {object} APIResponse[reportapp.Settlement]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id}/settlement [get]
func (h *ReportHandler) Settlement(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "contract")
	if !ok {
		return
	}
	asOf, ok := h.queryDate(c, "as_of")
	if !ok {
		return
	}
	settlement, err := h.statements.Settlement(c.Request.Context(), tenantID, id, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, settlement)
}

// Monthly godoc
// @ID           monthlyReport
// @Summary      Operating summary of a month
// @Description  Contracts in force, expected against collected rent, income and the portfolio split
// @Tags         reports
// @Produce      json
// @Param        year query int true "Year"
// @Param        month query int true "Month (1-12)"
// @Success      200 {object} APIResponse[reportapp.MonthlyReport]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	var req reportapp.MonthlyReportRequest
	if !h.bindQuery(c, &req) {
		return
	}
	report, err := h.statements.MonthlyReport(c.Request.Context(), tenantID, req.Year, req.Month)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}
