package router

import (
	"github.com/inmobiliaria/backend/internal/infrastructure/auth"
	"github.com/inmobiliaria/backend/internal/interfaces/http/handler"
	"github.com/inmobiliaria/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the API handlers mounted by LedgerGroups
type Handlers struct {
	Contracts   *handler.ContractHandler
	Charges     *handler.ChargeHandler
	Payments    *handler.PaymentHandler
	Collections *handler.CollectionsHandler
	Projections *handler.ProjectionHandler
	Reports     *handler.ReportHandler
	Scheduler   *handler.SchedulerHandler
}

// LedgerGroups builds the route groups of the ledger API. Every read is
// open to contracts:read and contracts:write holders.
func LedgerGroups(h Handlers) []RouteRegistrar {
	read := middleware.RequirePermission(auth.PermissionContractsRead, auth.PermissionContractsWrite)
	writeContracts := middleware.RequirePermission(auth.PermissionContractsWrite)
	writeCharges := middleware.RequirePermission(auth.PermissionChargesWrite)
	writePayments := middleware.RequirePermission(auth.PermissionPaymentsWrite)
	writeCollections := middleware.RequirePermission(auth.PermissionCollectionsWrite)
	reports := middleware.RequirePermission(auth.PermissionReportsRead)

	contracts := NewDomainGroup("contracts", "/contracts")
	contracts.POST("", writeContracts, h.Contracts.Create)
	contracts.GET("", read, h.Contracts.List)
	contracts.GET("/expiring", read, h.Contracts.ListExpiring)
	contracts.GET("/stats", read, h.Contracts.Stats)
	contracts.POST("/scan-expirations", writeContracts, h.Contracts.ScanExpirations)
	contracts.GET("/:id", read, h.Contracts.GetByID)
	contracts.PUT("/:id", writeContracts, h.Contracts.Update)
	contracts.PATCH("/:id/notes", writeContracts, h.Contracts.UpdateNotes)
	contracts.DELETE("/:id", writeContracts, h.Contracts.Delete)
	contracts.POST("/:id/activate", writeContracts, h.Contracts.Activate)
	contracts.POST("/:id/terminate", writeContracts, h.Contracts.Terminate)
	contracts.POST("/:id/cancel", writeContracts, h.Contracts.Cancel)
	contracts.POST("/:id/renew", writeContracts, h.Contracts.Renew)
	contracts.GET("/:id/charges", read, h.Contracts.Charges)
	contracts.GET("/:id/balance", read, h.Contracts.Balance)
	contracts.GET("/:id/statement", reports, h.Reports.Statement)
	contracts.GET("/:id/settlement", reports, h.Reports.Settlement)

	charges := NewDomainGroup("charges", "/charges")
	charges.GET("", read, h.Charges.List)
	charges.POST("", writeCharges, h.Charges.Create)
	charges.GET("/stats", read, h.Charges.Stats)
	charges.POST("/generate", writeCharges, h.Charges.Generate)
	charges.POST("/mark-overdue", writeCharges, h.Charges.MarkOverdue)
	charges.GET("/:id", read, h.Charges.GetByID)
	charges.POST("/:id/cancel", writeCharges, h.Charges.Cancel)

	payments := NewDomainGroup("payments", "/payments")
	payments.GET("", read, h.Payments.List)
	payments.POST("", writePayments, h.Payments.Create)
	payments.GET("/:id", read, h.Payments.GetByID)
	payments.POST("/:id/apply", writePayments, h.Payments.ApplyAutomatic)
	payments.POST("/:id/allocations", writePayments, h.Payments.ApplyManual)
	payments.POST("/:id/cancel", writePayments, h.Payments.Cancel)
	payments.POST("/:id/reject", writePayments, h.Payments.Reject)

	collections := NewDomainGroup("collections", "/collections")
	collections.GET("", read, h.Collections.List)
	collections.GET("/summary", read, h.Collections.Summary)
	collections.GET("/due-actions", read, h.Collections.DueActions)
	collections.GET("/portfolio", reports, h.Collections.Portfolio)
	collections.GET("/projections", reports, h.Projections.Report)
	collections.POST("/projections/refresh", writeCollections, h.Projections.Refresh)
	collections.PUT("/projections/:period/notes", writeCollections, h.Projections.UpdateNotes)
	collections.POST("/sync", writeCollections, h.Collections.Sync)
	collections.POST("/accrue", writeCollections, h.Collections.AccrueAll)
	collections.GET("/:id", read, h.Collections.GetByID)
	collections.POST("/:id/accrue", writeCollections, h.Collections.Accrue)
	collections.GET("/:id/follow-ups", read, h.Collections.FollowUps)
	collections.POST("/:id/follow-ups", writeCollections, h.Collections.RegisterFollowUp)
	collections.POST("/:id/payments", writeCollections, h.Collections.RecordPayment)
	collections.PUT("/:id/state", writeCollections, h.Collections.ChangeState)
	collections.POST("/:id/bill-penalty", writeCollections, h.Collections.BillPenalty)

	reportGroup := NewDomainGroup("reports", "/reports").Use(reports)
	reportGroup.GET("/aging", h.Reports.AgingReport)
	reportGroup.GET("/aging/summary", h.Reports.AgingSummary)
	reportGroup.GET("/monthly", h.Reports.Monthly)

	schedulerGroup := NewDomainGroup("scheduler", "/scheduler").
		Use(middleware.RequirePermission(auth.PermissionSchedulerRun))
	schedulerGroup.GET("/status", h.Scheduler.Status)
	schedulerGroup.GET("/jobs", h.Scheduler.Jobs)
	schedulerGroup.POST("/run", h.Scheduler.Run)

	return []RouteRegistrar{contracts, charges, payments, collections, reportGroup, schedulerGroup}
}
