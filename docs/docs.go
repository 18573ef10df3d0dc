// Package docs registers the OpenAPI document of the ledger API with swag.
// Regenerate it from the handler annotations with
//
//	swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/charges/generate": {"post": {"operationId": "generateCharges", "summary": "Generate the monthly rent charges", "tags": ["charges"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/charges": {"post": {"operationId": "createCharge", "summary": "Raise an ad-hoc charge", "tags": ["charges"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}, "get": {"operationId": "listCharges", "summary": "List charges", "tags": ["charges"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/charges/{id}/cancel": {"post": {"operationId": "cancelCharge", "summary": "Cancel an unpaid charge", "tags": ["charges"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/charges/mark-overdue": {"post": {"operationId": "markChargesOverdue", "summary": "Run the overdue sweep for the tenant", "tags": ["charges"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/charges/{id}": {"get": {"operationId": "getCharge", "summary": "Get a charge", "tags": ["charges"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/charges/stats": {"get": {"operationId": "chargeStats", "summary": "Charge totals per status", "tags": ["charges"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/sync": {"post": {"operationId": "syncCollections", "summary": "Sync the portfolio with the ledger", "tags": ["collections"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/accrue": {"post": {"operationId": "accrueAllPenalties", "summary": "Accrue penalties on every open account", "tags": ["collections"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/{id}/accrue": {"post": {"operationId": "accruePenalty", "summary": "Accrue the penalty of one account", "tags": ["collections"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/{id}/follow-ups": {"post": {"operationId": "registerFollowUp", "summary": "Register a contact attempt", "tags": ["collections"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}, "get": {"operationId": "listFollowUps", "summary": "Contact history of an account", "tags": ["collections"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/{id}/payments": {"post": {"operationId": "recordCollectionPayment", "summary": "Lower the pending amount of an account", "tags": ["collections"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/{id}/state": {"put": {"operationId": "changeCollectionState", "summary": "Move an account through the collection workflow", "tags": ["collections"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/{id}/bill-penalty": {"post": {"operationId": "billPenalty", "summary": "Bill the accrued penalty as a charge", "tags": ["collections"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/{id}": {"get": {"operationId": "getDelinquentAccount", "summary": "Get a delinquent account", "tags": ["collections"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections": {"get": {"operationId": "listDelinquentAccounts", "summary": "List delinquent accounts", "tags": ["collections"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/due-actions": {"get": {"operationId": "collectionDueActions", "summary": "Follow-ups whose next action falls due", "tags": ["collections"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/collections/summary": {"get": {"operationId": "collectionSummary", "summary": "Portfolio totals per state and bucket", "tags": ["collections"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts": {"post": {"operationId": "createContract", "summary": "Create a draft contract", "tags": ["contracts"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}, "get": {"operationId": "listContracts", "summary": "List contracts", "tags": ["contracts"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}": {"get": {"operationId": "getContract", "summary": "Get a contract", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}, "put": {"operationId": "updateContract", "summary": "Replace the terms of a draft", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}, "delete": {"operationId": "deleteContract", "summary": "Delete a contract", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/expiring": {"get": {"operationId": "listExpiringContracts", "summary": "Contracts ending soon", "tags": ["contracts"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/stats": {"get": {"operationId": "contractStats", "summary": "Contract counts per status", "tags": ["contracts"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/notes": {"patch": {"operationId": "updateContractNotes", "summary": "Set contract notes", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/activate": {"post": {"operationId": "activateContract", "summary": "Activate a draft", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/terminate": {"post": {"operationId": "terminateContract", "summary": "Terminate an in-force contract early", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/cancel": {"post": {"operationId": "cancelContract", "summary": "Cancel a contract", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/renew": {"post": {"operationId": "renewContract", "summary": "Renew an in-force contract", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/scan-expirations": {"post": {"operationId": "scanContractExpirations", "summary": "Run the expiry scan for the tenant", "tags": ["contracts"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/charges": {"get": {"operationId": "listContractCharges", "summary": "Charges of a contract", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/balance": {"get": {"operationId": "contractBalance", "summary": "Outstanding balance of a contract", "tags": ["contracts"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/health": {"get": {"operationId": "health", "summary": "Liveness check", "tags": ["system"], "responses": {"200": {"description": "OK"}}}},
        "/ready": {"get": {"operationId": "ready", "summary": "Readiness check", "tags": ["system"], "responses": {"200": {"description": "OK"}}}},
        "/payments": {"post": {"operationId": "createPayment", "summary": "Record a payment", "tags": ["payments"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}, "get": {"operationId": "listPayments", "summary": "List payments", "tags": ["payments"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/payments/{id}/apply": {"post": {"operationId": "applyPaymentAutomatic", "summary": "Apply a payment oldest charge first", "tags": ["payments"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/payments/{id}/allocations": {"post": {"operationId": "applyPaymentManual", "summary": "Apply a payment to chosen charges", "tags": ["payments"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/payments/{id}/cancel": {"post": {"operationId": "cancelPayment", "summary": "Cancel a payment", "tags": ["payments"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/payments/{id}/reject": {"post": {"operationId": "rejectPayment", "summary": "Reject a bounced payment", "tags": ["payments"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/payments/{id}": {"get": {"operationId": "getPayment", "summary": "Get a payment with its applications", "tags": ["payments"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/reports/aging/summary": {"get": {"operationId": "agingSummary", "summary": "Aging buckets of the tenant, a contract or a person", "tags": ["reports"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/reports/aging": {"get": {"operationId": "agingReport", "summary": "Aging per contract with totals", "tags": ["reports"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/statement": {"get": {"operationId": "accountStatement", "summary": "Account statement of a contract", "tags": ["reports"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/settlement": {"get": {"operationId": "contractSettlement", "summary": "Move-out settlement of a contract", "tags": ["reports"], "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/scheduler/status": {"get": {"operationId": "schedulerStatus", "summary": "Scheduler state", "tags": ["scheduler"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/scheduler/run": {"post": {"operationId": "runSchedulerJob", "summary": "Queue a batch job now", "tags": ["scheduler"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/scheduler/jobs": {"get": {"operationId": "listSchedulerJobs", "summary": "Recent batch runs", "tags": ["scheduler"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token authentication. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds the document metadata substituted into docTemplate
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Inmobiliaria Ledger API",
	Description:      "Lease contracts, rent charges, payments, aging and collections for property rentals",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
