// Package models holds the GORM models behind the lease, ledger and
// collections tables. Domain types carry no table mapping; each model
// converts to and from its domain type with ToDomain and FromDomain.
//
// Files:
//   - base.go: identity, version and tenant columns shared by every model
//   - lease.go: contracts
//   - ledger.go: charges, payments and payment applications
//   - collections.go: delinquent accounts and follow-ups
//   - party.go: read-only views of the properties and persons tables
package models
