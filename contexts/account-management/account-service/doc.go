// Package accounts implements the account service: users, their payment cards, and the
// cache layer in front of both.
//
// Layering:
// - domain: entities, access policy, validation rules, errors
// - application: commands/queries using explicit ports
// - ports: stable boundaries for the store, the cache spaces and authentication
// - adapters: concrete HTTP, memory, postgres (gorm), cache and auth implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Domain and application never import adapters or platform packages.
// - Cache writes happen only after the owning transaction commits.
package accounts
