// Package domain contains shared domain types used across aggregate
// sub-packages. Aggregate-specific types live in sub-packages
// (domain/task, domain/project). This root package holds sentinel errors,
// validation types, the domain event contract, and the per-aggregate
// event buffer that aggregates embed.
package domain
