// Package domain contains the core entities and value objects for recbatch.
//
// This package has no dependencies on infrastructure concerns (HTTP, file
// system, logging) and contains only the batching rules.
//
// # Entities
//
//   - [Policy]: The three limits governing batch formation
//   - [Batch]: An ordered group of records within the policy limits
//   - [BatchSet]: The ordered result of one partitioning run
//
// Sizes are always measured in UTF-8 encoded bytes, and one megabyte is
// exactly [Megabyte] bytes.
package domain
