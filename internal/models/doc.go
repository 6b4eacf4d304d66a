// Package models defines the core domain models for Splitt.
//
// # Models
//
//   - Bill: the shared bill state (participants, items, tax, tip and split modes)
//   - Participant: a person sharing the bill
//   - Item: a priced line, assigned to a subset of participants
//   - IDs: the per-bill id allocator for participants and items
//
// # Design Principles
//
// 1. **Plain data**: models carry no behaviour beyond small helpers; the split is
// computed by the calculator package and mutations live in the bill package.
// 2. **Integer ids scoped to a bill**: participants and items get ids from the bill's
// own counters, so two bills never share id state.
// 3. **Exact amounts**: money is held as decimal.Decimal and only rounded when rendered.
// 4. **Avoid circular references**: items reference participants by id, never by pointer.
package models
