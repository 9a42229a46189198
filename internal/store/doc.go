// Package store provides SQLite-backed durable storage for trials and their
// activation sequences.
//
// The store is the sole owner of canonical trial data. Graphs, caches, and
// diff results refer to trials by id only and never extend a trial's
// lifetime.
//
// Activation reads are ordered deterministically (ORDER BY id ASC), which is
// exactly the preorder the summarization traversal requires: a call precedes
// every record of the calls it makes, and activation ids increase in record
// order.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: activations always belong to a trial
package store
