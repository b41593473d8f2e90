// Package samplestore persists batches of prior samples.
//
// A Batch records the values drawn for one parameter together with the
// prior that produced them and the seed of the generator, so a run can be
// inspected or reproduced later. Two backends implement Store:
//
//   - MemoryStore keeps batches in a map and is intended for tests and
//     one-shot command invocations.
//   - SQLiteStore persists batches in a SQLite database (modernc.org/sqlite,
//     no cgo).
package samplestore
