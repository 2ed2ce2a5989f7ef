// Package dataset provides the core tabular data model for strata.
//
// This package contains the schema and table types plus the derived
// statistics (class balance, per-column summaries, fingerprints). All other
// internal packages import dataset; dataset imports nothing internal. This
// ensures the data model remains the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Tables are immutable after construction; accessors return copies
//   - No NaN or Inf values anywhere (validated at construction)
//   - Binary columns hold only 0 or 1
//   - Column names are NFC-normalized for canonical encoding
//   - Fingerprints use domain-separated SHA-256 over canonical bytes,
//     never Go's map iteration order or struct layout
package dataset
