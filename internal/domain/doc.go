// Package domain defines the core types for the ad creative catalog.
//
// Types in this package are pure value objects with no I/O, no HTTP
// concerns and no knowledge of where they are persisted. They are the
// shared language between ingestion, media handling, trait
// classification, reports and the dashboard.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *os.File, no http.Request, no context.Context in struct fields
//   - JSON tags are allowed (they're metadata, not behavior)
//   - Pure helper methods are allowed
//   - Constants and enums belong here
package domain
