// Package report implements leveled validation reports.
//
// Every message has a level (debug, info, warning, error, fatal). A report
// has two thresholds:
//
//   - the log level: messages below it are dropped, though they still raise
//     the report's current level;
//   - the exception threshold: messages at or above it are not recorded, and
//     Log returns an *AbortError so the caller can unwind.
//
// A report is successful while its current level stays below Error.
package report
