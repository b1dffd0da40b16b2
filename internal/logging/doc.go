// Package logging provides implementations of bssimport.Logger.
//
//   - ConsoleLogger: human-readable lines on stderr
//   - JSONLogger: one zerolog JSON object per line, for log shippers
//   - NullLogger: discards everything (tests)
//
// All implementations are safe for concurrent use; every worker logs
// through the same instance.
package logging
