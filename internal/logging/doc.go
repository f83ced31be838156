// Package logging configures the structured slog logger used by the
// fzsearch command.
//
// Logs go to stderr by default so they never mix with search results on
// stdout. A log file with size-based rotation can be enabled through
// Config.FilePath.
package logging
