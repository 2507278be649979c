// Package cli parses command-line arguments, validates user input and maps
// failures to process exit codes. It turns flags into the app.Config used to
// load and balance a problem.
package cli
