// Package errors provides coded, user-facing errors for the xbow CLI and
// HTTP API.
//
// Library packages report failures with sentinel errors (for example
// track.ErrBorrowConflict). At the edges of the program those errors are
// classified into an *Error carrying a stable code, a category, an HTTP
// status and, for configuration files, the source location.
//
// # Error Categories
//
//   - runtime: store access failures (borrow conflicts, missing entries)
//   - validation: malformed requests
//   - config: invalid xbow.json or environment overrides
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New(errors.CodeConfigSyntax).
//	    WithSource("xbow.json", data, 3, 28).
//	    WithSuggestion("Remove the trailing comma")
//
//	errors.Fprint(os.Stderr, err)
//
// prints
//
//	ERROR X041: Invalid configuration file
//
//	  xbow.json:3:28
//
//	       2 │   "addr": ":8080",
//	  →    3 │   "log": {"level": "info",},
//	         │                            ^
//	       4 │ }
//
//	  xbow.json could not be parsed as JSON.
//
//	  Hint: Remove the trailing comma
package errors
