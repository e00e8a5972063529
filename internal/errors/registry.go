package errors

import (
	"net/http"
	"sort"
)

// Registered codes referenced from code.
const (
	CodeBorrowConflict = "X001"
	CodeNotFound       = "X002"
	CodeActionPanic    = "X003"
	CodeLoopClosed     = "X004"
	CodeCanceled       = "X005"
	CodeInternal       = "X009"

	CodeBadRequest  = "X020"
	CodeEmptyText   = "X021"
	CodeInvalidID   = "X022"
	CodeInvalidPath = "X023"

	CodeConfigNotFound = "X040"
	CodeConfigSyntax   = "X041"
	CodeConfigAddr     = "X042"
	CodeConfigLevel    = "X043"
	CodeConfigFormat   = "X044"

	CodeUnknownScenario = "X060"
)

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
	Status   int
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Runtime Errors (X001-X019)
	// ============================================

	CodeBorrowConflict: {
		Category: CategoryRuntime,
		Message:  "Borrow conflict",
		Detail:   "A value was requested for writing while it, or one of its parents, was already borrowed. Finish the outer access before starting the inner one.",
		Status:   http.StatusConflict,
	},
	CodeNotFound: {
		Category: CategoryRuntime,
		Message:  "Todo not found",
		Detail:   "No todo exists with this id. It may have been removed.",
		Status:   http.StatusNotFound,
	},
	CodeActionPanic: {
		Category: CategoryRuntime,
		Message:  "Action panicked",
		Detail:   "A store action panicked. The panic was recovered and logged with its stack trace.",
		Status:   http.StatusInternalServerError,
	},
	CodeLoopClosed: {
		Category: CategoryRuntime,
		Message:  "Server shutting down",
		Detail:   "The action loop has stopped and no longer accepts work.",
		Status:   http.StatusServiceUnavailable,
	},
	CodeCanceled: {
		Category: CategoryRuntime,
		Message:  "Request canceled",
		Detail:   "The request ended before its action ran.",
		Status:   http.StatusServiceUnavailable,
	},
	CodeInternal: {
		Category: CategoryRuntime,
		Message:  "Internal error",
		Status:   http.StatusInternalServerError,
	},

	// ============================================
	// Validation Errors (X020-X039)
	// ============================================

	CodeBadRequest: {
		Category: CategoryValidation,
		Message:  "Invalid request body",
		Detail:   "The request body must be a JSON object.",
		Status:   http.StatusBadRequest,
	},
	CodeEmptyText: {
		Category: CategoryValidation,
		Message:  "Todo text is empty",
		Detail:   "A todo needs a non-blank value.",
		Status:   http.StatusBadRequest,
	},
	CodeInvalidID: {
		Category: CategoryValidation,
		Message:  "Invalid todo id",
		Detail:   "Todo ids are positive integers.",
		Status:   http.StatusBadRequest,
	},
	CodeInvalidPath: {
		Category: CategoryValidation,
		Message:  "Invalid path",
		Detail:   `Paths start with the root name and continue with .field, [index], {key} or <Variant> segments, e.g. $.todos{3}.done.`,
		Status:   http.StatusBadRequest,
	},

	// ============================================
	// Config Errors (X040-X059)
	// ============================================

	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The file given with --config does not exist.",
		Status:   http.StatusInternalServerError,
	},
	CodeConfigSyntax: {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "xbow.json could not be parsed as JSON.",
		Status:   http.StatusInternalServerError,
	},
	CodeConfigAddr: {
		Category: CategoryConfig,
		Message:  "Invalid listen address",
		Detail:   "addr must be host:port, e.g. :8080 or 127.0.0.1:8080.",
		Status:   http.StatusInternalServerError,
	},
	CodeConfigLevel: {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
		Status:   http.StatusInternalServerError,
	},
	CodeConfigFormat: {
		Category: CategoryConfig,
		Message:  "Invalid log format",
		Detail:   "log.format must be text or json.",
		Status:   http.StatusInternalServerError,
	},

	// ============================================
	// CLI Errors (X060-X079)
	// ============================================

	CodeUnknownScenario: {
		Category: CategoryCLI,
		Message:  "Unknown demo scenario",
		Detail:   "Run xbow demo --help for the list of scenarios.",
		Status:   http.StatusInternalServerError,
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
