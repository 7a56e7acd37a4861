package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration (E100-E109)
	"E100": {
		Category:   CategoryConfig,
		Message:    "Cannot read duel.json",
		Detail:     "The configuration file exists but could not be read or is not valid JSON.",
		Suggestion: "Check the file for syntax errors, or delete it to use the defaults.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A setting from duel.json, the environment or a flag is out of range.",
	},
	"E102": {
		Category:   CategoryConfig,
		Message:    "Cannot load .env file",
		Suggestion: "Fix or remove the .env file next to duel.json.",
	},

	// Network (E110-E119)
	"E110": {
		Category:   CategoryNetwork,
		Message:    "Cannot listen on address",
		Suggestion: "Pick another address with --addr or stop the process using it.",
	},
	"E111": {
		Category:   CategoryNetwork,
		Message:    "Cannot connect to server",
		Detail:     "The WebSocket handshake with the server failed.",
		Suggestion: "Check that the server is running and the URL ends in /ws.",
	},
	"E112": {
		Category: CategoryNetwork,
		Message:  "Connection lost",
		Detail:   "The server closed the connection. Sessions do not reconnect.",
	},

	// Protocol (E120-E129)
	"E120": {
		Category: CategoryProtocol,
		Message:  "Malformed message from peer",
		Detail:   "A complete frame had the wrong length for its type. The connection was dropped.",
	},

	// Storage (E130-E139)
	"E130": {
		Category:   CategoryStorage,
		Message:    "Replay store unavailable",
		Suggestion: "Check --replay-dir permissions or the S3 bucket settings.",
	},
	"E131": {
		Category:   CategoryStorage,
		Message:    "Replay not found",
		Suggestion: "Run `duel replay --list` to see stored replays.",
	},
	"E132": {
		Category: CategoryStorage,
		Message:  "Replay is corrupt",
		Detail:   "The replay does not decode as a sequence of State frames.",
	},

	// CLI (E140-E149)
	"E140": {
		Category:   CategoryCLI,
		Message:    "Invalid arguments",
		Suggestion: "Run the command with --help for usage.",
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
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
