package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryConfig,
		Message:  "Invalid routegen.json",
		Detail:   "The routegen.json configuration file is malformed.",
		DocURL:   "https://routegen.dev/docs/errors/R001",
	},
	"R002": {
		Category: CategoryConfig,
		Message:  "Routes directory not found",
		Detail:   "The configured pages directory does not exist.",
		DocURL:   "https://routegen.dev/docs/errors/R002",
	},
	"R003": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured dev server port is outside the valid range.",
		DocURL:   "https://routegen.dev/docs/errors/R003",
	},
	"R004": {
		Category: CategoryConfig,
		Message:  "Missing deploy target",
		Detail:   "Deploying requires a bucket name in the deploy section of routegen.json.",
		DocURL:   "https://routegen.dev/docs/errors/R004",
	},
	"R010": {
		Category: CategoryConfig,
		Message:  "Route validation failed",
		Detail:   "The pages directory describes contradictory routes. Every reported conflict must be resolved before a dispatch table can be generated.",
		DocURL:   "https://routegen.dev/docs/errors/R010",
	},
	"R011": {
		Category: CategoryConfig,
		Message:  "Conflicting route paths",
		Detail:   "Two directories resolve to the same URL pattern but disagree on its shape.",
		DocURL:   "https://routegen.dev/docs/errors/R011",
	},
	"R012": {
		Category: CategoryConfig,
		Message:  "Duplicate route",
		Detail:   "Multiple page files resolve to the same URL pattern.",
		DocURL:   "https://routegen.dev/docs/errors/R012",
	},

	// ============================================
	// Internal Errors (R100-R199)
	// ============================================

	"R100": {
		Category: CategoryInternal,
		Message:  "Router table inconsistency",
		Detail:   "The compiler produced a structure that violates its own invariants. This is a bug in routegen; please report it.",
		DocURL:   "https://routegen.dev/docs/errors/R100",
	},
	"R101": {
		Category: CategoryInternal,
		Message:  "Code generation failed",
		Detail:   "The dispatch table could not be rendered to Go source. This is a bug in routegen; please report it.",
		DocURL:   "https://routegen.dev/docs/errors/R101",
	},

	// ============================================
	// Collaborator Errors (R200-R299)
	// ============================================

	"R200": {
		Category: CategoryCollaborator,
		Message:  "Export scan failed",
		Detail:   "A page, middleware, or rewrite file could not be parsed as Go source.",
		DocURL:   "https://routegen.dev/docs/errors/R200",
	},
	"R201": {
		Category: CategoryCollaborator,
		Message:  "Routes directory unreadable",
		Detail:   "A directory under the pages root could not be listed.",
		DocURL:   "https://routegen.dev/docs/errors/R201",
	},
	"R202": {
		Category: CategoryCollaborator,
		Message:  "Output write failed",
		Detail:   "The generated route table could not be written to the output path.",
		DocURL:   "https://routegen.dev/docs/errors/R202",
	},
	"R203": {
		Category: CategoryCollaborator,
		Message:  "Upload failed",
		Detail:   "An artifact could not be uploaded to the deploy target.",
		DocURL:   "https://routegen.dev/docs/errors/R203",
	},
	"R204": {
		Category: CategoryCollaborator,
		Message:  "Watch failed",
		Detail:   "The filesystem watcher could not observe the pages directory.",
		DocURL:   "https://routegen.dev/docs/errors/R204",
	},

	// ============================================
	// CLI Errors (R300-R399)
	// ============================================

	"R300": {
		Category: CategoryCLI,
		Message:  "Not a routegen project",
		Detail:   "The current directory is not a routegen project. Run this command from a directory with routegen.json.",
		DocURL:   "https://routegen.dev/docs/errors/R300",
	},
	"R301": {
		Category: CategoryCLI,
		Message:  "Port already in use",
		Detail:   "Another process is listening on the dev server port.",
		DocURL:   "https://routegen.dev/docs/errors/R301",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
