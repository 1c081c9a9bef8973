package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E109)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Project configuration not found",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Route configuration not found",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Root module not found",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid project configuration",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid route configuration",
	},

	// ============================================
	// Module Load Errors (E110-E119)
	// ============================================

	"E110": {
		Category: CategoryLoad,
		Message:  "Route module failed to load",
	},

	// ============================================
	// Resolution Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryResolution,
		Message:  "Route pattern rejected",
		Detail:   "The router could not register a flattened route pattern.",
	},

	"E121": {
		Category: CategoryResolution,
		Message:  "Invalid navigation path",
		Detail:   "Navigation targets must be app-relative paths such as /products?sort=price.",
	},

	// ============================================
	// Runtime Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategoryRuntime,
		Message:  "No hydration context returned",
		Detail:   "Static resolution finished without a redirect and without a context.",
	},
	"E131": {
		Category: CategoryRuntime,
		Message:  "Too many redirects",
	},
	"E132": {
		Category: CategoryRuntime,
		Message:  "Render failed",
	},
	"E133": {
		Category: CategoryRuntime,
		Message:  "Redirect leaves the router origin",
		Detail:   "A memory router only follows redirects to its own origin.",
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
