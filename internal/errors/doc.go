// Package errors provides structured, actionable error messages for the
// test router.
//
// Every failure that a test author can fix (a missing config file, a route
// module that is not registered, a route pattern chi refuses) is reported
// as an *Error carrying:
//   - a stable code (e.g. "E101") with a registered message and detail
//   - the file or search root involved
//   - a hint on how to fix it
//
// # Error Categories
//
//   - config: project, route or root files missing or malformed
//   - load: a route module could not be resolved or failed to initialize
//   - resolution: the route tree cannot be turned into a matcher
//   - runtime: a navigation ended in an unexpected state
//
// # Usage
//
//	err := errors.New("E102").
//	    WithDetail("No app/routes.(yaml|yml|json|toml) in /src/shop").
//	    WithSuggestion("Create app/routes.yaml declaring your routes")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E102: Route configuration not found
//	//
//	//   No app/routes.(yaml|yml|json|toml) in /src/shop
//	//
//	//   Hint: Create app/routes.yaml declaring your routes
package errors
