// Package config loads the testrouter project configuration.
//
// The configuration lives in testrouter.config.json (or .yaml, .yml,
// .toml) at the project root:
//
//	{
//	  "appDirectory": "app",
//	  "flatRoutes": false,
//	  "routesDirectory": "routes",
//	  "origin": "http://localhost",
//	  "headers": {"Accept-Language": "en"},
//	  "ignore": ["routes/_*"]
//	}
//
// Values from a .env.test file next to the config and TESTROUTER_* process
// environment variables are applied on top of the file, process variables
// winning:
//
//	TESTROUTER_APP_DIRECTORY=web
//	TESTROUTER_FLAT_ROUTES=true
//	TESTROUTER_ORIGIN=https://shop.test
//	TESTROUTER_IGNORE=routes/admin/*,routes/legacy.go
//
// Array fields are merged by appending new values and dropping duplicates,
// both for TESTROUTER_IGNORE and for Merge.
package config
