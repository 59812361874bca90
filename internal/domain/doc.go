// Package domain defines the lead record shared by every console view.
//
// Types in this package are pure value objects with no behavior beyond
// parsing and formatting, no database dependencies, and no HTTP concerns.
// They are the shared language between the views, the store drivers and
// the API.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - Wire names follow the existing temp_leads table
//   - Constants and enums belong here
package domain
