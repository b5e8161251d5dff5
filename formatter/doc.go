// Package formatter serializes responses and artifacts as JSON.
//
// HTML escaping is disabled so stop and route names pass through unchanged,
// and indented output always uses two spaces.
package formatter
