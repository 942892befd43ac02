// Package server implements the MCP (Model Context Protocol) server for PDF
// redaction.
//
// This package provides a JSON-RPC 2.0 server that drives a single redaction
// session. A client uploads a one-page PDF, draws rectangles on the rendered
// display image, previews the result and downloads the redacted document.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Document:
//   - redact_upload: Load a single-page PDF (path or base64)
//   - redact_status: Session state, sizes, scale factors, regions
//   - redact_cancel: Discard everything
//
// Regions (display pixels, top-left origin):
//   - redact_set_regions, redact_add_region, redact_remove_region, redact_clear_regions
//   - redact_suggest_regions: OCR-based suggestions, optionally applied
//
// Views:
//   - redact_canvas: Display image with selections
//   - redact_preview: Display image as it will look redacted
//   - redact_map_regions: Regions in document space with label sizes
//
// Output:
//   - redact_prepare: Build the redacted document
//   - redact_download: Return and write redacted_<filename>, then reset
//
// Geometry:
//   - redact_compute_mapping: Pure display-to-document mapping
//
// # Session Lifecycle
//
// Tools are only valid in certain session states. Uploading while a document
// is loaded, or downloading before prepare, fails without changing anything.
// Editing regions after prepare discards the prepared output.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(session.New(opts), server.Options{OutputDir: "."})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
