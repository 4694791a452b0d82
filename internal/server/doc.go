// Package server implements the MCP (Model Context Protocol) server for iris
// localization.
//
// This package provides a JSON-RPC 2.0 server that exposes the iris boundary
// search through the MCP protocol, so an MCP client can locate the iris in an
// eye image, inspect the radial profile behind a result and render overlays.
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
//   - iris_image_info: Load an image and report dimensions and squareness
//   - iris_prepare_patch: Crop, square, resize and blur into a grayscale patch
//   - iris_find: Grid search for the best iris center and radius
//   - iris_scan_center: Radial scan and profiles for one center
//   - iris_overlay: Draw the grid, candidate circles and winner
//
// Every tool except iris_image_info accepts the same patch arguments (path,
// region, square, size, blur). Search arguments left at zero take the
// defaults from internal/config.
//
// # Image Caching
//
// The server maintains an in-memory cache of decoded images, keyed by path,
// for the lifetime of the process. Patches are derived per call and never
// cached.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	cfg, _ := config.Load()
//	srv := server.NewWithConfig(cfg, cfg.NewLogger(os.Stderr))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
