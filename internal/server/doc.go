// Package server implements the MCP (Model Context Protocol) server for image analysis tools.
//
// This package provides a JSON-RPC 2.0 server that exposes color-reduction
// capabilities (palette quantization and dithering) through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Progress: when a tools/call request carries _meta.progressToken, the
//     server also writes notifications/progress messages while the tool runs
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata, including distinct and top colors
//   - image_dimensions: Get width and height
//   - image_list_filters: Enumerate registered filters and their parameters
//
// Color Reduction:
//   - image_quantize: Octree palette quantization to at most max_colors colors
//   - image_dither_ordered: Ordered dithering with a Bayer or cluster-dot matrix
//   - image_dither_diffuse: Error-diffusion dithering with a named kernel
//   - image_apply_filter: Any registered filter by name with integer params
//
// Every reduction tool works on a private copy of the cached image, so calls
// never see each other's output. Results carry the encoded image (inline
// base64 or written to output_path), reduction statistics, and for the
// quantizer the palette with per-color usage.
//
// # Image Caching
//
// The server maintains an in-memory cache of decoded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
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
// The server is typically started by an MCP client:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
