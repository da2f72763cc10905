// Package server implements the MCP (Model Context Protocol) server
// exposing the nuclei counting tools to an LLM agent.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over stdio: one request per line on
// stdin, one response per line on stdout. Logging goes to stderr so
// it cannot corrupt the protocol stream. Supported methods are
// initialize, tools/list, tools/call, and ping; unknown methods get a
// -32601 error, malformed parameters -32602, and tool failures
// -32000 with the underlying error message in the data field.
//
// # Tools
//
// Besides basic image inspection (image_load, image_dimensions), the
// catalog covers the counting workflow: nuclei_count_tile for one
// tile, nuclei_count_map for a border-corrected count map over a
// worker pool, nuclei_count_merged for exact counting with
// overlapping tiles, and two preview tools returning base64 PNGs
// (nuclei_segment_preview, nuclei_heatmap).
//
// Tool results are JSON documents wrapped in MCP's text content
// format, so agents can read counts directly and render previews
// from the embedded base64 images.
package server
