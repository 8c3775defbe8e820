// Package mcptool provides shared helpers for building MCP tool servers.
//
// The helpers cover the two recurring needs of a tool handler: parsing the
// raw JSON arguments of a CallToolRequest and shaping a CallToolResult.
// Handler failures are encoded in the result (IsError) rather than returned
// as Go errors, so a misbehaving tool never tears down the protocol session.
package mcptool
