// Package mcpserver serves the stored Embeddable workspace to MCP clients
// over stdio. It lists connections, environments and embeddables, tests a
// saved connection and issues security tokens, all with the credential
// saved by "embed init". Tools never prompt; missing input is an error
// result.
package mcpserver
