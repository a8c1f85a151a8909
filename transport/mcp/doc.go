// Package mcp exposes a read-only Model Context Protocol facade over the
// Quackers REST API.
//
// The Client registers its tools on an mcp-go server and answers every call
// by requesting the matching REST endpoint, so it can run in-process behind
// /mcp or as a separate stdio process pointed at a remote server.
//
// MCP Tools:
//   - list_players: GET /api/players
//   - get_player: GET /api/players/{client_id}
//   - cracker_state: GET /api/cracker
//   - server_stats: GET /api/stats
//   - list_configs: GET /api/configs
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
