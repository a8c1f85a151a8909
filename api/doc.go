// Package api provides HTTP REST API handlers for the Quackers game server.
//
// The api package implements:
//   - Read-only views of the connected players and the shared world
//   - Server statistics and health checks
//   - Configuration listing
//   - WebSocket upgrade handling
//
// Endpoints:
//
//   - GET /api/health - Liveness check
//   - GET /api/stats - Connected clients, players and total connections
//   - GET /api/players - All players sorted by client ID
//   - GET /api/players/{id} - One player's game data
//   - GET /api/cracker - Current cracker position
//   - GET /api/configs - Available configurations
//   - GET /api/configs/{name} - One configuration
//   - GET /ws - WebSocket endpoint for game clients
//
// Response Format:
//
// All endpoints return JSON. Errors use {"error": "message"} with a matching
// HTTP status code.
//
// Usage:
//
//	hub := websocket.NewHub(clients, players, world, handler, websocket.DefaultOptions())
//	server := api.NewServer(hub, configManager)
//	http.ListenAndServe(":8080", server)
package api
