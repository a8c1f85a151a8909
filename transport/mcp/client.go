package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/quackers-game/api"
	"github.com/wricardo/quackers-game/game/config"
	"github.com/wricardo/quackers-game/game/engine"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Quackers Game Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Quackers Game Server - MCP Interface

Read-only view of a running Quackers server. Every tool proxies to the REST API.

Ducks connect over WebSocket, waddle around a shared pond and race to collect
the single cracker. These tools let you watch the pond without joining it.

AVAILABLE TOOLS:
- list_players: All connected ducks with name, color, position and cracker count
- get_player: One duck by client_id
- cracker_state: Where the cracker currently is
- server_stats: Connected clients and total connections since start
- list_configs: Available game configurations`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_players",
		Description: "List every connected player",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPlayers)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_player",
		Description: "Get the game data of one connected player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"client_id": map[string]interface{}{
					"type":        "string",
					"description": "Client ID (32 hex characters)",
				},
			},
			Required: []string{"client_id"},
		},
	}, c.handleGetPlayer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cracker_state",
		Description: "Get the current cracker position",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleCrackerState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get connection statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response api.PlayerList
	if err := c.apiCall(ctx, "GET", "/api/players", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlayerList(&response)), nil
}

func (c *Client) handleGetPlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	clientID, _ := args["client_id"].(string)
	if clientID == "" {
		return mcp.NewToolResultError("client_id is required"), nil
	}

	var player engine.ClientGameData
	err := c.apiCall(ctx, "GET", "/api/players/"+url.PathEscape(clientID), nil, &player)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlayer(&player)), nil
}

func (c *Client) handleCrackerState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var cracker engine.Cracker
	if err := c.apiCall(ctx, "GET", "/api/cracker", nil, &cracker); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Cracker at (%.1f, %.1f)\nRadius: %.1f, Worth: %d\n",
		cracker.XPos, cracker.YPos, cracker.Radius, cracker.Points)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats api.Stats
	if err := c.apiCall(ctx, "GET", "/api/stats", nil, &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Connected clients: %d\nPlayers: %d\nTotal connections: %d\n",
		stats.ConnectedClients, stats.Players, stats.TotalConnections)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []config.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, cfg := range configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  World: %.0fx%.0f\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.WorldWidth, cfg.WorldHeight)
	}

	return mcp.NewToolResultText(result), nil
}

func formatPlayerList(list *api.PlayerList) string {
	if list.Count == 0 {
		return "No players connected.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Connected Players (%d):\n\n", list.Count)
	for _, p := range list.Players {
		fmt.Fprintf(&sb, "- %s %q (%s) at (%.1f, %.1f), crackers: %d\n",
			p.ClientID, p.FriendlyName, p.Color, p.XPos, p.YPos, p.CrackerCount)
	}
	return sb.String()
}

func formatPlayer(p *engine.ClientGameData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Player %s\n", p.ClientID)
	fmt.Fprintf(&sb, "Name: %s\n", p.FriendlyName)
	fmt.Fprintf(&sb, "Color: %s\n", p.Color)
	fmt.Fprintf(&sb, "Quack pitch: %.2f\n", p.QuackPitch)
	fmt.Fprintf(&sb, "Position: (%.1f, %.1f)\n", p.XPos, p.YPos)
	fmt.Fprintf(&sb, "Crackers: %d\n", p.CrackerCount)
	return sb.String()
}
