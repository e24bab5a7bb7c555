package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"embedctl/internal/api"
	"embedctl/internal/config"
	"embedctl/internal/provision"
	"embedctl/pkg/logging"
)

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// failure turns err into a tool error the model can read.
func failure(tool string, err error) *mcp.CallToolResult {
	logging.Debug("mcp", "%s failed: %v", tool, err)
	switch {
	case errors.Is(err, config.ErrNotAuthenticated):
		return mcp.NewToolResultError(`Not authenticated. Run "embed init" first.`)
	case errors.Is(err, provision.ErrNoEnvironment):
		return mcp.NewToolResultError(`No environment given and no default environment set. Pass "environment" or run "embed env set-default".`)
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) client() (*api.Client, error) {
	client, _, err := s.orch.Client()
	return client, err
}

type connectionInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Host     string `json:"host,omitempty"`
	Database string `json:"database,omitempty"`
}

func (s *Server) handleListConnections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := s.client()
	if err != nil {
		return failure(ToolListConnections, err), nil
	}
	conns, err := client.ListConnections(ctx)
	if err != nil {
		return failure(ToolListConnections, err), nil
	}
	if len(conns) == 0 {
		return mcp.NewToolResultText("No connections found"), nil
	}

	out := make([]connectionInfo, len(conns))
	for i, c := range conns {
		out[i] = connectionInfo{
			ID:       c.Identifier(),
			Name:     c.Name,
			Type:     c.Type,
			Host:     c.Host(),
			Database: c.Database(),
		}
	}
	return jsonResult(out)
}

type environmentInfo struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Default     bool              `json:"default,omitempty"`
	DataSources map[string]string `json:"dataSources"`
}

func (s *Server) handleListEnvironments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, cfg, err := s.orch.Client()
	if err != nil {
		return failure(ToolListEnvironments, err), nil
	}
	envs, err := client.ListEnvironments(ctx)
	if err != nil {
		return failure(ToolListEnvironments, err), nil
	}
	if len(envs) == 0 {
		return mcp.NewToolResultText("No environments found"), nil
	}

	out := make([]environmentInfo, len(envs))
	for i, e := range envs {
		mappings := e.Mappings
		if mappings == nil {
			mappings = map[string]string{}
		}
		out[i] = environmentInfo{
			ID:          e.Identifier(),
			Name:        e.Name,
			Default:     cfg.DefaultEnvironment != "" && cfg.DefaultEnvironment == e.Identifier(),
			DataSources: mappings,
		}
	}
	return jsonResult(out)
}

type embeddableInfo struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	LastPublishedAt *time.Time `json:"lastPublishedAt,omitempty"`
}

func (s *Server) handleListEmbeddables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := s.client()
	if err != nil {
		return failure(ToolListEmbeddables, err), nil
	}
	items, err := client.ListEmbeddables(ctx)
	if err != nil {
		return failure(ToolListEmbeddables, err), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("No embeddables found"), nil
	}

	out := make([]embeddableInfo, len(items))
	for i, e := range items {
		out[i] = embeddableInfo{ID: e.ID, Name: e.Name, LastPublishedAt: e.LastPublishedAt}
	}
	return jsonResult(out)
}

type testInfo struct {
	Connection string   `json:"connection"`
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Problem    string   `json:"problem,omitempty"`
	Checks     []string `json:"checks,omitempty"`
}

func (s *Server) handleTestConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := s.client()
	if err != nil {
		return failure(ToolTestConnection, err), nil
	}

	res, err := s.orch.TestConnection(ctx, client, name)
	if err != nil {
		return failure(ToolTestConnection, err), nil
	}

	info := testInfo{Connection: res.Connection, Success: res.Result.Success, Message: res.Result.Message}
	if !res.Result.Success {
		if res.Result.Error != "" {
			info.Message = res.Result.Error
		}
		if res.Guidance != nil {
			info.Problem = res.Guidance.Summary
			info.Checks = res.Guidance.Checks
		}
	}
	return jsonResult(info)
}

type tokenInfo struct {
	Token        string    `json:"token"`
	EmbeddableID string    `json:"embeddableId"`
	Environment  string    `json:"environment"`
	ExpiresAt    time.Time `json:"expiresAt"`
	EmbedURL     string    `json:"embedUrl,omitempty"`
}

func (s *Server) handleGenerateToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	embeddableID, err := request.RequireString("embeddable_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := provision.TokenRequest{
		EmbeddableID: embeddableID,
		Environment:  request.GetString("environment", ""),
		Expiry:       request.GetString("expiry", provision.DefaultExpiry),
		UserID:       request.GetString("user_id", ""),
	}
	if raw := request.GetString("security_context", ""); raw != "" {
		if req.SecurityContext, err = provision.ParseJSONObject(raw); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("security_context: %v", err)), nil
		}
	}

	client, err := s.client()
	if err != nil {
		return failure(ToolGenerateToken, err), nil
	}
	res, err := s.orch.GenerateToken(ctx, client, req)
	if err != nil {
		return failure(ToolGenerateToken, err), nil
	}

	return jsonResult(tokenInfo{
		Token:        res.Token.Token,
		EmbeddableID: res.EmbeddableID,
		Environment:  res.Environment,
		ExpiresAt:    res.Token.ExpiresAt,
		EmbedURL:     res.Token.EmbedURL,
	})
}
