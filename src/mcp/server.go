// Package mcp exposes the build store to CI orchestration as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"versioning-backend/src/builds"
	"versioning-backend/src/contracts"
	"versioning-backend/src/sanitize"
	"versioning-backend/src/store"
)

// Server is the MCP server for the versioning backend.
type Server struct {
	mcpServer *server.MCPServer
	builds    *builds.Service
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc *builds.Service, version string) *Server {
	s := server.NewMCPServer(
		"versioning-backend",
		version,
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		builds:    svc,
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_builds",
		mcp.WithDescription("List every CI build record. Order is not significant."),
		mcp.WithString("status",
			mcp.Description("Only return builds in this status"),
			mcp.Enum("started", "failed", "published"),
		),
	)

	startedTool := mcp.NewTool("report_build_started",
		mcp.WithDescription("Record that a CI job started building an image. Returns the build_id to use for later reports."),
		mcp.WithString("job_id", mcp.Required(), mcp.Description("CI job identifier")),
		mcp.WithString("image_type", mcp.Required(), mcp.Enum("base", "hub", "editor")),
		mcp.WithString("base_os", mcp.Required(), mcp.Description("Base OS, e.g. ubuntu-20.04")),
		mcp.WithString("repo_version", mcp.Required(), mcp.Description("Docker repository version, e.g. 1.0.0")),
		mcp.WithString("unity_version", mcp.Required(), mcp.Description("Unity editor version, e.g. 2021.1.0f1")),
		mcp.WithString("target_platform", mcp.Required(), mcp.Description("Target platform, e.g. linux64")),
	)

	failedTool := mcp.NewTool("report_build_failed",
		mcp.WithDescription("Record a build failure. Increments the build's failure count."),
		mcp.WithString("build_id", mcp.Required()),
		mcp.WithString("reason", mcp.Required(), mcp.Description("Why the build failed. Escape codes are stripped.")),
	)

	publishedTool := mcp.NewTool("report_build_published",
		mcp.WithDescription("Record that the build's image was pushed to the registry."),
		mcp.WithString("build_id", mcp.Required()),
		mcp.WithString("image_repo", mcp.Required()),
		mcp.WithString("image_name", mcp.Required()),
		mcp.WithString("friendly_tag", mcp.Required()),
		mcp.WithString("specific_tag", mcp.Required()),
		mcp.WithString("hash", mcp.Required(), mcp.Description("Image digest")),
	)

	s.mcpServer.AddTool(listTool, s.handleListBuilds)
	s.mcpServer.AddTool(startedTool, s.handleBuildStarted)
	s.mcpServer.AddTool(failedTool, s.handleBuildFailed)
	s.mcpServer.AddTool(publishedTool, s.handleBuildPublished)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleListBuilds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filter contracts.BuildStatus
	if raw := request.GetString("status", ""); raw != "" {
		status, err := contracts.ParseBuildStatus(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter = status
	}

	all, err := s.builds.GetAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing builds failed: %v", err)), nil
	}

	result := make([]contracts.CiBuild, 0, len(all))
	for _, build := range all {
		if filter == "" || build.Status == filter {
			result = append(result, build)
		}
	}
	return jsonResult(result)
}

func (s *Server) handleBuildStarted(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, missing := requireStrings(request, "job_id", "image_type", "base_os", "repo_version", "unity_version", "target_platform")
	if missing != "" {
		return mcp.NewToolResultError(missing + " parameter is required"), nil
	}

	imageType, err := contracts.ParseImageType(args["image_type"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info := contracts.BuildVersionInfo{
		BaseOS:         args["base_os"],
		RepoVersion:    args["repo_version"],
		UnityVersion:   args["unity_version"],
		TargetPlatform: args["target_platform"],
	}

	if err := s.builds.Create(ctx, args["job_id"], imageType, info, contracts.RepoVersionInfo{Version: info.RepoVersion}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recording build failed: %v", err)), nil
	}

	return jsonResult(map[string]string{"build_id": builds.BuildID(imageType, info)})
}

func (s *Server) handleBuildFailed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, missing := requireStrings(request, "build_id", "reason")
	if missing != "" {
		return mcp.NewToolResultError(missing + " parameter is required"), nil
	}

	build, err := s.builds.MarkBuildAsFailed(ctx, args["build_id"], contracts.BuildFailure{Reason: sanitize.Reason(args["reason"])})
	if err != nil {
		return storeErrorResult(err), nil
	}
	return jsonResult(build)
}

func (s *Server) handleBuildPublished(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, missing := requireStrings(request, "build_id", "image_repo", "image_name", "friendly_tag", "specific_tag", "hash")
	if missing != "" {
		return mcp.NewToolResultError(missing + " parameter is required"), nil
	}

	build, err := s.builds.MarkBuildAsPublished(ctx, args["build_id"], contracts.DockerInfo{
		ImageRepo:   args["image_repo"],
		ImageName:   args["image_name"],
		FriendlyTag: args["friendly_tag"],
		SpecificTag: args["specific_tag"],
		Hash:        args["hash"],
	})
	if err != nil {
		return storeErrorResult(err), nil
	}
	return jsonResult(build)
}

// requireStrings extracts the named string arguments and returns the first
// missing one, if any.
func requireStrings(request mcp.CallToolRequest, names ...string) (map[string]string, string) {
	values := make(map[string]string, len(names))
	for _, name := range names {
		value := request.GetString(name, "")
		if value == "" {
			return nil, name
		}
		values[name] = value
	}
	return values, ""
}

func storeErrorResult(err error) *mcp.CallToolResult {
	switch {
	case store.IsNotFound(err):
		return mcp.NewToolResultError(fmt.Sprintf("build not found: %v", err))
	case errors.Is(err, store.ErrTerminalState):
		return mcp.NewToolResultError(fmt.Sprintf("build already published: %v", err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err))
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
