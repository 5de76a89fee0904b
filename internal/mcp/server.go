// Package mcp exposes the OpenBGE platform client as MCP tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/openbge-client/internal/domain"
)

// Server represents the OpenBGE MCP server
type Server struct {
	config    domain.MCPConfig
	service   domain.PlatformService
	mcpServer *mcp.Server
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance with every tool registered
func NewServer(config domain.MCPConfig, service domain.PlatformService, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	if config.ServerName == "" {
		config.ServerName = "openbge-client"
	}
	if config.ServerVersion == "" {
		config.ServerVersion = "1.0.0"
	}

	serverInfo := &mcp.Implementation{
		Name:    config.ServerName,
		Version: config.ServerVersion,
	}

	server := &Server{
		config:    config,
		service:   service,
		mcpServer: mcp.NewServer(serverInfo, nil),
		logger:    logger,
	}
	server.registerTools()

	return server
}

// Start runs the MCP server over stdio until ctx is cancelled or the client
// disconnects
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithFields(logrus.Fields{
		"server_name":    s.config.ServerName,
		"transport_type": "stdio",
	}).Info("Starting OpenBGE MCP server")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// toolNames lists the registered tools in registration order
var toolNames = []string{
	ToolGetSampleData,
	ToolGetSurveyResponses,
	ToolSendSMS,
	ToolValidateNumber,
	ToolGetVariants,
	ToolSearch,
	ToolProbe,
}

// registerTools registers every platform capability with the MCP SDK
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolGetSampleData,
		Description: "Look up biosample kits by sample number. Returns omic, survey id and sampling time per kit.",
	}, s.handleGetSampleData)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolGetSurveyResponses,
		Description: "List submitted survey answer sheets for (user, sample, survey) conditions.",
	}, s.handleGetSurveyResponses)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolSendSMS,
		Description: "Send a templated SMS notification through the platform.",
	}, s.handleSendSMS)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolValidateNumber,
		Description: "Check whether a sample number is known to the platform.",
	}, s.handleValidateNumber)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolGetVariants,
		Description: "Get the genotype calls of a sample at the given RS identifiers.",
	}, s.handleGetVariants)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolSearch,
		Description: "Search applications, reports, loci and surveys. Scopes: application, report, locus, survey.",
	}, s.handleSearch)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolProbe,
		Description: "Call the platform's not-found endpoint to check connectivity and error propagation.",
	}, s.handleProbe)

	s.logger.WithField("tool_count", len(toolNames)).Info("Successfully registered all tools")
}
