package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/internal/service"
)

// Tool names
const (
	ToolGetSampleData      = "get_sample_data"
	ToolGetSurveyResponses = "get_survey_responses"
	ToolSendSMS            = "send_sms"
	ToolValidateNumber     = "validate_sample_number"
	ToolGetVariants        = "get_variants"
	ToolSearch             = "search"
	ToolProbe              = "probe"
)

// GetSampleDataParams defines parameters for get_sample_data tool
type GetSampleDataParams struct {
	Numbers []string `json:"numbers" jsonschema:"sample numbers, e.g. E-B19320110961"`
}

// GetSurveyResponsesParams defines parameters for get_survey_responses tool
type GetSurveyResponsesParams struct {
	Conditions []domain.SurveyCondition `json:"conditions" jsonschema:"one condition per user, sample and survey"`
}

// SendSMSParams defines parameters for send_sms tool
type SendSMSParams struct {
	Phone    string            `json:"phone" jsonschema:"recipient phone number"`
	Template string            `json:"template" jsonschema:"platform template code"`
	Data     map[string]string `json:"data,omitempty" jsonschema:"template variables"`
}

// ValidateNumberParams defines parameters for validate_sample_number tool
type ValidateNumberParams struct {
	Number string `json:"number" jsonschema:"sample number"`
}

// GetVariantsParams defines parameters for get_variants tool
type GetVariantsParams struct {
	Number string   `json:"number" jsonschema:"sample number"`
	RSIDs  []string `json:"rsids" jsonschema:"RS identifiers, e.g. rs279845"`
}

// SearchParams defines parameters for search tool
type SearchParams struct {
	Number string   `json:"number" jsonschema:"sample number the search is scoped to"`
	Query  string   `json:"query" jsonschema:"search text"`
	Scopes []string `json:"scopes,omitempty" jsonschema:"application, report, locus or survey; defaults to application, report and survey"`
	Page   int      `json:"page,omitempty" jsonschema:"1-based page, default 1"`
	Limit  int      `json:"limit,omitempty" jsonschema:"page size, default 10"`
}

// ProbeParams defines parameters for probe tool
type ProbeParams struct{}

// ProbeResult defines the result structure for probe tool
type ProbeResult struct {
	Reachable bool   `json:"reachable"`
	Code      int    `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (s *Server) handleGetSampleData(ctx context.Context, req *mcp.CallToolRequest, params GetSampleDataParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolGetSampleData).Info("Tool invoked")
	result, err := s.service.GetSampleData(ctx, params.Numbers)
	return s.respond(ToolGetSampleData, result, err)
}

func (s *Server) handleGetSurveyResponses(ctx context.Context, req *mcp.CallToolRequest, params GetSurveyResponsesParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolGetSurveyResponses).Info("Tool invoked")
	result, err := s.service.GetSurveyResponses(ctx, params.Conditions)
	return s.respond(ToolGetSurveyResponses, result, err)
}

func (s *Server) handleSendSMS(ctx context.Context, req *mcp.CallToolRequest, params SendSMSParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolSendSMS).Info("Tool invoked")
	result, err := s.service.SendSMS(ctx, params.Phone, params.Template, params.Data)
	return s.respond(ToolSendSMS, result, err)
}

func (s *Server) handleValidateNumber(ctx context.Context, req *mcp.CallToolRequest, params ValidateNumberParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolValidateNumber).Info("Tool invoked")
	result, err := s.service.IsValidNumber(ctx, params.Number)
	return s.respond(ToolValidateNumber, result, err)
}

func (s *Server) handleGetVariants(ctx context.Context, req *mcp.CallToolRequest, params GetVariantsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolGetVariants).Info("Tool invoked")
	result, err := s.service.GetVariants(ctx, params.Number, params.RSIDs)
	return s.respond(ToolGetVariants, result, err)
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, params SearchParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolSearch).Info("Tool invoked")
	result, err := s.service.DoSearch(ctx, domain.SearchRequest{
		Number: params.Number,
		Query:  params.Query,
		Scopes: params.Scopes,
		Page:   params.Page,
		Limit:  params.Limit,
	})
	return s.respond(ToolSearch, result, err)
}

// handleProbe reports the service error of the not-found endpoint, which is
// the expected answer of a reachable platform
func (s *Server) handleProbe(ctx context.Context, req *mcp.CallToolRequest, params ProbeParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolProbe).Info("Tool invoked")

	err := s.service.GetNotFound(ctx)
	result := ProbeResult{Reachable: service.Reachable(err)}
	if err != nil {
		se, ok := domain.AsServiceError(err)
		if !ok {
			return s.respond(ToolProbe, nil, err)
		}
		result.Code = se.Code
		result.Message = se.Message
	}
	return s.respond(ToolProbe, result, nil)
}

// respond renders a facade outcome. Validation and service errors become tool
// errors the client can read; anything else is returned as a protocol error.
func (s *Server) respond(tool string, result any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return errorResult(fmt.Sprintf("invalid %s: %s", ve.Field, ve.Message)), nil, nil
		}
		if se, ok := domain.AsServiceError(err); ok {
			s.logger.WithFields(logrus.Fields{
				"tool": tool,
				"code": se.Code,
			}).Warn("Tool call failed")
			return errorResult(fmt.Sprintf("[%d] %s", se.Code, se.Message)), nil, nil
		}
		return nil, nil, err
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s result: %w", tool, err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, result, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
