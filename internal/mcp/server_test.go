package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/internal/service"
	"github.com/openbge-client/pkg/external"
	"github.com/openbge-client/pkg/signature"
)

type stubGateway struct {
	responses map[string]external.Envelope
}

func (g *stubGateway) Call(ctx context.Context, method, path string, params signature.Params) external.Envelope {
	if env, ok := g.responses[path]; ok {
		return env
	}
	return external.Envelope{IsError: true, Message: domain.NetworkMessage(404)}
}

func newTestServer(responses map[string]external.Envelope) *Server {
	logger, _ := test.NewNullLogger()
	svc := service.NewPlatformService(&stubGateway{responses: responses}, logger)
	return NewServer(domain.MCPConfig{}, svc, logger)
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewServer(t *testing.T) {
	server := newTestServer(nil)

	assert.NotNil(t, server.mcpServer)
	assert.Equal(t, "openbge-client", server.config.ServerName)
	assert.Equal(t, "1.0.0", server.config.ServerVersion)
	assert.Len(t, toolNames, 7)
}

func TestHandleGetSampleData(t *testing.T) {
	server := newTestServer(map[string]external.Envelope{
		external.PathSamples: {Message: domain.MessageSuccess, Result: json.RawMessage(`[{"biosample_id":"E-B1","project":[{"project_omic":"genomics"}]}]`)},
	})

	result, out, err := server.handleGetSampleData(context.Background(), nil, GetSampleDataParams{Numbers: []string{"E-B1"}})

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"list":[{"number":"E-B1","omic":"genomics","samplingTime":null}]}`, text(t, result))
	assert.IsType(t, &domain.SampleList{}, out)
}

func TestHandleSearch_Locus(t *testing.T) {
	server := newTestServer(map[string]external.Envelope{
		external.PathSearch: {Message: domain.MessageSuccess, Result: json.RawMessage(`{"total":1,"pages":1,"list":[
			{"id":"g1","scope":"gene","data":{"alternate_id":["rs279845"],"variant":{"chromosome":"chr4","genotype":"T/A","alternate_base":["A"],"reference_base":"T"},"genomic_context":{"gene":[{"symbol":"GABRA2"}]}}}
		]}`)},
	})

	result, _, err := server.handleSearch(context.Background(), nil, SearchParams{
		Number: "E-B19722207213",
		Query:  "rs279845",
		Scopes: []string{"locus"},
	})

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"page":1,"limit":10,"pages":1,"total":1,"list":[
		{"scope":"locus","chromosome":"chr4","gene":"GABRA2","rsId":"rs279845","genotypes":["A","T"],"genotype":"T/A"}
	]}`, text(t, result))
}

func TestHandleValidateNumber_ServiceError(t *testing.T) {
	server := newTestServer(map[string]external.Envelope{
		external.PathSamples: {IsError: true, Message: "私有平台：签名错误"},
	})

	result, out, err := server.handleValidateNumber(context.Background(), nil, ValidateNumberParams{Number: "E-B1"})

	require.NoError(t, err)
	assert.Nil(t, out)
	assert.True(t, result.IsError)
	assert.Equal(t, "[5] 私有平台：签名错误", text(t, result))
}

func TestHandleSendSMS_ValidationError(t *testing.T) {
	server := newTestServer(nil)

	result, _, err := server.handleSendSMS(context.Background(), nil, SendSMSParams{Template: "t"})

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "invalid phone")
}

func TestHandleGetVariants(t *testing.T) {
	server := newTestServer(map[string]external.Envelope{
		external.PathVariants: {Message: domain.MessageSuccess, Result: json.RawMessage(`[{"alternate_id":["rs1"],"variant":{"chromosome":"chr1","position":10,"genotype":"A/G","no_call":true}}]`)},
	})

	result, _, err := server.handleGetVariants(context.Background(), nil, GetVariantsParams{Number: "E-B1", RSIDs: []string{"rs1"}})

	require.NoError(t, err)
	assert.JSONEq(t, `{"list":[{"chromosome":"chr1","position":10,"isCall":false,"rsid":"rs1","genotype":"AG"}]}`, text(t, result))
}

func TestHandleGetSurveyResponses(t *testing.T) {
	server := newTestServer(map[string]external.Envelope{
		external.PathSurveyResponses: {Message: domain.MessageSuccess, Result: json.RawMessage(`[]`)},
	})

	result, _, err := server.handleGetSurveyResponses(context.Background(), nil, GetSurveyResponsesParams{
		Conditions: []domain.SurveyCondition{{UserID: "u", Number: "E-B1", SurveyID: 3}},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"list":[]}`, text(t, result))
}

func TestHandleProbe(t *testing.T) {
	server := newTestServer(nil)

	result, out, err := server.handleProbe(context.Background(), nil, ProbeParams{})

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, ProbeResult{Reachable: true, Code: domain.CodeNotFound, Message: "私有平台：发生网络异常（404）"}, out)
}

func TestRespond_UnexpectedError(t *testing.T) {
	server := newTestServer(nil)

	result, _, err := server.respond("x", nil, errors.New("boom"))

	assert.Nil(t, result)
	assert.EqualError(t, err, "boom")
}
