package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/internal/service"
	"github.com/openbge-client/pkg/external"
	"github.com/openbge-client/pkg/signature"
)

// routeGateway answers by platform path
type routeGateway struct {
	responses map[string]external.Envelope
	params    map[string]signature.Params
}

func (g *routeGateway) Call(ctx context.Context, method, path string, params signature.Params) external.Envelope {
	if g.params == nil {
		g.params = map[string]signature.Params{}
	}
	g.params[path] = params
	if env, ok := g.responses[path]; ok {
		return env
	}
	return external.Envelope{IsError: true, Message: domain.NetworkMessage(404)}
}

func ok(data string) external.Envelope {
	return external.Envelope{Message: domain.MessageSuccess, Result: json.RawMessage(data)}
}

func newTestServer(gw *routeGateway) *Server {
	logger, _ := test.NewNullLogger()
	svc := service.NewPlatformService(gw, logger)
	return NewServer(domain.ServerConfig{Host: "127.0.0.1", Port: 0}, svc, logger)
}

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestHealth(t *testing.T) {
	s := newTestServer(&routeGateway{})

	w, body := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, Version, body["version"])
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestSampleData(t *testing.T) {
	gw := &routeGateway{responses: map[string]external.Envelope{
		external.PathSamples: ok(`[{"biosample_id":"E-B1","project":[{"project_omic":"genomics"}]}]`),
	}}
	s := newTestServer(gw)

	w, body := do(t, s, http.MethodPost, "/api/v1/samples", `{"numbers":["E-B1"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	list := body["list"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "genomics", list[0].(map[string]interface{})["omic"])
	assert.Equal(t, "E-B1", gw.params[external.PathSamples]["biosample_id"])
}

func TestSampleData_BadBody(t *testing.T) {
	s := newTestServer(&routeGateway{})

	w, body := do(t, s, http.MethodPost, "/api/v1/samples", `{"numbers":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "invalid request body")
}

func TestServiceErrorMapsToBadGateway(t *testing.T) {
	gw := &routeGateway{responses: map[string]external.Envelope{
		external.PathSamples: {IsError: true, Message: "私有平台：签名错误"},
	}}
	s := newTestServer(gw)

	w, body := do(t, s, http.MethodGet, "/api/v1/samples/E-B1/validity", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, float64(domain.CodeValidNumber), body["code"])
	assert.Equal(t, "私有平台：签名错误", body["error"])
	assert.Equal(t, w.Header().Get("X-Correlation-ID"), body["correlation_id"])
}

func TestValidationErrorMapsToBadRequest(t *testing.T) {
	s := newTestServer(&routeGateway{})

	w, body := do(t, s, http.MethodPost, "/api/v1/sms", `{"phone":"abc","template":"t"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "phone", body["field"])
	assert.Nil(t, body["code"])
}

func TestVariants(t *testing.T) {
	gw := &routeGateway{responses: map[string]external.Envelope{
		external.PathVariants: ok(`[{"alternate_id":["rs279845"],"variant":{"chromosome":"chr4","position":46314593,"genotype":"T/A"}}]`),
	}}
	s := newTestServer(gw)

	w, body := do(t, s, http.MethodGet, "/api/v1/samples/E-B1/variants?rsid=rs279845,rs1&rsid=rs2", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rs279845,rs1,rs2", gw.params[external.PathVariants]["rsid"])
	list := body["list"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "TA", list[0].(map[string]interface{})["genotype"])
}

func TestSurveyResponses(t *testing.T) {
	gw := &routeGateway{responses: map[string]external.Envelope{
		external.PathSurveyResponses: ok(`[{"biosample_id":"E-B1","survey_id":107,"response_id":125}]`),
	}}
	s := newTestServer(gw)

	w, body := do(t, s, http.MethodPost, "/api/v1/survey-responses",
		`{"conditions":[{"userId":"u-1","number":"E-B1","surveyId":107}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	list := body["list"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, float64(125), list[0].(map[string]interface{})["responseId"])
}

func TestSendSMS(t *testing.T) {
	gw := &routeGateway{responses: map[string]external.Envelope{
		external.PathSMS: ok(`null`),
	}}
	s := newTestServer(gw)

	w, body := do(t, s, http.MethodPost, "/api/v1/sms", `{"phone":"13800138000","template":"report_ready","data":{"name":"张三"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["message"])
	assert.NotZero(t, body["time"])
}

func TestSearch(t *testing.T) {
	gw := &routeGateway{responses: map[string]external.Envelope{
		external.PathSearch: ok(`{"total":1,"pages":1,"list":[
			{"id":"g1","scope":"gene","data":{"alternate_id":["rs279845"],"variant":{"chromosome":"chr4","genotype":"T/A","alternate_base":["A"],"reference_base":"T"},"genomic_context":{"gene":[{"symbol":"GABRA2"}]}}}
		]}`),
	}}
	s := newTestServer(gw)

	w, body := do(t, s, http.MethodPost, "/api/v1/search", `{"number":"E-B19722207213","query":"rs279845","scopes":["locus"]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gene", gw.params[external.PathSearch]["scope"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(10), body["limit"])
	list := body["list"].([]interface{})
	require.Len(t, list, 1)
	hit := list[0].(map[string]interface{})
	assert.Equal(t, "locus", hit["scope"])
	assert.Equal(t, "GABRA2", hit["gene"])
	assert.Equal(t, "rs279845", hit["rsId"])
}

func TestProbe(t *testing.T) {
	s := newTestServer(&routeGateway{})

	w, body := do(t, s, http.MethodGet, "/api/v1/probe", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["reachable"])
	assert.Equal(t, float64(domain.CodeNotFound), body["code"])
	assert.Equal(t, "私有平台：发生网络异常（404）", body["message"])
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(&routeGateway{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
