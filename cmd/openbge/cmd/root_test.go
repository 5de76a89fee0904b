package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/pkg/external"
)

func newPlatform(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(external.PathSamples, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("biosample_id") == "E-B404" {
			w.Write([]byte(`{"code":0,"data":[]}`))
			return
		}
		w.Write([]byte(`{"code":0,"data":[{"biosample_id":"E-B1","project":[{"project_omic":"genomics"}]}]}`))
	})
	mux.HandleFunc(external.PathSMS, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.JSONEq(t, `{"name":"Li","code":"42"}`, r.PostForm.Get("data"))
		w.Write([]byte(`{"code":40001,"msg":"短信模板不存在"}`))
	})
	mux.HandleFunc(external.PathSearch, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "gene", r.PostForm.Get("scope"))
		assert.Equal(t, "2", r.PostForm.Get("page"))
		w.Write([]byte(`{"code":0,"data":{"total":1,"pages":1,"list":[]}}`))
	})
	return httptest.NewServer(mux)
}

func run(t *testing.T, host string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--host", host, "--key", "testkey", "--secret", "testsecret", "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSamplesCommand(t *testing.T) {
	platform := newPlatform(t)
	defer platform.Close()

	out, err := run(t, platform.URL, "samples", "E-B1")

	require.NoError(t, err)
	var result domain.SampleList
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.List, 1)
	assert.Equal(t, "genomics", result.List[0].Omic)
}

func TestValidateCommand(t *testing.T) {
	platform := newPlatform(t)
	defer platform.Close()

	out, err := run(t, platform.URL, "validate", "E-B404")

	require.NoError(t, err)
	assert.JSONEq(t, `{"number":"E-B404","flag":false}`, out)
}

func TestSMSCommand_ServiceError(t *testing.T) {
	platform := newPlatform(t)
	defer platform.Close()

	_, err := run(t, platform.URL, "sms", "13800138000", "--template", "missing", "--data", `{"name":"Li"}`, "--var", "code=42")

	se, ok := domain.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeSendSMS, se.Code)
	assert.Equal(t, "私有平台：短信模板不存在", se.Message)
	assert.Equal(t, 3, exitCode(err))
}

func TestSearchCommand(t *testing.T) {
	platform := newPlatform(t)
	defer platform.Close()

	out, err := run(t, platform.URL, "search", "E-B1", "rs279845", "--scope", "locus", "--page", "2")

	require.NoError(t, err)
	assert.JSONEq(t, `{"page":2,"limit":10,"pages":1,"total":1,"list":[]}`, out)
}

func TestProbeCommand(t *testing.T) {
	platform := newPlatform(t)
	defer platform.Close()

	out, err := run(t, platform.URL, "probe")

	require.NoError(t, err)
	assert.JSONEq(t, `{"reachable":true,"code":4,"message":"私有平台：发生网络异常（404）"}`, out)
}

func TestVariantsCommand_ValidationError(t *testing.T) {
	platform := newPlatform(t)
	defer platform.Close()

	_, err := run(t, platform.URL, "variants", "E-B1", "GABRA2")

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, 2, exitCode(err))
}

func TestInvalidHostIsRejected(t *testing.T) {
	_, err := run(t, "not-a-host", "probe")

	var ce *domain.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "platform.host", ce.Key)
	assert.Equal(t, 1, exitCode(err))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"rs1", "rs2", "rs3"}, splitList([]string{"rs1,rs2", " rs3 ", ""}))
	assert.Nil(t, splitList(nil))
}
