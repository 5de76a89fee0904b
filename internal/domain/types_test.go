package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbge-client/pkg/scope"
)

func TestSampleRecord_JSON(t *testing.T) {
	b, err := json.Marshal(SampleRecord{Number: "E-B19320110961", Omic: "-"})
	require.NoError(t, err)

	// surveyId is omitted when unknown, samplingTime is an explicit null
	assert.JSONEq(t, `{"number":"E-B19320110961","omic":"-","samplingTime":null}`, string(b))
}

func TestSearchResult_Scopes(t *testing.T) {
	tests := []struct {
		name     string
		result   SearchResult
		expected scope.Scope
	}{
		{"Application", ApplicationResult{}, scope.Application},
		{"Report", ReportResult{}, scope.Report},
		{"Locus", LocusResult{}, scope.Locus},
		{"Survey", SurveyResult{}, scope.Survey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.ResultScope())
		})
	}
}

func TestLocusResult_JSON(t *testing.T) {
	b, err := json.Marshal(LocusResult{
		Scope:      scope.Locus,
		Chromosome: "chr4",
		Gene:       "GABRA2",
		RSID:       "rs279845",
		Genotypes:  []string{"A", "T"},
		Genotype:   "T/A",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"scope":"locus","chromosome":"chr4","gene":"GABRA2","rsId":"rs279845","genotypes":["A","T"],"genotype":"T/A"}`, string(b))
}
