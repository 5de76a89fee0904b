package filters

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/pkg/scope"
)

// ErrUnknownScope is returned by SearchItem for records whose scope tag is not
// in the scope table. Callers should check scope.FromPlatform before dispatch.
var ErrUnknownScope = errors.New("unknown search scope")

const (
	modelType   = "model"
	placeholder = "-"
)

type applicationData struct {
	AppType      FlexString `json:"appType"`
	AppClassName string     `json:"appClassName"`
	AppName      string     `json:"appName"`
	AppDesc      string     `json:"appDesc"`
	AppSimage    string     `json:"appSimage"`
}

type reportData struct {
	ProjectName            string `json:"project_name"`
	DataElementDescription string `json:"data_element_description"`
	Name                   struct {
		Chinese string `json:"chinese"`
	} `json:"name"`
	Summary string `json:"summary"`
}

type locusData struct {
	AlternateID stringList `json:"alternate_id"`
	Variant     struct {
		Chromosome    string     `json:"chromosome"`
		Genotype      string     `json:"genotype"`
		AlternateBase stringList `json:"alternate_base"`
		ReferenceBase stringList `json:"reference_base"`
	} `json:"variant"`
	GenomicContext struct {
		Gene []struct {
			Symbol string `json:"symbol"`
		} `json:"gene"`
	} `json:"genomic_context"`
}

type surveyData struct {
	Title       string `json:"title"`
	PlanTitle   string `json:"planTitle"`
	Description string `json:"description"`
	ListImage   string `json:"listImage"`
}

// SearchItem dispatches a search record to the builder for its declared scope
func SearchItem(hit SearchHit) (domain.SearchResult, error) {
	s, ok := scope.FromPlatform(string(hit.Scope))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScope, hit.Scope)
	}

	switch s {
	case scope.Application:
		return Application(hit), nil
	case scope.Report:
		return Report(hit), nil
	case scope.Locus:
		return Locus(hit), nil
	case scope.Survey:
		return SurveyItem(hit), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScope, hit.Scope)
}

// Application builds an application hit
func Application(hit SearchHit) domain.ApplicationResult {
	var data applicationData
	decodeData(hit.Data, &data)

	return domain.ApplicationResult{
		Scope:       scope.Application,
		ID:          string(hit.ID),
		Type:        string(data.AppType),
		// class reads its own highlight key, not appName
		Class:       hit.Highlight.Prefer("appClassName", data.AppClassName),
		Name:        hit.Highlight.Prefer("appName", data.AppName),
		Description: hit.Highlight.Prefer("appDesc", data.AppDesc),
		Icon:        data.AppSimage,
	}
}

// Report builds a report hit. Model records carry their name and description
// in project fields.
func Report(hit SearchHit) domain.ReportResult {
	var data reportData
	decodeData(hit.Data, &data)

	result := domain.ReportResult{
		Scope:  scope.Report,
		ID:     string(hit.ID),
		Domain: Capitalize(string(hit.Type)),
	}

	if hit.Type == modelType {
		result.Name = hit.Highlight.Prefer("project_name", data.ProjectName)
		result.Description = hit.Highlight.Prefer("data_element_description", data.DataElementDescription)
		return result
	}

	result.Name = hit.Highlight.Prefer("name.chinese", data.Name.Chinese)
	result.Description = hit.Highlight.Prefer("summary", data.Summary)
	return result
}

// Locus builds a locus hit
func Locus(hit SearchHit) domain.LocusResult {
	var data locusData
	decodeData(hit.Data, &data)

	gene := placeholder
	if len(data.GenomicContext.Gene) > 0 && data.GenomicContext.Gene[0].Symbol != "" {
		gene = data.GenomicContext.Gene[0].Symbol
	}

	rsid := placeholder
	if len(data.AlternateID) > 0 && data.AlternateID[0] != "" {
		rsid = data.AlternateID[0]
	}

	genotypes := make([]string, 0, len(data.Variant.AlternateBase)+len(data.Variant.ReferenceBase))
	genotypes = append(genotypes, data.Variant.AlternateBase...)
	genotypes = append(genotypes, data.Variant.ReferenceBase...)

	return domain.LocusResult{
		Scope:      scope.Locus,
		Chromosome: orPlaceholder(data.Variant.Chromosome),
		Gene:       gene,
		RSID:       rsid,
		Genotypes:  genotypes,
		Genotype:   orPlaceholder(data.Variant.Genotype),
	}
}

// SurveyItem builds a survey hit
func SurveyItem(hit SearchHit) domain.SurveyResult {
	var data surveyData
	decodeData(hit.Data, &data)

	return domain.SurveyResult{
		Scope:       scope.Survey,
		ID:          string(hit.ID),
		Type:        string(hit.Type),
		Title:       hit.Highlight.Prefer("title", data.Title),
		PlanTitle:   hit.Highlight.Prefer("planTitle", data.PlanTitle),
		Description: hit.Highlight.Prefer("description", data.Description),
		Icon:        data.ListImage,
	}
}

// Capitalize upper-cases the first letter and lower-cases the rest
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// decodeData leaves v at its zero value when data is missing or malformed
func decodeData(data json.RawMessage, v interface{}) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
