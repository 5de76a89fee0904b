package filters

import (
	"github.com/openbge-client/internal/domain"
)

const (
	defaultOmic       = "-"
	surveyElementType = "survey"
)

// SampleData maps a platform biosample record to a SampleRecord, using the
// first project entry and that project's first survey data element.
func SampleData(s Sample) domain.SampleRecord {
	var project Project
	if len(s.Project) > 0 {
		project = s.Project[0]
	}

	var survey DataElement
	for _, el := range project.DataElement {
		if el.Type == surveyElementType {
			survey = el
			break
		}
	}

	omic := string(project.ProjectOmic)
	if omic == "" {
		omic = defaultOmic
	}

	return domain.SampleRecord{
		Number:       string(s.BiosampleID),
		Omic:         omic,
		SurveyID:     survey.DataElementID.Ptr(),
		SamplingTime: EpochMillis(string(s.SampleTime)),
	}
}

// SampleList maps every record, preserving order
func SampleList(samples []Sample) []domain.SampleRecord {
	out := make([]domain.SampleRecord, 0, len(samples))
	for _, s := range samples {
		out = append(out, SampleData(s))
	}
	return out
}
