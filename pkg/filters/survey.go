package filters

import (
	"github.com/openbge-client/internal/domain"
)

// SurveyResponseData maps a platform survey response reference
func SurveyResponseData(r SurveyResponse) domain.SurveyResponseRecord {
	return domain.SurveyResponseRecord{
		Number:     string(r.BiosampleID),
		SurveyID:   r.SurveyID.Value,
		ResponseID: r.ResponseID.Value,
		SubmitTime: EpochMillis(string(r.SubmitTime)),
	}
}

// SurveyResponseList maps every record, preserving order
func SurveyResponseList(responses []SurveyResponse) []domain.SurveyResponseRecord {
	out := make([]domain.SurveyResponseRecord, 0, len(responses))
	for _, r := range responses {
		out = append(out, SurveyResponseData(r))
	}
	return out
}
