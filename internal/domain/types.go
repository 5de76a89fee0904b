// Package domain contains the client-facing entities returned by the OpenBGE
// platform client, together with the error taxonomy and configuration types.
//
// Every entity is a value object: built fresh from one platform response and
// owned by the caller that received it.
package domain

import (
	"github.com/openbge-client/pkg/scope"
)

// SampleRecord describes one biosample kit
type SampleRecord struct {
	Number       string `json:"number"`
	Omic         string `json:"omic"`
	SurveyID     *int64 `json:"surveyId,omitempty"`
	SamplingTime *int64 `json:"samplingTime"` // epoch milliseconds
}

// VariantRecord is a called (or no-called) genotype at an RS locus
type VariantRecord struct {
	Chromosome string `json:"chromosome"`
	Position   int64  `json:"position"`
	IsCall     bool   `json:"isCall"`
	RSID       string `json:"rsid"`
	Genotype   string `json:"genotype"`
}

// SurveyResponseRecord links a sample to a submitted survey answer sheet
type SurveyResponseRecord struct {
	Number     string `json:"number"`
	SurveyID   int64  `json:"surveyId"`
	ResponseID int64  `json:"responseId"`
	SubmitTime *int64 `json:"submitTime"` // epoch milliseconds
}

// SurveyCondition selects the survey responses of one user and sample
type SurveyCondition struct {
	UserID   string `json:"userId"`
	Number   string `json:"number"`
	SurveyID int64  `json:"surveyId"`
}

// SearchResult is one search hit. The concrete type is one of
// ApplicationResult, ReportResult, LocusResult or SurveyResult.
type SearchResult interface {
	ResultScope() scope.Scope
}

// ApplicationResult is a hit in the application scope
type ApplicationResult struct {
	Scope       scope.Scope `json:"scope"`
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Class       string      `json:"class"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
}

// ResultScope implements SearchResult
func (r ApplicationResult) ResultScope() scope.Scope { return scope.Application }

// ReportResult is a hit in report content. Domain is "Model" for model records.
type ReportResult struct {
	Scope       scope.Scope `json:"scope"`
	ID          string      `json:"id"`
	Domain      string      `json:"domain"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
}

// ResultScope implements SearchResult
func (r ReportResult) ResultScope() scope.Scope { return scope.Report }

// LocusResult is a hit on a genomic locus
type LocusResult struct {
	Scope      scope.Scope `json:"scope"`
	Chromosome string      `json:"chromosome"`
	Gene       string      `json:"gene"`
	RSID       string      `json:"rsId"`
	Genotypes  []string    `json:"genotypes"`
	Genotype   string      `json:"genotype"`
}

// ResultScope implements SearchResult
func (r LocusResult) ResultScope() scope.Scope { return scope.Locus }

// SurveyResult is a hit on a survey
type SurveyResult struct {
	Scope       scope.Scope `json:"scope"`
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	PlanTitle   string      `json:"planTitle"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
}

// ResultScope implements SearchResult
func (r SurveyResult) ResultScope() scope.Scope { return scope.Survey }

// SearchRequest holds the parameters of a search call. Page and Limit default
// to 1 and 10 when zero; Scopes defaults to scope.Defaults().
type SearchRequest struct {
	Number string   `json:"number"`
	Query  string   `json:"query"`
	Scopes []string `json:"scopes,omitempty"`
	Page   int      `json:"page,omitempty"`
	Limit  int      `json:"limit,omitempty"`
}

// SampleList is the result of a sample lookup
type SampleList struct {
	List []SampleRecord `json:"list"`
}

// VariantList is the result of a variant lookup
type VariantList struct {
	List []VariantRecord `json:"list"`
}

// SurveyResponseList is the result of a survey response query
type SurveyResponseList struct {
	List []SurveyResponseRecord `json:"list"`
}

// SearchPage is one page of search results. Total and Pages are reported by
// the platform and are not adjusted for out-of-range pages.
type SearchPage struct {
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Pages int            `json:"pages"`
	Total int            `json:"total"`
	List  []SearchResult `json:"list"`
}

// SMSReceipt confirms a notification was accepted
type SMSReceipt struct {
	Message string `json:"message"`
	Time    int64  `json:"time"` // epoch milliseconds
}

// NumberCheck reports whether a sample number is known to the platform
type NumberCheck struct {
	Number string `json:"number"`
	Flag   bool   `json:"flag"`
}
