package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/pkg/external"
	"github.com/openbge-client/pkg/filters"
	"github.com/openbge-client/pkg/scope"
	"github.com/openbge-client/pkg/signature"
)

// Search paging defaults
const (
	DefaultSearchPage  = 1
	DefaultSearchLimit = 10
)

// sample lookups always request the first page of up to 1000 records
const (
	samplePage  = "1"
	sampleLimit = "1000"
)

// PlatformService implements domain.PlatformService on top of a signed gateway
type PlatformService struct {
	gateway external.Gateway
	logger  *logrus.Logger
	now     func() time.Time
}

// Option configures a PlatformService
type Option func(*PlatformService)

// WithClock overrides the clock used for SMS receipts
func WithClock(now func() time.Time) Option {
	return func(s *PlatformService) {
		s.now = now
	}
}

// NewPlatformService creates a new facade over gateway
func NewPlatformService(gateway external.Gateway, logger *logrus.Logger, opts ...Option) *PlatformService {
	if logger == nil {
		logger = logrus.New()
	}
	s := &PlatformService{
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ domain.PlatformService = (*PlatformService)(nil)

// GetSampleData looks up biosample kits by number
func (s *PlatformService) GetSampleData(ctx context.Context, numbers []string) (*domain.SampleList, error) {
	if err := validateNumbers(numbers); err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return &domain.SampleList{List: []domain.SampleRecord{}}, nil
	}

	samples, err := s.fetchSamples(ctx, domain.CodeSampleData, numbers)
	if err != nil {
		return nil, err
	}
	return &domain.SampleList{List: filters.SampleList(samples)}, nil
}

// GetSurveyResponses lists the survey answer sheets matching conditions
func (s *PlatformService) GetSurveyResponses(ctx context.Context, conditions []domain.SurveyCondition) (*domain.SurveyResponseList, error) {
	if err := validateConditions(conditions); err != nil {
		return nil, err
	}

	type condition struct {
		UserID   string `json:"user_id"`
		Number   string `json:"biosample_id"`
		SurveyID int64  `json:"survey_id"`
	}
	wire := make([]condition, len(conditions))
	for i, c := range conditions {
		wire[i] = condition{UserID: c.UserID, Number: c.Number, SurveyID: c.SurveyID}
	}
	encoded, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to encode survey conditions: %w", err)
	}

	var raws []json.RawMessage
	err = s.call(ctx, domain.CodeSurveyResponses, http.MethodPost, external.PathSurveyResponses,
		signature.Params{"conditions": string(encoded)}, &raws)
	if err != nil {
		return nil, err
	}
	responses := filters.Records[filters.SurveyResponse](raws)
	return &domain.SurveyResponseList{List: filters.SurveyResponseList(responses)}, nil
}

// SendSMS sends a templated notification
func (s *PlatformService) SendSMS(ctx context.Context, phone, template string, data map[string]string) (*domain.SMSReceipt, error) {
	if err := validateSMS(phone, template); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]string{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sms data: %w", err)
	}

	params := signature.Params{
		"phone":    phone,
		"template": template,
		"data":     string(encoded),
	}
	if err := s.call(ctx, domain.CodeSendSMS, http.MethodPost, external.PathSMS, params, nil); err != nil {
		return nil, err
	}

	return &domain.SMSReceipt{
		Message: domain.MessageSuccess,
		Time:    s.now().UnixMilli(),
	}, nil
}

// IsValidNumber reports whether the platform knows a sample number
func (s *PlatformService) IsValidNumber(ctx context.Context, number string) (*domain.NumberCheck, error) {
	if err := validateNumber(number); err != nil {
		return nil, err
	}

	samples, err := s.fetchSamples(ctx, domain.CodeValidNumber, []string{number})
	if err != nil {
		return nil, err
	}
	return &domain.NumberCheck{Number: number, Flag: len(samples) > 0}, nil
}

// GetVariants returns the genotype calls of a sample at the given RS loci
func (s *PlatformService) GetVariants(ctx context.Context, number string, rsids []string) (*domain.VariantList, error) {
	if err := validateVariants(number, rsids); err != nil {
		return nil, err
	}

	params := signature.Params{
		"biosample_id": number,
		"rsid":         strings.Join(rsids, ","),
	}

	var raws []json.RawMessage
	if err := s.call(ctx, domain.CodeVariants, http.MethodPost, external.PathVariants, params, &raws); err != nil {
		return nil, err
	}
	variants := filters.Records[filters.Variant](raws)
	return &domain.VariantList{List: filters.PickVariants(variants)}, nil
}

// DoSearch runs a scoped search over the platform's content
func (s *PlatformService) DoSearch(ctx context.Context, req domain.SearchRequest) (*domain.SearchPage, error) {
	if err := validateSearch(req); err != nil {
		return nil, err
	}

	page := req.Page
	if page == 0 {
		page = DefaultSearchPage
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultSearchLimit
	}
	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = scope.Strings(scope.Defaults())
	}

	logger := s.logger.WithFields(logrus.Fields{
		"operation": "search",
		"scopes":    scopes,
		"page":      page,
		"limit":     limit,
	})
	if scope.MixesLocus(scopes) {
		logger.Warn("Locus scope combined with other scopes")
	}

	params := signature.Params{
		"biosample_id": req.Number,
		"query":        req.Query,
		"scope":        strings.Join(scope.ToPlatform(scopes), ","),
		"page":         strconv.Itoa(page),
		"limit":        strconv.Itoa(limit),
	}

	var data filters.SearchData
	if err := s.call(ctx, domain.CodeSearch, http.MethodPost, external.PathSearch, params, &data); err != nil {
		return nil, err
	}

	list := make([]domain.SearchResult, 0, len(data.List))
	for _, hit := range data.List {
		item, err := filters.SearchItem(hit)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"id":    string(hit.ID),
				"scope": string(hit.Scope),
			}).Warn("Skipping search record with unknown scope")
			continue
		}
		list = append(list, item)
	}

	return &domain.SearchPage{
		Page:  page,
		Limit: limit,
		Pages: int(data.Pages.Value),
		Total: int(data.Total.Value),
		List:  list,
	}, nil
}

// GetNotFound calls an endpoint that does not exist. It always fails against
// a healthy platform and is used to check error propagation end to end.
func (s *PlatformService) GetNotFound(ctx context.Context) error {
	return s.call(ctx, domain.CodeNotFound, http.MethodGet, external.PathNotFound, nil, nil)
}

// Reachable interprets the outcome of GetNotFound: the platform is up when it
// answered, which normally means a 404.
func Reachable(err error) bool {
	if err == nil {
		return true
	}
	se, ok := domain.AsServiceError(err)
	return ok && se.Message == domain.NetworkMessage(http.StatusNotFound)
}

func (s *PlatformService) fetchSamples(ctx context.Context, code int, numbers []string) ([]filters.Sample, error) {
	params := signature.Params{
		"page":         samplePage,
		"limit":        sampleLimit,
		"biosample_id": strings.Join(numbers, ","),
	}

	var raws []json.RawMessage
	if err := s.call(ctx, code, http.MethodPost, external.PathSamples, params, &raws); err != nil {
		return nil, err
	}
	return filters.Records[filters.Sample](raws), nil
}

// call sends one request and decodes the result into out when out is not nil
func (s *PlatformService) call(ctx context.Context, code int, method, path string, params signature.Params, out interface{}) error {
	env := s.gateway.Call(ctx, method, path, params)
	if se := env.Err(code); se != nil {
		s.logger.WithFields(logrus.Fields{
			"code":    se.Code,
			"path":    path,
			"message": se.Message,
		}).Warn("Platform call failed")
		return se
	}

	if out == nil || isNull(env.Result) {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"code": code,
			"path": path,
		}).Warn("Unexpected platform result shape")
		return domain.NewServiceError(code, domain.VendorTag+domain.MessageMalformed)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

