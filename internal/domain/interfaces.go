package domain

import (
	"context"
)

// PlatformService exposes one method per platform capability. Business and
// transport failures are returned as *ServiceError, bad input as *ValidationError.
type PlatformService interface {
	GetSampleData(ctx context.Context, numbers []string) (*SampleList, error)
	GetSurveyResponses(ctx context.Context, conditions []SurveyCondition) (*SurveyResponseList, error)
	SendSMS(ctx context.Context, phone, template string, data map[string]string) (*SMSReceipt, error)
	IsValidNumber(ctx context.Context, number string) (*NumberCheck, error)
	GetVariants(ctx context.Context, number string, rsids []string) (*VariantList, error)
	DoSearch(ctx context.Context, req SearchRequest) (*SearchPage, error)
	GetNotFound(ctx context.Context) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetPlatformConfig() *PlatformConfig
	GetServerConfig() *ServerConfig
	Reload() error
	Validate() error
}
