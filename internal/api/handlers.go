package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/internal/middleware"
	"github.com/openbge-client/internal/service"
)

type sampleDataRequest struct {
	Numbers []string `json:"numbers"`
}

type surveyResponsesRequest struct {
	Conditions []domain.SurveyCondition `json:"conditions"`
}

type sendSMSRequest struct {
	Phone    string            `json:"phone"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// errorResponse is the body of every non-2xx reply
type errorResponse struct {
	Error         string `json:"error"`
	Code          int    `json:"code,omitempty"`
	Field         string `json:"field,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

func (s *Server) handleSampleData(c *gin.Context) {
	var req sampleDataRequest
	if !s.bind(c, &req) {
		return
	}

	result, err := s.service.GetSampleData(c.Request.Context(), req.Numbers)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleValidNumber(c *gin.Context) {
	result, err := s.service.IsValidNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleVariants accepts rsid as a repeated or comma separated query parameter
func (s *Server) handleVariants(c *gin.Context) {
	var rsids []string
	for _, v := range c.QueryArray("rsid") {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				rsids = append(rsids, id)
			}
		}
	}

	result, err := s.service.GetVariants(c.Request.Context(), c.Param("number"), rsids)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSurveyResponses(c *gin.Context) {
	var req surveyResponsesRequest
	if !s.bind(c, &req) {
		return
	}

	result, err := s.service.GetSurveyResponses(c.Request.Context(), req.Conditions)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSendSMS(c *gin.Context) {
	var req sendSMSRequest
	if !s.bind(c, &req) {
		return
	}

	result, err := s.service.SendSMS(c.Request.Context(), req.Phone, req.Template, req.Data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearch(c *gin.Context) {
	var req domain.SearchRequest
	if !s.bind(c, &req) {
		return
	}

	result, err := s.service.DoSearch(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleProbe reports the outcome of the platform's not-found endpoint. A
// service error is the expected answer and is returned with 200.
func (s *Server) handleProbe(c *gin.Context) {
	err := s.service.GetNotFound(c.Request.Context())
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"reachable": true})
		return
	}
	if se, ok := domain.AsServiceError(err); ok {
		c.JSON(http.StatusOK, gin.H{"reachable": service.Reachable(err), "code": se.Code, "message": se.Message})
		return
	}
	s.fail(c, err)
}

func (s *Server) bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:         "invalid request body: " + err.Error(),
			CorrelationID: c.GetString(middleware.CorrelationIDKey),
		})
		return false
	}
	return true
}

// fail maps facade errors: bad input is 400, platform outcomes are 502
func (s *Server) fail(c *gin.Context, err error) {
	correlationID := c.GetString(middleware.CorrelationIDKey)

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:         ve.Message,
			Field:         ve.Field,
			CorrelationID: correlationID,
		})
		return
	}

	if se, ok := domain.AsServiceError(err); ok {
		c.JSON(http.StatusBadGateway, errorResponse{
			Error:         se.Message,
			Code:          se.Code,
			CorrelationID: correlationID,
		})
		return
	}

	s.logger.WithError(err).WithField("correlation_id", correlationID).Error("Unexpected error")
	c.JSON(http.StatusInternalServerError, errorResponse{
		Error:         "internal error",
		CorrelationID: correlationID,
	})
}
