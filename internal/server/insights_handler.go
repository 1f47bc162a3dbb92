package server

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tracelens/internal/dao"
	"tracelens/internal/insights"
	"tracelens/pkg/timerange"
)

func insightsErrorCode(err error) int {
	if goerrors.Is(err, insights.ErrBadInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func bindInsightsRequest(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (s *Server) bindBucket(c *gin.Context, req dao.InsightsRequest) (timerange.Bucket, bool) {
	bucket, err := insights.ParseBucket(req.TimeBucket)
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return "", false
	}
	return bucket, true
}

// @Summary Trace traffic volume
// @Description Trace counts per time bucket, split by status, with totals
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.InsightsRequest true "query"
// @Success 200 {object} insightsclient.TrafficVolumeResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/traffic/volume [post]
func (s *Server) handleTrafficVolume(c *gin.Context) {
	var req dao.InsightsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	bucket, ok := s.bindBucket(c, req)
	if !ok {
		return
	}
	resp, err := s.insights.TrafficVolume(req, bucket)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Trace latency
// @Description Latency percentiles over successful traces, overall and per bucket
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.InsightsRequest true "query"
// @Success 200 {object} insightsclient.TrafficLatencyResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/traffic/latency [post]
func (s *Server) handleTrafficLatency(c *gin.Context) {
	var req dao.InsightsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	bucket, ok := s.bindBucket(c, req)
	if !ok {
		return
	}
	resp, err := s.insights.TrafficLatency(req, bucket)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Trace error rate
// @Description Error rate per time bucket with window totals
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.InsightsRequest true "query"
// @Success 200 {object} insightsclient.TrafficErrorsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/traffic/errors [post]
func (s *Server) handleTrafficErrors(c *gin.Context) {
	var req dao.InsightsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	bucket, ok := s.bindBucket(c, req)
	if !ok {
		return
	}
	resp, err := s.insights.TrafficErrors(req, bucket)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Token usage
// @Description Input/output token totals and averages, overall and per bucket
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.InsightsRequest true "query"
// @Success 200 {object} insightsclient.TokenUsageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/tokens/usage [post]
func (s *Server) handleTokenUsage(c *gin.Context) {
	var req dao.InsightsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	bucket, ok := s.bindBucket(c, req)
	if !ok {
		return
	}
	resp, err := s.insights.TokenUsage(req, bucket)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Discover assessments
// @Description Assessment names seen on the selected traces with type and sources
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.InsightsRequest true "query"
// @Success 200 {object} insightsclient.AssessmentDiscoveryResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/assessments/discovery [post]
func (s *Server) handleAssessmentsDiscovery(c *gin.Context) {
	var req dao.InsightsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	resp, err := s.insights.AssessmentsDiscovery(req)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Assessment metrics
// @Description Typed summary and time series for one assessment
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.AssessmentMetricsRequest true "query"
// @Success 200 {object} insightsclient.AssessmentMetricsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/assessments/metrics [post]
func (s *Server) handleAssessmentMetrics(c *gin.Context) {
	var req dao.AssessmentMetricsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	bucket, ok := s.bindBucket(c, req.InsightsRequest)
	if !ok {
		return
	}
	resp, err := s.insights.AssessmentMetrics(req, bucket)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Discover tools
// @Description Tools called by the selected traces with call and error aggregates
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.InsightsRequest true "query"
// @Success 200 {object} insightsclient.ToolDiscoveryResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/tools/discovery [post]
func (s *Server) handleToolsDiscovery(c *gin.Context) {
	var req dao.InsightsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	resp, err := s.insights.ToolsDiscovery(req)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Tool metrics
// @Description One tool's aggregates and time series; empty tool_name covers all tools
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.ToolMetricsRequest true "query"
// @Success 200 {object} insightsclient.ToolMetricsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/tools/metrics [post]
func (s *Server) handleToolMetrics(c *gin.Context) {
	var req dao.ToolMetricsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	bucket, ok := s.bindBucket(c, req.InsightsRequest)
	if !ok {
		return
	}
	resp, err := s.insights.ToolMetrics(req, bucket)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Discover tags
// @Description Tag keys on the selected traces, system tags excluded
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.InsightsRequest true "query"
// @Success 200 {object} insightsclient.TagDiscoveryResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/tags/discovery [post]
func (s *Server) handleTagsDiscovery(c *gin.Context) {
	var req dao.InsightsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	resp, err := s.insights.TagsDiscovery(req)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Tag values
// @Description Top values of one tag key with counts and share of tagged traces
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.TagRequest true "query"
// @Success 200 {object} insightsclient.TagValuesResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/tags/values [post]
func (s *Server) handleTagValues(c *gin.Context) {
	var req dao.TagRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	resp, err := s.insights.TagValues(req)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Tag metrics
// @Description Per-value trace counts per time bucket for one tag key
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.TagRequest true "query"
// @Success 200 {object} insightsclient.TagMetricsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/tags/metrics [post]
func (s *Server) handleTagMetrics(c *gin.Context) {
	var req dao.TagRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	bucket, ok := s.bindBucket(c, req.InsightsRequest)
	if !ok {
		return
	}
	resp, err := s.insights.TagMetrics(req, bucket)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Discover dimensions
// @Description Correlatable dimensions: builtins plus tags with inferred data types
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.InsightsRequest true "query"
// @Success 200 {object} insightsclient.DimensionDiscoveryResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/dimensions/discovery [post]
func (s *Server) handleDimensionsDiscovery(c *gin.Context) {
	var req dao.InsightsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	resp, err := s.insights.DimensionsDiscovery(req)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Dimension NPMI
// @Description NPMI between two dimension filters with counts and strength
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.NPMIRequest true "query"
// @Success 200 {object} insightsclient.NPMIResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/dimensions/npmi [post]
func (s *Server) handleDimensionNPMI(c *gin.Context) {
	var req dao.NPMIRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	resp, err := s.insights.DimensionNPMI(req)
	if err != nil {
		s.writeError(c, insightsErrorCode(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Slice correlations
// @Description Dimension values most correlated with the filtered trace slice
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dao.CorrelationsRequest true "query"
// @Success 200 {object} insightsclient.CorrelationsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/traces/insights/correlations [post]
func (s *Server) handleCorrelations(c *gin.Context) {
	var req dao.CorrelationsRequest
	if !bindInsightsRequest(c, &req) {
		return
	}
	resp, err := s.insights.Correlations(req)
	if err != nil {
		s.writeError(c, insightsErrorCode(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
