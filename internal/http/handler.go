package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/tides"
	"go.ngs.io/geotides/internal/usecase"
)

const defaultInterval = time.Hour

// Handler handles HTTP requests for Earth orientation and tides.
type Handler struct {
	svc *usecase.Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc *usecase.Service) *Handler {
	return &Handler{svc: svc}
}

// timeRangeBody is the JSON form of a time range.
type timeRangeBody struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Interval string    `json:"interval"`
}

func (b timeRangeBody) toTimeRange() (usecase.TimeRange, error) {
	if b.Start.IsZero() {
		return usecase.TimeRange{}, domain.MalformedInput("start is required")
	}
	end := b.End
	if end.IsZero() {
		end = b.Start
	}
	interval, err := parseInterval(b.Interval)
	if err != nil {
		return usecase.TimeRange{}, err
	}
	return usecase.TimeRange{Start: b.Start.UTC(), End: end.UTC(), Interval: interval}, nil
}

type evaluateBody struct {
	timeRangeBody
	Points     []usecase.Location `json:"points"`
	Components []string           `json:"components"`
	Tensor     bool               `json:"tensor"`
}

type deformationBody struct {
	timeRangeBody
	Points     []usecase.Location `json:"points"`
	Components []string           `json:"components"`
}

type orbitBody struct {
	timeRangeBody
	TLE        [2]string `json:"tle"`
	Components []string  `json:"components"`
}

// GetEOP handles GET /v1/eop.
func (h *Handler) GetEOP(c *gin.Context) {
	tr, err := queryTimeRange(c)
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.svc.EOP(c.Request.Context(), usecase.EOPRequest{TimeRange: tr})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetComponents handles GET /v1/tides/components.
func (h *Handler) GetComponents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"components": h.svc.Components(),
		"series":     h.svc.Series(),
	})
}

// GetEvaluate handles GET /v1/tides/evaluate for a single point.
func (h *Handler) GetEvaluate(c *gin.Context) {
	tr, err := queryTimeRange(c)
	if err != nil {
		writeError(c, err)
		return
	}
	loc, err := queryLocation(c)
	if err != nil {
		writeError(c, err)
		return
	}
	tensor := false
	if s := c.Query("tensor"); s != "" {
		if tensor, err = strconv.ParseBool(s); err != nil {
			writeError(c, domain.WrapMalformed(err, "invalid tensor flag"))
			return
		}
	}
	resp, err := h.svc.Evaluate(c.Request.Context(), usecase.EvaluateRequest{
		TimeRange:  tr,
		Points:     []usecase.Location{loc},
		Components: splitList(c.Query("components")),
		Tensor:     tensor,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PostEvaluate handles POST /v1/tides/evaluate.
func (h *Handler) PostEvaluate(c *gin.Context) {
	var body evaluateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, domain.WrapMalformed(err, "invalid request body"))
		return
	}
	tr, err := body.toTimeRange()
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.svc.Evaluate(c.Request.Context(), usecase.EvaluateRequest{
		TimeRange:  tr,
		Points:     body.Points,
		Components: body.Components,
		Tensor:     body.Tensor,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PostDeformation handles POST /v1/tides/deformation.
func (h *Handler) PostDeformation(c *gin.Context) {
	var body deformationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, domain.WrapMalformed(err, "invalid request body"))
		return
	}
	tr, err := body.toTimeRange()
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.svc.Deformation(c.Request.Context(), usecase.DeformationRequest{
		TimeRange:  tr,
		Points:     body.Points,
		Components: body.Components,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PostOrbit handles POST /v1/tides/orbit.
func (h *Handler) PostOrbit(c *gin.Context) {
	var body orbitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, domain.WrapMalformed(err, "invalid request body"))
		return
	}
	tr, err := body.toTimeRange()
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.svc.Orbit(c.Request.Context(), usecase.OrbitRequest{
		TimeRange:  tr,
		Line1:      body.TLE[0],
		Line2:      body.TLE[1],
		Components: body.Components,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetHarmonics handles GET /v1/tides/harmonics.
func (h *Handler) GetHarmonics(c *gin.Context) {
	timeStr := c.Query("time")
	if timeStr == "" {
		writeError(c, domain.MalformedInput("time parameter is required"))
		return
	}
	t, err := time.Parse(time.RFC3339, timeStr)
	if err != nil {
		writeError(c, domain.WrapMalformed(err, "invalid time (expected RFC3339)"))
		return
	}
	req := usecase.HarmonicsRequest{
		Time:       t.UTC(),
		MaxDegree:  -1,
		Components: splitList(c.Query("components")),
	}
	for _, q := range []struct {
		name string
		dst  *int
	}{
		{"max_degree", &req.MaxDegree},
		{"min_degree", &req.MinDegree},
	} {
		if s := c.Query(q.name); s != "" {
			if *q.dst, err = strconv.Atoi(s); err != nil {
				writeError(c, domain.WrapMalformed(err, "invalid %s", q.name))
				return
			}
		}
	}
	for _, q := range []struct {
		name string
		dst  *float64
	}{
		{"gm", &req.GM},
		{"r", &req.R},
	} {
		if s := c.Query(q.name); s != "" {
			if *q.dst, err = strconv.ParseFloat(s, 64); err != nil {
				writeError(c, domain.WrapMalformed(err, "invalid %s", q.name))
				return
			}
		}
	}
	resp, err := h.svc.Harmonics(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ConstituentListResponse is the response for listing constituents.
type ConstituentListResponse struct {
	Name          string  `json:"name"`
	Doodson       string  `json:"doodson"`
	SpeedDegPerHr float64 `json:"speed_deg_per_hr"`
	Description   string  `json:"description,omitempty"`
}

var constituentDescriptions = map[string]string{
	"M2":  "Principal lunar semidiurnal",
	"S2":  "Principal solar semidiurnal",
	"N2":  "Larger lunar elliptic semidiurnal",
	"K2":  "Lunisolar semidiurnal",
	"K1":  "Lunisolar diurnal",
	"O1":  "Principal lunar diurnal",
	"P1":  "Principal solar diurnal",
	"Q1":  "Larger lunar elliptic diurnal",
	"M4":  "Shallow water overtide of M2",
	"M6":  "Shallow water overtide of M2",
	"MK3": "Shallow water terdiurnal",
	"S4":  "Shallow water overtide of S2",
	"MN4": "Shallow water quarter diurnal",
	"MS4": "Shallow water quarter diurnal",
	"Mf":  "Lunisolar fortnightly",
	"Mm":  "Lunar monthly",
	"Ssa": "Solar semiannual",
	"Sa":  "Solar annual",
}

// GetConstituentsList handles GET /v1/constituents, the names accepted by
// doodsonHarmonicTide.
func (h *Handler) GetConstituentsList(c *gin.Context) {
	response := make([]ConstituentListResponse, len(tides.StandardConstituents))
	for i, k := range tides.StandardConstituents {
		response[i] = ConstituentListResponse{
			Name:          k.Name,
			Doodson:       k.Doodson.String(),
			SpeedDegPerHr: k.SpeedDegPerHr,
			Description:   constituentDescriptions[k.Name],
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"constituents": response,
		"count":        len(response),
	})
}

func queryTimeRange(c *gin.Context) (usecase.TimeRange, error) {
	startStr := c.Query("start")
	if startStr == "" {
		return usecase.TimeRange{}, domain.MalformedInput("start parameter is required")
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return usecase.TimeRange{}, domain.WrapMalformed(err, "invalid start time (expected RFC3339)")
	}
	end := start
	if endStr := c.Query("end"); endStr != "" {
		if end, err = time.Parse(time.RFC3339, endStr); err != nil {
			return usecase.TimeRange{}, domain.WrapMalformed(err, "invalid end time (expected RFC3339)")
		}
	}
	interval, err := parseInterval(c.Query("interval"))
	if err != nil {
		return usecase.TimeRange{}, err
	}
	return usecase.TimeRange{Start: start.UTC(), End: end.UTC(), Interval: interval}, nil
}

func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		return defaultInterval, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, domain.WrapMalformed(err, "invalid interval")
	}
	return d, nil
}

func queryLocation(c *gin.Context) (usecase.Location, error) {
	var loc usecase.Location
	for _, q := range []struct {
		name     string
		dst      *float64
		required bool
	}{
		{"lat", &loc.Lat, true},
		{"lon", &loc.Lon, true},
		{"height", &loc.Height, false},
	} {
		s := c.Query(q.name)
		if s == "" {
			if q.required {
				return loc, domain.MalformedInput("%s parameter is required", q.name)
			}
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return loc, domain.WrapMalformed(err, "invalid %s", q.name)
		}
		*q.dst = v
	}
	return loc, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMissingDependency):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		logging.FromContext(ctx, nil).Error(ctx, "request failed", logging.Err(err))
	}
	body := gin.H{"error": err.Error()}
	if kind := domain.KindOf(err); kind != 0 {
		body["kind"] = kind.String()
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		body["request_id"] = id
	}
	c.AbortWithStatusJSON(status, body)
}
