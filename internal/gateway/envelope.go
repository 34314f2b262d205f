package gateway

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/coursehub/gateway/pkg/limiter"
)

// envelope is the uniform response shape: exactly one of Data or Error
// is set.
type envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *errorBody `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
}

type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
	Detail     string `json:"detail,omitempty"` // diagnostic mode only
}

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
}

func setRateHeaders(h http.Header, dec limiter.Decision) {
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(dec.Remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.Itoa(ceilSeconds(dec.ResetIn)))
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

func (g *Gateway) respondData(w http.ResponseWriter, rc *RequestContext, data any) {
	rc.Status = http.StatusOK
	writeJSON(w, rc.Status, envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	g.logRequest(rc)
}

func (g *Gateway) respondError(w http.ResponseWriter, rc *RequestContext, e *Error) {
	rc.Status = e.Kind.HTTPStatus()
	rc.Err = e

	body := &errorBody{Code: e.Kind.Code(), Message: e.Message, Field: e.Field}
	if e.Kind == KindRateLimited {
		retry := ceilSeconds(e.RetryAfter)
		if retry < 1 {
			retry = 1
		}
		body.RetryAfter = retry
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}
	// Internal detail stays out of responses unless diagnostics are on.
	if e.Kind == KindUpstream && g.diagnostics && e.cause != nil {
		body.Detail = e.cause.Error()
	}

	writeJSON(w, rc.Status, envelope{
		Success:   false,
		Error:     body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	g.logRequest(rc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequest emits the single structured line every request ends with,
// whatever path it took through the pipeline.
func (g *Gateway) logRequest(rc *RequestContext) {
	fields := []zap.Field{
		zap.String("request_id", rc.ID),
		zap.String("method", rc.Method),
		zap.String("path", rc.Path),
		zap.Int("status", rc.Status),
		zap.Duration("duration", time.Since(rc.StartedAt)),
	}
	if rc.UserID != "" {
		fields = append(fields, zap.String("user_id", rc.UserID))
	}
	if rc.CacheTier != "" {
		// "none" means the route was cacheable but missed both tiers.
		fields = append(fields, zap.String("cache_tier", string(rc.CacheTier)))
	}
	if rc.Err != nil {
		fields = append(fields, zap.String("error", rc.Err.Error()))
	}

	if rc.Status >= http.StatusInternalServerError {
		g.log.Error("request", fields...)
		return
	}
	g.log.Info("request", fields...)
}
