package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coursehub/gateway/pkg/cache"
	"github.com/coursehub/gateway/pkg/validate"
)

// TTLs are short on purpose: every cached payload is a derived,
// frequently-changing aggregate, so correctness leans on the staleness
// bound, with invalidation as an optimization on top.
const (
	leaderboardTTL = 30 * time.Second
	rankTTL        = 30 * time.Second
	dashboardTTL   = 60 * time.Second
)

// cachedQuery is the cache-aside read path shared by every read
// handler: consult both tiers, and on a miss compute through the data
// store and populate the cache.
func (g *Gateway) cachedQuery(ctx context.Context, rc *RequestContext, key string, ttl time.Duration, operation string, params map[string]any) (json.RawMessage, error) {
	if val, tier := g.cache.Get(ctx, key); tier != cache.TierNone {
		rc.CacheTier = tier
		g.recorder.Add("gateway.cache.hit", 1, map[string]string{"tier": string(tier)})
		return json.RawMessage(val), nil
	}
	rc.CacheTier = cache.TierNone
	g.recorder.Add("gateway.cache.miss", 1, nil)

	result, err := g.store.Query(ctx, operation, params)
	if err != nil {
		return nil, errUpstream(err)
	}
	g.cache.Set(ctx, key, result, ttl)
	return result, nil
}

func (g *Gateway) handleLeaderboard(ctx context.Context, rc *RequestContext, r *http.Request) (any, error) {
	q := r.URL.Query()

	scope := q.Get("scope")
	if scope == "" {
		scope = "global"
	}
	if scope != "global" && scope != "course" {
		return nil, errInvalidInput("scope", "scope must be global or course")
	}

	courseID := q.Get("courseId")
	if scope == "course" && !validate.ID(courseID) {
		return nil, errInvalidInput("courseId", "a valid course id is required for course scope")
	}

	limit, err := queryInt(q.Get("limit"), 20)
	if err != nil || !validate.IntRange(limit, 1, 100) {
		return nil, errInvalidInput("limit", "limit must be between 1 and 100")
	}
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil || !validate.IntRange(offset, 0, 10000) {
		return nil, errInvalidInput("offset", "offset must be between 0 and 10000")
	}

	key := fmt.Sprintf("leaderboard:%s:%s:%d:%d", scope, courseID, offset, limit)
	return g.cachedQuery(ctx, rc, key, leaderboardTTL, "get_leaderboard", map[string]any{
		"scope":    scope,
		"courseId": courseID,
		"limit":    limit,
		"offset":   offset,
	})
}

func (g *Gateway) handleRank(ctx context.Context, rc *RequestContext, _ *http.Request) (any, error) {
	key := "rank:" + rc.UserID
	return g.cachedQuery(ctx, rc, key, rankTTL, "get_user_rank", map[string]any{
		"userId": rc.UserID,
	})
}

func (g *Gateway) handleDashboardStats(ctx context.Context, rc *RequestContext, _ *http.Request) (any, error) {
	return g.cachedQuery(ctx, rc, "dashboard_stats", dashboardTTL, "get_dashboard_stats", nil)
}

func (g *Gateway) handleHealth(ctx context.Context, _ *RequestContext, _ *http.Request) (any, error) {
	return g.health.Report(ctx), nil
}

type progressSyncInput struct {
	CourseID     string `json:"courseId"`
	LessonID     string `json:"lessonId"`
	Completed    bool   `json:"completed"`
	SecondsSpent int    `json:"secondsSpent"`
}

func (g *Gateway) handleProgressSync(ctx context.Context, rc *RequestContext, r *http.Request) (any, error) {
	var in progressSyncInput
	if err := decodeBody(r, &in); err != nil {
		return nil, err
	}
	if !validate.ID(in.CourseID) {
		return nil, errInvalidInput("courseId", "malformed course id")
	}
	if !validate.ID(in.LessonID) {
		return nil, errInvalidInput("lessonId", "malformed lesson id")
	}
	if !validate.IntRange(in.SecondsSpent, 0, 86400) {
		return nil, errInvalidInput("secondsSpent", "secondsSpent must be between 0 and 86400")
	}

	result, err := g.store.Query(ctx, "sync_progress", map[string]any{
		"userId":       rc.UserID,
		"courseId":     in.CourseID,
		"lessonId":     in.LessonID,
		"completed":    in.Completed,
		"secondsSpent": in.SecondsSpent,
	})
	if err != nil {
		return nil, errUpstream(err)
	}

	// Progress feeds every ranked aggregate; trim their staleness.
	g.invalidateAfterWrite(ctx, "leaderboard:*", "rank:"+rc.UserID+"*", "dashboard_stats*")
	return result, nil
}

type quizCheckInput struct {
	QuizID  string `json:"quizId"`
	Answers []int  `json:"answers"`
}

func (g *Gateway) handleQuizCheck(ctx context.Context, rc *RequestContext, r *http.Request) (any, error) {
	var in quizCheckInput
	if err := decodeBody(r, &in); err != nil {
		return nil, err
	}
	if !validate.ID(in.QuizID) {
		return nil, errInvalidInput("quizId", "malformed quiz id")
	}
	if len(in.Answers) < 1 || len(in.Answers) > 100 {
		return nil, errInvalidInput("answers", "between 1 and 100 answers required")
	}
	for _, a := range in.Answers {
		if !validate.IntRange(a, 0, 25) {
			return nil, errInvalidInput("answers", "answer index out of range")
		}
	}

	result, err := g.store.Query(ctx, "check_quiz", map[string]any{
		"userId":  rc.UserID,
		"quizId":  in.QuizID,
		"answers": in.Answers,
	})
	if err != nil {
		return nil, errUpstream(err)
	}

	g.invalidateAfterWrite(ctx, "leaderboard:*", "rank:"+rc.UserID+"*")
	return result, nil
}

func (g *Gateway) handleLeaderboardRebuild(ctx context.Context, _ *RequestContext, _ *http.Request) (any, error) {
	result, err := g.store.Query(ctx, "rebuild_leaderboard", nil)
	if err != nil {
		return nil, errUpstream(err)
	}
	g.invalidateAfterWrite(ctx, "leaderboard:*")
	return result, nil
}

type purgeResult struct {
	Pattern string `json:"pattern"`
	Removed int    `json:"removed"`
}

func (g *Gateway) handleCachePurge(ctx context.Context, _ *RequestContext, r *http.Request) (any, error) {
	pattern := r.URL.Query().Get("pattern")
	if !validate.StringLen(pattern, 2, 128) || !strings.HasSuffix(pattern, "*") {
		return nil, errInvalidInput("pattern", "pattern must be a prefix with a trailing *")
	}
	removed := g.cache.Invalidate(ctx, pattern)
	return purgeResult{Pattern: validate.EscapeHTML(pattern), Removed: removed}, nil
}

// invalidateAfterWrite trims staleness after a known-impactful write.
// Best-effort: TTLs already bound how stale a survivor can get.
func (g *Gateway) invalidateAfterWrite(ctx context.Context, patterns ...string) {
	for _, p := range patterns {
		g.cache.Invalidate(ctx, p)
	}
}

const maxBodyBytes = 64 << 10

func decodeBody(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errInvalidInput("body", "malformed JSON body")
	}
	return nil
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
