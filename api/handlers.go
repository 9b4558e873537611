package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/engine"
	"github.com/top3pick/phonerec/logging"
	"github.com/top3pick/phonerec/pkg/conv"
	"github.com/top3pick/phonerec/pkg/dsl"
)

// maxBodyBytes 是 POST 请求体的上限。
const maxBodyBytes = 1 << 20

const homePage = "<h2>AI Phone Recommender API</h2>" +
	"<p>Use these endpoints:</p>" +
	"<ul>" +
	"<li><a href='/health'>/health</a></li>" +
	"<li><a href='/api/search?q=gaming+under+20000'>/api/search?q=gaming+under+20000</a></li>" +
	"<li>POST /api/recommend</li>" +
	"<li><a href='/api/stats'>/api/stats</a></li>" +
	"</ul>"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type recommendResponse struct {
	Success         bool `json:"success"`
	Count           int  `json:"count"`
	Recommendations any  `json:"recommendations"`
}

type searchResponse struct {
	Success         bool               `json:"success"`
	Query           string             `json:"query"`
	Count           int                `json:"count"`
	Recommendations []engine.TextMatch `json:"recommendations"`
}

type filterEcho struct {
	Budget  *int    `json:"budget"`
	UseCase *string `json:"use_case"`
	Expr    string  `json:"expr,omitempty"`
}

type filterResponse struct {
	Success         bool               `json:"success"`
	Filters         filterEcho         `json:"filters"`
	Count           int                `json:"count"`
	Recommendations []engine.SpecMatch `json:"recommendations"`
}

type statsResponse struct {
	Success bool          `json:"success"`
	Stats   catalog.Stats `json:"stats"`
}

// queryParams 是校验后的请求参数。
type queryParams struct {
	TopK   int  `validate:"min=1"`
	Budget *int `validate:"omitempty,min=0"`
}

func (s *Server) home(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, homePage)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: "phone-recommender-api"})
}

// engine 返回当前引擎；尚未就绪时尝试一次加载。
func (s *Server) engine(r *http.Request) (*engine.Engine, error) {
	if e, err := s.handle.Current(); err == nil {
		return e, nil
	}
	return s.handle.Init(r.Context())
}

func (s *Server) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.Ctx(r.Context())
	log.Warn().Err(err).Msg("model not available")
	respondErrorMessage(w, http.StatusServiceUnavailable, "Model not available", "Recommender failed to initialize")
}

// engineError 把引擎错误映射为 HTTP 状态码。
func (s *Server) engineError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	switch {
	case core.IsInvalidInput(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case core.IsNotReady(err):
		s.unavailable(w, r, err)
	default:
		log := logging.Ctx(r.Context())
		log.Error().Err(err).Msg("recommendation failed")
		respondErrorMessage(w, http.StatusInternalServerError, err.Error(), detail)
	}
}

// checkParams 校验 top_k 与预算，失败时返回面向客户端的错误信息。
func (s *Server) checkParams(p queryParams) string {
	maxTopK := s.cfg.Engine.MaxTopK
	err := s.validate.Struct(p)
	if err == nil && maxTopK > 0 {
		err = s.validate.Var(p.TopK, fmt.Sprintf("max=%d", maxTopK))
		if err != nil {
			return fmt.Sprintf("top_k must be between 1 and %d", maxTopK)
		}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		switch verrs[0].Field() {
		case "TopK":
			if maxTopK > 0 {
				return fmt.Sprintf("top_k must be between 1 and %d", maxTopK)
			}
			return "top_k must be a positive integer"
		case "Budget":
			return "budget must be a non-negative integer"
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func (s *Server) defaultTopK() int {
	if s.cfg.Engine.TopK > 0 {
		return s.cfg.Engine.TopK
	}
	return core.Defaults.DefaultTopK()
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}
	var data map[string]any
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	query, _ := conv.ToString(data["query"])
	useCase, _ := conv.ToString(data["use_case"])
	p := queryParams{TopK: s.defaultTopK()}
	if b, ok := conv.ToBudget(data["budget"]); ok {
		p.Budget = &b
	}
	if raw, ok := data["top_k"]; ok && raw != nil {
		k, ok := conv.ToInt(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "top_k must be an integer")
			return
		}
		p.TopK = k
	}

	e, err := s.engine(r)
	if err != nil {
		s.unavailable(w, r, err)
		return
	}

	if query == "" && useCase == "" && p.Budget == nil {
		respondError(w, http.StatusBadRequest, "Provide at least one of: query, use_case, or budget")
		return
	}
	if msg := s.checkParams(p); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	const detail = "Error processing recommendation request"
	if query != "" {
		res, err := e.RecommendByText(r.Context(), query, p.TopK)
		if err != nil {
			s.engineError(w, r, err, detail)
			return
		}
		respondJSON(w, http.StatusOK, recommendResponse{Success: true, Count: len(res), Recommendations: res})
		return
	}

	res, err := e.RecommendBySpecs(r.Context(), engine.SpecQuery{Budget: p.Budget, UseCase: useCase}, p.TopK)
	if err != nil {
		s.engineError(w, r, err, detail)
		return
	}
	respondJSON(w, http.StatusOK, recommendResponse{Success: true, Count: len(res), Recommendations: res})
}

// topKParam 读取 top_k 查询参数；无法解析时使用默认值。
func (s *Server) topKParam(r *http.Request) int {
	if v := r.URL.Query().Get("top_k"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			return k
		}
	}
	return s.defaultTopK()
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	p := queryParams{TopK: s.topKParam(r)}
	if msg := s.checkParams(p); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	e, err := s.engine(r)
	if err != nil {
		s.unavailable(w, r, err)
		return
	}
	res, err := e.RecommendByText(r.Context(), q, p.TopK)
	if err != nil {
		s.engineError(w, r, err, "")
		return
	}
	respondJSON(w, http.StatusOK, searchResponse{Success: true, Query: q, Count: len(res), Recommendations: res})
}

func (s *Server) filter(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	p := queryParams{TopK: s.topKParam(r)}
	if v := values.Get("budget"); v != "" {
		if b, ok := conv.ToBudget(v); ok {
			p.Budget = &b
		}
	}
	var useCase *string
	if v := values.Get("use_case"); v != "" {
		useCase = &v
	}
	expr := values.Get("expr")

	if p.Budget == nil && useCase == nil {
		respondError(w, http.StatusBadRequest, "Provide at least one of: budget or use_case")
		return
	}
	if msg := s.checkParams(p); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if len(expr) > dsl.MaxExprLength {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("expr must be at most %d bytes", dsl.MaxExprLength))
		return
	}

	e, err := s.engine(r)
	if err != nil {
		s.unavailable(w, r, err)
		return
	}
	q := engine.SpecQuery{Budget: p.Budget, Expr: expr}
	if useCase != nil {
		q.UseCase = *useCase
	}
	res, err := e.RecommendBySpecs(r.Context(), q, p.TopK)
	if err != nil {
		s.engineError(w, r, err, "")
		return
	}
	respondJSON(w, http.StatusOK, filterResponse{
		Success:         true,
		Filters:         filterEcho{Budget: p.Budget, UseCase: useCase, Expr: expr},
		Count:           len(res),
		Recommendations: res,
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	e, err := s.engine(r)
	if err != nil {
		s.unavailable(w, r, err)
		return
	}
	st, err := e.Stats()
	if err != nil {
		s.engineError(w, r, err, "")
		return
	}
	respondJSON(w, http.StatusOK, statsResponse{Success: true, Stats: st})
}
