// Package api 提供推荐服务的 HTTP 接口。
//
// 路由：
//
//	GET  /               简单首页
//	GET  /health         健康检查（任意来源 CORS）
//	POST /api/recommend  文本或规格推荐
//	GET  /api/search     文本推荐
//	GET  /api/filter     规格推荐
//	GET  /api/stats      目录统计
//	GET  /metrics        Prometheus 指标
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/top3pick/phonerec/config"
	"github.com/top3pick/phonerec/engine"
)

// Server 持有引擎句柄与 HTTP 层配置。
type Server struct {
	handle   *engine.Handle
	cfg      *config.App
	log      zerolog.Logger
	validate *validator.Validate
}

// New 创建 Server；cfg 为 nil 时使用默认配置。
func New(h *engine.Handle, cfg *config.App, log zerolog.Logger) *Server {
	if cfg == nil {
		cfg = config.Defaults()
	}
	return &Server{
		handle:   h,
		cfg:      cfg,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router 构建完整的路由树。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(s.recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", s.home)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))
		r.Get("/", s.health)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORS.APIOrigins,
			AllowedMethods:   s.cfg.CORS.Methods,
			AllowedHeaders:   s.cfg.CORS.Headers,
			AllowCredentials: s.cfg.CORS.AllowCredentials,
			MaxAge:           s.cfg.CORS.MaxAge,
		}))
		if rl := s.cfg.RateLimit; rl.Enabled {
			r.Use(httprate.Limit(rl.Requests, rl.Window,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					respondError(w, http.StatusTooManyRequests, "Too many requests")
				}),
			))
		}
		r.Post("/recommend", s.recommend)
		r.Get("/search", s.search)
		r.Get("/filter", s.filter)
		r.Get("/stats", s.stats)
	})
	return r
}

// HTTPServer 按配置创建 http.Server。
func (s *Server) HTTPServer() *http.Server {
	sc := s.cfg.Server
	return &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}
}
