package main

import (
	summaryapi "Abridge_1.0/backend/go/internal/summary_service/api"
	summarysvc "Abridge_1.0/backend/go/internal/summary_service/service"
	userapi "Abridge_1.0/backend/go/internal/user_service/api"
	usersvc "Abridge_1.0/backend/go/internal/user_service/service"
	"Abridge_1.0/backend/go/pkg/apierror"
	"Abridge_1.0/backend/go/pkg/httpmiddleware"
	"Abridge_1.0/backend/go/pkg/logger"
	"Abridge_1.0/backend/go/pkg/ratelimiter"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthCheck 是 /healthz 探测的一个依赖。
type healthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type routerDeps struct {
	Users     *usersvc.Service
	Summaries *summarysvc.Service
	Limiter   ratelimiter.KeyedRateLimiter // 为 nil 时不限流
	Health    []healthCheck
	Log       *logger.Logger
}

var errUnhealthy = apierror.New(apierror.KindUpstreamTransient, http.StatusServiceUnavailable,
	"service_unavailable", "Dependency unavailable", "Try again later")

// newRouter 组装中间件与全部路由。业务路由同时挂载在根路径和 /api 下。
func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(httpmiddleware.RequestLogger(d.Log), httpmiddleware.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		for _, h := range d.Health {
			if err := h.Check(ctx); err != nil {
				apierror.Respond(c, errUnhealthy.WithMessage(h.Name+" unavailable").Wrap(err))
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := userapi.AuthMiddleware(d.Users.Tokens())
	userHandler := userapi.NewHandler(d.Users)
	summaryHandler := summaryapi.NewHandler(d.Summaries)

	for _, prefix := range []string{"/", "/api"} {
		g := r.Group(prefix)
		if d.Limiter != nil {
			g.Use(httpmiddleware.RateLimit(d.Limiter))
		}
		userapi.RegisterRoutes(g, userHandler, auth)
		summaryapi.RegisterRoutes(g, summaryHandler, auth)
	}
	return r
}
