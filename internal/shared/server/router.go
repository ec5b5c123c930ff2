package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"summary-backend/internal/shared/config"
	"summary-backend/internal/shared/metrics"
	"summary-backend/internal/shared/server/middleware"
	"summary-backend/internal/shared/server/respond"
)

// RouteRegistrar is implemented by feature handlers.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// HealthFunc reports dependency status for GET /api/health. A non-nil error
// turns the response into a 503.
type HealthFunc func(ctx context.Context) (gin.H, error)

// RouterDeps carries what NewRouter mounts.
type RouterDeps struct {
	Config   config.Config
	Handlers []RouteRegistrar
	Health   HealthFunc
	// BlobDir, when set, is served under /blobs so local public URLs resolve.
	BlobDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.BlobDir != "" {
		r.Static("/blobs", deps.BlobDir)
	}

	api := r.Group("/api")
	api.GET("/health", healthHandler(deps.Health))
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "Not found", nil)
	})
	return r
}

func healthHandler(check HealthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{}
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			status, err := check(ctx)
			for k, v := range status {
				body[k] = v
			}
			if err != nil {
				body["ok"] = false
				body["error"] = err.Error()
				respond.JSON(c, http.StatusServiceUnavailable, body)
				return
			}
		}
		body["ok"] = true
		respond.OK(c, body)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
