package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "referral-giveaway-bot/docs"
	mw "referral-giveaway-bot/internal/http/middleware"
	rplatform "referral-giveaway-bot/internal/platform/redis"
)

// Engine combines the user-facing and administrative engine surfaces.
type Engine interface {
	TicketEngine
	AdminEngine
}

// RouterConfig carries what the router needs besides services.
type RouterConfig struct {
	BotToken       string
	InitDataTTL    time.Duration
	CacheTTL       time.Duration
	CORSOrigins    string
	AdminIDs       map[int64]struct{}
	DefaultWinners int
	Debug          bool
}

// NewRouter builds a gin engine with routes and middlewares wired.
func NewRouter(engine Engine, drawer Drawer, rdb *rplatform.Client, cfg RouterConfig) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(mw.RequestID(), mw.Logger(), mw.Recovery())

	corsConfig := cors.DefaultConfig()
	origins := splitOrigins(cfg.CORSOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Telegram-Init-Data", "init_data", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	th := NewTicketHandlers(engine)
	ah := NewAdminHandlers(engine, drawer, cfg.DefaultWinners)

	v1 := r.Group("/api/v1")

	public := v1.Group("", mw.RedisCache(rdb, cfg.CacheTTL))
	th.RegisterPublic(public)
	ah.RegisterPublic(public)

	authed := v1.Group("", mw.InitDataMiddleware(cfg.BotToken, cfg.InitDataTTL))
	th.Register(authed)

	admin := authed.Group("/admin", mw.RequireAdmin(cfg.AdminIDs))
	ah.Register(admin)

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
