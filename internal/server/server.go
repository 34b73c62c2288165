package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/copperline/crm/internal/activity/domain"
	alertdomain "github.com/copperline/crm/internal/alert/domain"
	"github.com/copperline/crm/internal/clock"
	"github.com/copperline/crm/internal/config"
	dealdomain "github.com/copperline/crm/internal/deal/domain"
	leaddomain "github.com/copperline/crm/internal/lead/domain"
	obslogger "github.com/copperline/crm/internal/observability/logger"
	obsmetrics "github.com/copperline/crm/internal/observability/metrics"
	taskdomain "github.com/copperline/crm/internal/task/domain"
	userdomain "github.com/copperline/crm/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware())
	r.Use(m.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	return r
}

func registerGin(m *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(m)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	clock       clock.Clock
	userSvc     userdomain.Service
	leadSvc     leaddomain.Service
	dealSvc     dealdomain.Service
	activitySvc activitydomain.Service
	taskSvc     taskdomain.Service
	alertSvc    alertdomain.Service
	source      alertdomain.MetricSource
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	Clock       clock.Clock
	UserSvc     userdomain.Service
	LeadSvc     leaddomain.Service
	DealSvc     dealdomain.Service
	ActivitySvc activitydomain.Service
	TaskSvc     taskdomain.Service
	AlertSvc    alertdomain.Service
	Source      alertdomain.MetricSource
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		clock:       p.Clock,
		userSvc:     p.UserSvc,
		leadSvc:     p.LeadSvc,
		dealSvc:     p.DealSvc,
		activitySvc: p.ActivitySvc,
		taskSvc:     p.TaskSvc,
		alertSvc:    p.AlertSvc,
		source:      p.Source,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerCronRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Leads --------
	api.GET("/leads", s.ListLeads)
	api.POST("/leads", s.CaptureLead)
	api.GET("/leads/:id", s.GetLeadByID)
	api.PATCH("/leads/:id/status", s.UpdateLeadStatus)
	api.POST("/leads/:id/convert", s.ConvertLead)

	// -------- Deals --------
	api.GET("/deals", s.ListDeals)
	api.POST("/deals", s.CreateDeal)
	api.GET("/deals/:id", s.GetDealByID)
	api.PATCH("/deals/:id/stage", s.SetDealStage)
	api.POST("/deals/:id/win", s.WinDeal)
	api.POST("/deals/:id/lose", s.LoseDeal)
	api.GET("/pipeline", s.GetPipeline)

	// -------- Activities --------
	api.GET("/activities", s.ListActivities)
	api.POST("/activities", s.LogActivity)

	// -------- Tasks --------
	api.GET("/tasks", s.ListTasks)
	api.POST("/tasks", s.CreateTask)
	api.POST("/tasks/:id/complete", s.CompleteTask)
	api.POST("/tasks/:id/outcome", s.RecordTaskOutcome)

	api.GET("/dashboard", s.GetDashboard)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AuthRequired(), s.RequireRole(userdomain.RoleAdmin))

	admin.GET("/users", s.ListUsers)
	admin.POST("/users", s.CreateUser)
	admin.GET("/users/:id", s.GetUserByID)
	admin.PATCH("/users/:id", s.UpdateUser)
	admin.POST("/users/:id/deactivate", s.DeactivateUser)

	admin.GET("/exclusions", s.ListExclusions)
	admin.POST("/exclusions", s.CreateExclusion)
	admin.DELETE("/exclusions/:id", s.DeleteExclusion)
}

func (s *Server) registerCronRoutes() {
	cron := s.engine.Group("/cron", s.CronAuthRequired())

	cron.POST("/quota", s.RunQuotaCron)
	cron.POST("/activity", s.RunActivityCron)
	cron.POST("/tasks", s.RunTasksCron)
	cron.POST("/marketing", s.RunMarketingCron)
}
