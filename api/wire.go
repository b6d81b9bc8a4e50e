package api

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backend/internal/audit"
	"backend/internal/auth"
	"backend/internal/billing"
	"backend/internal/checklist"
	"backend/internal/config"
	"backend/internal/customer"
	"backend/internal/estimate"
	"backend/internal/infra/queue"
	"backend/internal/job"
	"backend/internal/lead"
	"backend/internal/material"
	"backend/internal/tenant"
	"backend/internal/timesheet"
	"backend/internal/user"
)

// AppContainer holds every wired service. Construction order follows the
// dependency graph: infra handles in, services out.
type AppContainer struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  redis.UniversalClient
	Logger *zap.Logger

	Queue queue.Client
	Audit *audit.Recorder
	JWT   *auth.JWTService

	TenantRepo     tenant.Repository
	TenantService  tenant.Service
	TenantResolver tenant.Resolver

	Users      *user.Service
	Customers  *customer.Service
	Leads      *lead.Service
	Jobs       *job.Service
	Estimates  *estimate.Service
	Timesheets *timesheet.Service
	Materials  *material.Service
	Checklists *checklist.Service
	Invoices   *billing.Service
}

// BuildContainer wires all services onto the shared infra handles. The queue
// client may be nil when background processing is disabled.
func BuildContainer(
	cfg *config.Config,
	db *gorm.DB,
	rdb redis.UniversalClient,
	q queue.Client,
	logger *zap.Logger,
) *AppContainer {
	if logger == nil {
		logger = zap.NewNop()
	}

	auditRec := audit.NewRecorder(db, logger)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, rdb)

	tenantRepo := tenant.NewRepository(db)
	tenantService := tenant.NewService(tenantRepo)
	resolver := tenant.NewCachedResolver(tenant.NewResolver(tenantRepo), rdb, logger)

	users := user.NewService(db)
	customers := customer.NewService(db)
	leads := lead.NewService(db, customers, q, auditRec, logger)
	jobs := job.NewService(db, auditRec)
	estimates := estimate.NewService(db, jobs, auditRec)
	timesheets := timesheet.NewService(db, jobs)
	materials := material.NewService(db)
	checklists := checklist.NewService(db)
	invoices := billing.NewService(db, jobs, timesheets, materials, q, auditRec, cfg.Billing, logger)

	return &AppContainer{
		Config:         cfg,
		DB:             db,
		Redis:          rdb,
		Logger:         logger,
		Queue:          q,
		Audit:          auditRec,
		JWT:            jwtService,
		TenantRepo:     tenantRepo,
		TenantService:  tenantService,
		TenantResolver: resolver,
		Users:          users,
		Customers:      customers,
		Leads:          leads,
		Jobs:           jobs,
		Estimates:      estimates,
		Timesheets:     timesheets,
		Materials:      materials,
		Checklists:     checklists,
		Invoices:       invoices,
	}
}

// Models returns every GORM model for auto migration.
func Models() []interface{} {
	return []interface{}{
		&tenant.Tenant{},
		&user.User{},
		&customer.Customer{},
		&customer.ServiceAddress{},
		&lead.Lead{},
		&estimate.Estimate{},
		&job.Job{},
		&timesheet.TimeEntry{},
		&material.Material{},
		&material.JobMaterial{},
		&checklist.Template{},
		&checklist.JobChecklist{},
		&billing.Invoice{},
		&audit.Log{},
	}
}
