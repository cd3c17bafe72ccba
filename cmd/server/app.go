package main

import (
	"net/http"

	"github.com/diewo77/go-workhours/auth"
	"github.com/diewo77/go-workhours/gate"
	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/internal/config"
	"github.com/diewo77/go-workhours/internal/events"
	"github.com/diewo77/go-workhours/internal/handlers"
	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/internal/policy"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/diewo77/go-workhours/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Services is the wired service graph shared by the HTTP server and the CLI.
type Services struct {
	Aggregator *services.Aggregator
	Closer     *services.Closer
	Exporter   *services.Exporter
	Invoices   *services.InvoiceService
	WorkLogs   *services.WorkLogService
	Projects   *services.ProjectService
	Checklists *services.ChecklistService
	Users      *services.UserService

	Progress       *services.MasterService[models.ProgressStatus, *models.ProgressStatus]
	WorkCategories *services.MasterService[models.WorkCategory, *models.WorkCategory]
	Inquiries      *services.MasterService[models.InquiryStatus, *models.InquiryStatus]
	MachineSeries  *services.MasterService[models.MachineSeries, *models.MachineSeries]
}

// NewServices wires stores to services. onUserChange is told about profile
// reassignments so cached permissions can be dropped.
func NewServices(db *gorm.DB, cfg *config.Config, publisher events.Publisher, onUserChange func(uint)) *Services {
	invLog := logger.WithComponent("invoice")

	worklogs := storage.NewWorkLogStore(db)
	projects := storage.NewProjectStore(db)
	invoices := storage.NewInvoiceStore(db, invLog)
	progress := storage.NewMasterStore[models.ProgressStatus, *models.ProgressStatus](db)

	agg := services.NewAggregator(worklogs, projects, invLog)
	return &Services{
		Aggregator: agg,
		Closer: services.NewCloser(agg, invoices, invLog,
			services.WithReclosePolicy(services.RecloseFromConfig(cfg.Invoice.AllowReclose)),
			services.WithPublisher(publisher),
		),
		Exporter: services.NewExporter(agg),
		Invoices: services.NewInvoiceService(invoices, publisher, invLog),
		WorkLogs: services.NewWorkLogService(worklogs),
		Projects:   services.NewProjectService(projects, progress),
		Checklists: services.NewChecklistService(storage.NewChecklistStore(db)),
		Users:      services.NewUserService(storage.NewUserStore(db), onUserChange),

		Progress: services.NewMasterService[models.ProgressStatus, *models.ProgressStatus](progress),
		WorkCategories: services.NewMasterService[models.WorkCategory, *models.WorkCategory](
			storage.NewMasterStore[models.WorkCategory, *models.WorkCategory](db)),
		Inquiries: services.NewMasterService[models.InquiryStatus, *models.InquiryStatus](
			storage.NewMasterStore[models.InquiryStatus, *models.InquiryStatus](db)),
		MachineSeries: services.NewMasterService[models.MachineSeries, *models.MachineSeries](
			storage.NewMasterStore[models.MachineSeries, *models.MachineSeries](db)),
	}
}

// App bundles what the router needs.
type App struct {
	DB       *gorm.DB
	Config   *config.Config
	Svc      *Services
	Gate     *policy.AuthGate
	Verifier *auth.Verifier
	Log      zerolog.Logger
}

// NewApp builds the application from a database and configuration.
func NewApp(db *gorm.DB, cfg *config.Config, publisher events.Publisher, log zerolog.Logger) *App {
	resolver := policy.NewDBProfileResolver(db)
	ag := policy.NewAuthGate(resolver, cfg.Auth.ProfileCacheTTL, logger.WithComponent("policy"))
	return &App{
		DB:       db,
		Config:   cfg,
		Svc:      NewServices(db, cfg, publisher, ag.InvalidateUser),
		Gate:     ag,
		Verifier: auth.NewVerifier(cfg.Auth.Secret(cfg.App.Dev), cfg.Auth.Issuer).WithUserCheck(resolver.UserActive),
		Log:      log,
	}
}

// Router returns the HTTP handler with every route mounted under /api.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(a.Log))
	r.Use(recoverJSON(a.Log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := a.DB.WithContext(req.Context()).Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(a.Verifier.Middleware, auth.RequireAuth)
		a.invoiceRoutes(api)
		a.worklogRoutes(api)
		a.projectRoutes(api)
		a.checklistRoutes(api)
		a.masterRoutes(api)
		a.adminRoutes(api)
	})
	return r
}

func (a *App) require(resource string) func(gate.Action) func(http.Handler) http.Handler {
	return func(action gate.Action) func(http.Handler) http.Handler {
		return a.Gate.RequirePermission(resource, action)
	}
}

func (a *App) invoiceRoutes(r chi.Router) {
	h := &handlers.InvoiceHandler{
		Aggregator:  a.Svc.Aggregator,
		Closer:      a.Svc.Closer,
		Exporter:    a.Svc.Exporter,
		Invoices:    a.Svc.Invoices,
		Log:         logger.WithComponent("invoice"),
		DefaultLang: a.Config.Invoice.DefaultLang,
	}
	can := a.require(policy.ResourceInvoice)
	r.Route("/invoices", func(r chi.Router) {
		r.With(can(gate.ActionPreview)).Get("/preview", h.Preview)
		r.With(can(gate.ActionClose)).Post("/close", h.Close)
		r.With(can(gate.ActionExport)).Get("/export", h.Export)
		r.With(can(gate.ActionList)).Get("/", h.List)
		r.With(can(gate.ActionView)).Get("/{id}", h.Get)
		r.With(can(gate.ActionUpdate)).Patch("/{id}", h.UpdateStatus)
		r.With(can(gate.ActionDelete)).Delete("/{id}", h.Delete)
	})
}

func (a *App) worklogRoutes(r chi.Router) {
	h := &handlers.WorkLogHandler{
		Svc:         a.Svc.WorkLogs,
		Gate:        a.Gate,
		Log:         logger.WithComponent("worklog"),
		DefaultLang: a.Config.Invoice.DefaultLang,
	}
	can := a.require(policy.ResourceWorkLog)
	r.Route("/worklogs", func(r chi.Router) {
		r.With(can(gate.ActionCreate)).Post("/", h.Create)
		r.With(can(gate.ActionList)).Get("/", h.List)
		r.With(can(gate.ActionList)).Get("/summary/{project_id}", h.Summary)
		// Get, Update and Delete authorize against the loaded entry.
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (a *App) projectRoutes(r chi.Router) {
	h := &handlers.ProjectHandler{
		Svc:         a.Svc.Projects,
		Log:         logger.WithComponent("project"),
		DefaultLang: a.Config.Invoice.DefaultLang,
	}
	can := a.require(policy.ResourceProject)
	r.Route("/projects", func(r chi.Router) {
		r.With(can(gate.ActionCreate)).Post("/", h.Create)
		r.With(can(gate.ActionList)).Get("/", h.List)
		r.With(can(gate.ActionView)).Get("/{id}", h.Get)
		r.With(can(gate.ActionUpdate)).Put("/{id}", h.Update)
		r.With(can(gate.ActionDelete)).Delete("/{id}", h.Delete)
	})
}

func (a *App) checklistRoutes(r chi.Router) {
	h := &handlers.ChecklistHandler{
		Svc:         a.Svc.Checklists,
		Log:         logger.WithComponent("checklist"),
		DefaultLang: a.Config.Invoice.DefaultLang,
	}
	can := a.require(policy.ResourceChecklist)
	r.Route("/checklists", func(r chi.Router) {
		r.With(can(gate.ActionCreate)).Post("/", h.Create)
		r.With(can(gate.ActionList)).Get("/", h.List)
		r.With(can(gate.ActionView)).Get("/{id}", h.Get)
		r.With(can(gate.ActionUpdate)).Patch("/{id}", h.Update)
		r.With(can(gate.ActionUpdate)).Post("/{id}/toggle", h.Toggle)
		r.With(can(gate.ActionDelete)).Delete("/{id}", h.Delete)
	})
}

func (a *App) masterRoutes(r chi.Router) {
	log := logger.WithComponent("master")
	lang := a.Config.Invoice.DefaultLang
	can := a.require(policy.ResourceMaster)
	r.Route("/masters", func(r chi.Router) {
		r.Mount("/progress", (&handlers.MasterHandler[models.ProgressStatus, *models.ProgressStatus]{
			Svc: a.Svc.Progress, Log: log, DefaultLang: lang,
		}).Routes(can))
		r.Mount("/work-categories", (&handlers.MasterHandler[models.WorkCategory, *models.WorkCategory]{
			Svc: a.Svc.WorkCategories, Log: log, DefaultLang: lang,
		}).Routes(can))
		r.Mount("/inquiries", (&handlers.MasterHandler[models.InquiryStatus, *models.InquiryStatus]{
			Svc: a.Svc.Inquiries, Log: log, DefaultLang: lang,
		}).Routes(can))
		r.Mount("/machine-series", (&handlers.MasterHandler[models.MachineSeries, *models.MachineSeries]{
			Svc: a.Svc.MachineSeries, Log: log, DefaultLang: lang,
		}).Routes(can))
	})
}

func (a *App) adminRoutes(r chi.Router) {
	h := &handlers.AdminHandler{
		Users:       a.Svc.Users,
		Log:         logger.WithComponent("admin"),
		DefaultLang: a.Config.Invoice.DefaultLang,
	}
	can := a.require(policy.ResourceUser)
	r.Route("/admin", func(r chi.Router) {
		r.With(can(gate.ActionList)).Get("/users", h.ListUsers)
		r.With(can(gate.ActionList)).Get("/profiles", h.ListProfiles)
		r.With(can(gate.ActionUpdate)).Put("/users/{id}/profile", h.AssignProfile)
		r.With(can(gate.ActionUpdate)).Patch("/users/{id}/activate", h.Activate)
		r.With(can(gate.ActionUpdate)).Patch("/users/{id}/deactivate", h.Deactivate)
		r.With(can(gate.ActionDelete)).Delete("/users/{id}", h.DeleteUser)
	})
}

// recoverJSON turns a panic into a logged opaque 500.
func recoverJSON(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error().Interface("panic", rec).
						Str(logger.FieldRequestID, middleware.GetReqID(r.Context())).
						Str(logger.FieldPath, r.URL.Path).
						Msg("handler panicked")
					httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
