package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-backoffice/meridian/internal/finance"
	"github.com/meridian-backoffice/meridian/internal/inventory"
	"github.com/meridian-backoffice/meridian/internal/ledger"
	"github.com/meridian-backoffice/meridian/internal/masterdata/accounts"
	"github.com/meridian-backoffice/meridian/internal/observability"
	"github.com/meridian-backoffice/meridian/internal/procurement"
	"github.com/meridian-backoffice/meridian/internal/sales"
	"github.com/meridian-backoffice/meridian/jobs"
	"github.com/meridian-backoffice/meridian/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	InventoryHandler   *inventory.Handler
	AccountsHandler    *accounts.Handler
	ProcurementHandler *procurement.Handler
	SalesHandler       *sales.Handler
	FinanceHandler     *finance.Handler
	LedgerHandler      *ledger.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
	Pool               *pgxpool.Pool
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if params.InventoryHandler != nil {
			api.Group(params.InventoryHandler.MountRoutes)
		}
		if params.AccountsHandler != nil {
			api.Group(params.AccountsHandler.MountRoutes)
		}
		if params.ProcurementHandler != nil {
			api.Group(params.ProcurementHandler.MountRoutes)
		}
		if params.SalesHandler != nil {
			api.Group(params.SalesHandler.MountRoutes)
		}
		if params.FinanceHandler != nil {
			api.Group(params.FinanceHandler.MountRoutes)
		}
		if params.LedgerHandler != nil {
			api.Group(params.LedgerHandler.MountRoutes)
		}
		if params.ReportHandler != nil {
			api.Route("/reports", params.ReportHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
