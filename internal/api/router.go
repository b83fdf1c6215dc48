package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/smartsplit/expense-splitter/internal/api/handlers"
	"github.com/smartsplit/expense-splitter/internal/auth"
	"github.com/smartsplit/expense-splitter/internal/config"
	"github.com/smartsplit/expense-splitter/internal/metrics"
	"github.com/smartsplit/expense-splitter/internal/middleware"
	"github.com/smartsplit/expense-splitter/internal/services"
)

type RouterDeps struct {
	Cfg         config.Config
	TM          *auth.TokenManager
	Users       *services.UserService
	Groups      *services.GroupService
	Expenses    *services.ExpenseService
	Settlements *services.SettlementService
	Balances    *services.BalanceService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	ah := handlers.NewAuthHandler(d.TM, d.Users)
	uh := handlers.NewUserHandler(d.Users)
	gh := handlers.NewGroupHandler(d.Groups)
	eh := handlers.NewExpenseHandler(d.Expenses, d.Groups)
	sh := handlers.NewSettlementHandler(d.Settlements, d.Groups)
	bh := handlers.NewBalanceHandler(d.Balances, d.Groups)

	authn := middleware.NewAuthMiddleware(d.TM)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
		r.Post("/auth/refresh", ah.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authn.Auth)

			r.Get("/users/me", uh.Me)

			r.Post("/groups", gh.Create)
			r.Get("/groups", gh.List)
			r.Get("/groups/{id}", gh.Get)
			r.Put("/groups/{id}", gh.Rename)
			r.Post("/groups/{id}/join", gh.Join)

			r.Get("/groups/{id}/expenses", eh.ListByGroup)
			r.Get("/groups/{id}/balances", bh.ListForGroup)
			r.Post("/groups/{id}/optimize", bh.Optimize)

			r.Post("/expenses", eh.Create)
			r.Get("/expenses", eh.ListMine)
			r.Get("/expenses/{id}", eh.Get)
			r.Put("/expenses/{id}", eh.Update)
			r.Delete("/expenses/{id}", eh.Delete)

			r.Post("/settlements", sh.Create)
			r.Get("/settlements", sh.ListMine)
			r.Delete("/settlements/{id}", sh.Undo)

			r.Get("/balances", bh.ListMine)
		})
	})

	return r
}
