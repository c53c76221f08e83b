package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/pokernow/docs"
	"github.com/Dosada05/pokernow/handlers"
	"github.com/Dosada05/pokernow/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Seating    *handlers.SeatingHandler
	Table      *handlers.TableHandler
	Dashboard  *handlers.DashboardHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, h Handlers, tokens middleware.TokenParser, corsOrigins []string) {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(tokens)

	router.Get("/health", h.Health.Health)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Websocket connections are long-lived and must not inherit request timeouts.
	router.Route("/ws", func(r chi.Router) {
		r.Get("/tournaments/{tournamentID}", h.WebSocket.ServeTournament)
		r.Get("/shops/{shopID}", h.WebSocket.ServeShop)
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(15 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.With(authenticate).Get("/me", h.Auth.Me)
		})

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", h.Dashboard.Shops)

			r.Route("/{shopID}", func(r chi.Router) {
				r.Get("/", h.Dashboard.Shop)
				r.Get("/dashboard", h.Dashboard.Dashboard)

				r.Route("/tables", func(r chi.Router) {
					r.Get("/", h.Table.List)
					r.Get("/{tableID}/seatings", h.Seating.TableSeatings)

					r.Group(func(r chi.Router) {
						r.Use(authenticate)
						r.Use(middleware.RequireAdmin)
						r.Post("/", h.Table.Create)
						r.Put("/{tableID}", h.Table.Update)
						r.Delete("/{tableID}/seatings", h.Seating.Evacuate)
					})
				})

				r.Route("/tournaments", func(r chi.Router) {
					r.Get("/", h.Tournament.List)
					r.Get("/{tournamentID}", h.Tournament.Get)

					r.Group(func(r chi.Router) {
						r.Use(authenticate)
						r.Use(middleware.RequireAdmin)
						r.Post("/", h.Tournament.Create)
						r.Put("/{tournamentID}", h.Tournament.Update)
						r.Post("/{tournamentID}/control", h.Tournament.Control)
					})
				})
			})
		})

		r.Route("/seatings", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/my", h.Seating.Mine)
			r.Post("/", h.Seating.CheckIn)
			r.Delete("/{seatingID}", h.Seating.CheckOut)
			r.With(middleware.RequireAdmin).Delete("/{seatingID}/admin", h.Seating.ForceCheckOut)
		})
	})
}
