// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// brocante API. It organizes routes into public, authenticated and
// admin groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"brocante/internal/handlers"
	"brocante/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(jwtSecret, frontendURL string, auth *handlers.Auth, taxonomy *handlers.Taxonomy, fields *handlers.Fields, ads *handlers.Ads, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Authenticate(jwtSecret))

	// Health check, no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints get a tighter rate limit against brute force.
		authLimiter := middleware.NewRateLimiter(20, time.Minute)
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
			r.With(middleware.RequireAuth).Get("/validate", auth.Validate)
		})

		// Public catalog.
		r.Get("/categories", taxonomy.List)
		r.Get("/categories/{id}/fields", fields.List)
		r.Get("/ads", ads.List)
		r.Get("/ads/{id}", ads.Detail)

		// Authenticated user surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/ads", ads.Submit)
			r.Get("/my-ads", ads.MyAds)
			r.Post("/ads/{id}/sold", ads.MarkSold)
			r.Delete("/ads/{id}", ads.Delete)
			r.Put("/ads/{id}/images/order", ads.ReorderImages)
		})

		// Admin area.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", taxonomy.Create)
				r.Put("/order", taxonomy.Reorder)
				r.Put("/{id}", taxonomy.Update)
				r.Delete("/{id}", taxonomy.Delete)

				r.Post("/{id}/subcategories", taxonomy.CreateSubcategory)
				r.Put("/{id}/subcategories/order", taxonomy.ReorderSubcategories)
				r.Delete("/{id}/subcategories/{subID}", taxonomy.DeleteSubcategory)

				r.Post("/{id}/fields", fields.Add)
				r.Put("/{id}/fields/order", fields.Reorder)
				r.Put("/{id}/fields/{fieldID}", fields.Update)
				r.Delete("/{id}/fields/{fieldID}", fields.Delete)
			})

			r.Get("/ads", admin.Ads)
			r.Post("/ads/{id}/approve", admin.Approve)
			r.Post("/ads/{id}/reject", admin.Reject)

			r.Get("/stats", admin.Stats)
			r.Get("/users", admin.Users)

			r.Get("/settings", admin.Settings)
			r.Put("/settings", admin.SaveSettings)
			r.Get("/settings/email", admin.EmailSettings)
			r.Put("/settings/email", admin.SaveEmailSettings)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
