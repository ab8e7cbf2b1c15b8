package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/auktia/backend/api/handler"
)

type Handlers struct {
	Auth       *apiHandler.AuthHandler
	Content    *apiHandler.ContentHandler
	Events     *apiHandler.EventHandler
	Analytics  *apiHandler.AnalyticsHandler
	Ratings    *apiHandler.RatingHandler
	Live       *apiHandler.LiveHandler
	Contact    *apiHandler.ContactHandler
	Newsletter *apiHandler.NewsletterHandler
	Health     *apiHandler.HealthHandler
}

func New(handlers Handlers, adminOnly func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Public surface
	r.GET("/api/content", handlers.Content.Get)
	r.POST("/api/events", handlers.Events.Record)
	r.GET("/api/events/stream", handlers.Events.Stream)
	r.GET("/api/ratings", handlers.Ratings.Get)
	r.POST("/api/ratings", handlers.Ratings.Submit)
	r.GET("/api/contact", handlers.Contact.Ping)
	r.POST("/api/contact", handlers.Contact.Submit)
	r.POST("/api/newsletter", handlers.Newsletter.Subscribe)
	r.GET("/api/live", handlers.Live.List)
	r.GET("/api/live/{id}", handlers.Live.Get)
	r.POST("/api/live/{id}/feedback", handlers.Live.Feedback)

	// Admin surface
	r.POST("/api/admin/login", handlers.Auth.Login)
	r.PUT("/api/content", adminOnly(handlers.Content.Save))
	r.POST("/api/content/reset", adminOnly(handlers.Content.Reset))
	r.GET("/api/analytics/summary", adminOnly(handlers.Analytics.Summary))
	r.GET("/api/analytics/series", adminOnly(handlers.Analytics.Series))
	r.GET("/api/analytics/top", adminOnly(handlers.Analytics.Top))
	r.GET("/api/analytics/export", adminOnly(handlers.Analytics.Export))
	r.GET("/api/admin/newsletter", adminOnly(handlers.Newsletter.List))
	r.POST("/api/live", adminOnly(handlers.Live.Create))
	r.DELETE("/api/live/{id}", adminOnly(handlers.Live.Delete))
	r.POST("/api/live/{id}/start", adminOnly(handlers.Live.Start))
	r.POST("/api/live/{id}/stop", adminOnly(handlers.Live.Stop))
	r.POST("/api/live/{id}/reveal", adminOnly(handlers.Live.Reveal))
	r.POST("/api/live/{id}/sold", adminOnly(handlers.Live.Sold))

	return r
}
