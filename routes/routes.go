package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/pollafutbolera/polla-engine/handlers"
	"github.com/pollafutbolera/polla-engine/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Prediction *handlers.PredictionHandler
	Phase      *handlers.PhaseHandler
	Standings  *handlers.StandingsHandler
	Scoring    *handlers.ScoringHandler
	Result     *handlers.ResultHandler
	Bonus      *handlers.BonusHandler
	Bracket    *handlers.BracketHandler
	League     *handlers.LeagueHandler
	Team       *handlers.TeamHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, auth *middleware.Authenticator) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	// Public
	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)
	router.Get("/teams/{teamID}", h.Team.Get)
	router.Get("/tournaments/{tournamentID}/phases/{phase}", h.Phase.Status)
	router.Get("/tournaments/{tournamentID}/groups/{group}/standings", h.Standings.Get)
	router.Get("/tournaments/{tournamentID}/leaderboard", h.Scoring.Leaderboard)
	router.Get("/tournaments/{tournamentID}/bonus-questions", h.Bonus.List)
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.Serve)

	// Authenticated
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Put("/predictions", h.Prediction.Upsert)
		r.Put("/predictions/batch", h.Prediction.UpsertBatch)
		r.Delete("/predictions/{matchID}", h.Prediction.Delete)
		r.Get("/tournaments/{tournamentID}/predictions", h.Prediction.List)
		r.Get("/tournaments/{tournamentID}/me/totals", h.Scoring.MyTotals)

		r.Get("/tournaments/{tournamentID}/bracket", h.Bracket.Get)
		r.Put("/tournaments/{tournamentID}/bracket", h.Bracket.SavePicks)

		r.Put("/bonus-questions/{questionID}/answer", h.Bonus.Answer)

		r.Post("/leagues", h.League.Create)
		r.Post("/leagues/join", h.League.Join)
		r.Get("/leagues/{leagueID}/members", h.League.Members)
	})

	// Operators
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireAdmin)

		r.Put("/admin/matches/{matchID}/result", h.Result.Apply)
		r.Post("/admin/tournaments/{tournamentID}/phases/{phase}/recompute", h.Phase.Recompute)
		r.Put("/admin/tournaments/{tournamentID}/phases/{phase}/lock", h.Phase.SetManualLock)
		r.Put("/admin/tournaments/{tournamentID}/groups/{group}/override", h.Standings.ApplyOverride)
		r.Delete("/admin/tournaments/{tournamentID}/groups/{group}/override", h.Standings.ClearOverride)
		r.Post("/admin/tournaments/{tournamentID}/brackets/replay", h.Scoring.ReplayBrackets)
		r.Post("/admin/tournaments/{tournamentID}/bonus-questions", h.Bonus.Create)
		r.Post("/admin/bonus-questions/{questionID}/resolve", h.Bonus.Resolve)
		r.Post("/admin/teams/{teamID}/flag", h.Team.UploadFlag)
	})
}
