package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upstart/api/internal/core/ports"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Auth        ports.AuthService
	Users       ports.UserService
	Polls       ports.PollService
	PollAnswers ports.PollAnswerService
	Votes       ports.PollResponseService
	Loans       ports.LoanService
}

type Options struct {
	AllowedOrigins []string
	CSRFKey        []byte
	VoteRateLimit  float64
	VoteRateBurst  int
	Health         Pinger
}

func NewHandler(svc Services, opts Options) http.Handler {
	authHandler := NewAuthHandler(svc.Auth, svc.Users)
	userHandler := NewUserHandler(svc.Users)
	pollHandler := NewPollHandler(svc.Polls)
	answerHandler := NewPollAnswerHandler(svc.PollAnswers)
	voteHandler := NewVoteHandler(svc.Votes)
	loanHandler := NewLoanHandler(svc.Loans)

	limiter := NewIPRateLimiter(opts.VoteRateLimit, opts.VoteRateBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", healthz(opts.Health))

	r.Route("/api", func(r chi.Router) {
		r.Use(Identify(svc.Auth))
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.With(limiter.Middleware).Post("/register", authHandler.Register)
			r.With(limiter.Middleware).Post("/login", authHandler.Login)
			r.With(limiter.Middleware).Post("/google", authHandler.GoogleLogin)
			r.With(RequireAuth).Get("/me", authHandler.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateUser)
			r.With(RequireAuth).Put("/me", userHandler.UpdateMe)
			r.With(RequireAuth).Get("/{id}", userHandler.GetUser)
		})

		r.Route("/polls", func(r chi.Router) {
			r.Post("/", pollHandler.CreatePoll)
			r.Get("/active", pollHandler.ListActive)
			r.Get("/public", pollHandler.ListPublic)
			r.Get("/user", pollHandler.ListOwned)
			r.Get("/guid/{guid}", pollHandler.GetPollByGUID)
			r.Get("/{id}", pollHandler.GetPoll)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth)
				r.Put("/{id}", pollHandler.UpdatePoll)
				r.Put("/{id}/answers", pollHandler.ReplaceAnswers)
				r.Delete("/{id}", pollHandler.DeletePoll)
			})
		})

		r.Route("/poll-answers", func(r chi.Router) {
			r.Get("/poll/{pollId}", answerHandler.ListByPoll)
			r.With(RequireAuth).Post("/", answerHandler.CreateAnswer)
			r.With(RequireAuth).Delete("/{id}", answerHandler.DeleteAnswer)
		})

		r.Route("/poll-stats", func(r chi.Router) {
			r.With(limiter.Middleware, RequireAuth).Post("/", voteHandler.Vote)
			r.With(limiter.Middleware).Post("/anonymous", voteHandler.VoteAnonymous)
			r.Put("/{id}", voteHandler.ChangeVote)
			r.Get("/poll/{id}/mine", voteHandler.MyVote)
			r.Get("/poll/{id}/results", voteHandler.Results)
		})

		r.Route("/loans", func(r chi.Router) {
			r.Use(RequireAuth)
			r.Post("/", loanHandler.CreateLoan)
			r.Get("/", loanHandler.ListLoans)
		})

		r.With(csrfProtection(opts.CSRFKey)).Get("/csrf/token", CSRFToken)
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
