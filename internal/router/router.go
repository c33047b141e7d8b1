package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ulemsee/internal/handlers"
	"ulemsee/internal/middleware"
	"ulemsee/internal/websocket"
)

func New(
	questionHandler *handlers.QuestionHandler,
	historyHandler *handlers.HistoryHandler,
	statusHandler *handlers.StatusHandler,
	wsHub *websocket.Hub,
	requests *middleware.RequestCounter,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))
	r.Use(requests.Middleware)

	r.Get("/", statusHandler.Root)
	r.Get("/health", statusHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/question", questionHandler.Ask)

		// ──── History Routes ────
		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Delete("/", historyHandler.Clear)
			r.Delete("/{id}", historyHandler.Delete)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
