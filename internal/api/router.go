package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/astronautdiary/internal/api/handlers"
	"github.com/nikhilbhutani/astronautdiary/internal/api/middleware"
)

// Router wires the HTTP surface onto the services built at startup.
type Router struct {
	mux    *chi.Mux
	diary  handlers.DiaryGenerator
	speech handlers.Speaker
}

func NewRouter(diary handlers.DiaryGenerator, speech handlers.Speaker) *Router {
	return &Router{
		mux:    chi.NewRouter(),
		diary:  diary,
		speech: speech,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	health := handlers.NewHealthHandler()
	r.Get("/healthz", health.Healthz)
	r.Get("/keep-alive", health.KeepAlive)

	r.Route("/api", func(r chi.Router) {
		diaryH := handlers.NewDiaryHandler(rt.diary)
		r.Post("/diary", diaryH.Create)
		r.Get("/diary", diaryH.Today)

		speechH := handlers.NewSpeechHandler(rt.speech)
		r.Get("/speech", speechH.Speak)
		r.Post("/speech-and-transcribe", speechH.SpeakAndTranscribe)
	})

	return r
}
