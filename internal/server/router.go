package server

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dronemind-ai/dronemind/internal/api"
	"github.com/dronemind-ai/dronemind/internal/api/handlers"
	"github.com/dronemind-ai/dronemind/internal/api/middleware"
	"github.com/dronemind-ai/dronemind/web"
)

type RouterConfig struct {
	ChatHandler   *handlers.ChatHandler
	ModelsHandler *handlers.ModelsHandler
	ServeUI       bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", cfg.ChatHandler.Chat)
		r.Get("/models", cfg.ModelsHandler.List)
	})

	if cfg.ServeUI {
		fileSystem, err := web.GetFileSystem()
		if err != nil {
			log.Printf("static UI unavailable: %v", err)
		} else {
			r.Handle("/*", http.FileServer(fileSystem))
		}
	}

	return r
}
