// Package rest wires the HTTP surface the canvas frontend talks to.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"researchflow-backend/application/services"
	"researchflow-backend/infrastructure/config"
	"researchflow-backend/interfaces/http/rest/handlers"
	"researchflow-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	editor *services.Editor
	cfg    *config.Config
	logger *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(editor *services.Editor, cfg *config.Config, logger *zap.Logger) *Router {
	return &Router{editor: editor, cfg: cfg, logger: logger}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		origins := rt.cfg.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	if rt.cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		nodeHandler := handlers.NewNodeHandler(rt.editor, rt.logger)
		groupHandler := handlers.NewGroupHandler(rt.editor, rt.logger)
		edgeHandler := handlers.NewEdgeHandler(rt.editor, rt.logger)
		projectHandler := handlers.NewProjectHandler(rt.editor, rt.logger)
		historyHandler := handlers.NewHistoryHandler(rt.editor, rt.logger)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.CreateNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)
			r.Put("/{nodeID}/position", nodeHandler.MoveNode)
			r.Put("/{nodeID}/metadata", nodeHandler.EditMetadata)
			r.Put("/{nodeID}/group", groupHandler.ReparentNode)
			r.Post("/{nodeID}/tags/{tag}", nodeHandler.ToggleTag)
			r.Post("/{nodeID}/flag", nodeHandler.ToggleFlag)
			r.Post("/{nodeID}/lock", nodeHandler.ToggleLock)

			r.Post("/{nodeID}/snippets", nodeHandler.AddSnippet)
			r.Delete("/{nodeID}/snippets/{snippetID}", nodeHandler.DeleteSnippet)
			r.Put("/{nodeID}/snippets/{snippetID}", nodeHandler.EditSnippet)
			r.Put("/{nodeID}/snippets/{snippetID}/order", nodeHandler.MoveSnippet)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", edgeHandler.CreateEdge)
			r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", groupHandler.CreateGroup)
			r.Delete("/{groupID}", groupHandler.DeleteGroup)
			r.Put("/{groupID}/position", groupHandler.MoveGroup)
			r.Put("/{groupID}/rect", groupHandler.ResizeGroup)
			r.Put("/{groupID}/name", groupHandler.RenameGroup)
			r.Post("/{groupID}/lock", groupHandler.ToggleLock)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Post("/", projectHandler.CreateTag)
			r.Put("/order", projectHandler.MoveTag)
			r.Delete("/{name}", projectHandler.DeleteTag)
			r.Put("/{name}", projectHandler.UpdateTag)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Post("/", projectHandler.CreateTodo)
			r.Put("/order", projectHandler.MoveTodo)
			r.Delete("/{index}", projectHandler.DeleteTodo)
			r.Put("/{index}", projectHandler.UpdateTodo)
			r.Post("/{index}/toggle", projectHandler.ToggleTodo)
		})

		r.Route("/project", func(r chi.Router) {
			r.Get("/", projectHandler.GetProject)
			r.Post("/open", projectHandler.OpenProject)
			r.Post("/save", projectHandler.SaveProject)
			r.Put("/description", projectHandler.SetDescription)
			r.Put("/edge-colors", projectHandler.SetEdgeColors)
			r.Put("/module-colors/{moduleType}", projectHandler.SetModuleColor)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.GetStatus)
			r.Delete("/", historyHandler.Clear)
			r.Post("/undo", historyHandler.Undo)
			r.Post("/redo", historyHandler.Redo)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
