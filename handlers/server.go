package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"mytodolist/templates"
)

// NewRouter builds the gin engine serving the task pages.
func NewRouter(store TaskStore, logger *slog.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := templates.Load(FuncMap())
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.SetHTMLTemplate(tmpl)
	r.Use(RequestLogger(logger), Recovery())

	h := NewTaskHandler(store, logger)
	h.RegisterRoutes(r)
	r.GET("/healthz", h.Health)
	r.NoRoute(h.NotFound)
	r.NoMethod(h.MethodNotAllowed)

	return r, nil
}
