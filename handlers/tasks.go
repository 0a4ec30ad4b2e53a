// Package handlers serves the task pages over HTTP.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mytodolist/forms"
	"mytodolist/logging"
	"mytodolist/models"
	"mytodolist/utils"
)

// Template names rendered by the handlers.
const (
	TemplateTaskList   = "tasks/task_list.html"
	TemplateTaskDetail = "tasks/task_detail.html"
	TemplateTaskForm   = "tasks/task_form.html"
	TemplateError      = "errors/error.html"
)

// TaskStore is the persistence the handlers need.
type TaskStore interface {
	GetAllTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int) (*models.Task, error)
	AddTask(ctx context.Context, description string) (*models.Task, error)
	UpdateTask(ctx context.Context, id int, description string) error
	CompleteTask(ctx context.Context, id int) error
	DeleteTask(ctx context.Context, id int) error
	Ping(ctx context.Context) error
}

// TaskHandler handles the task pages.
type TaskHandler struct {
	store  TaskStore
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler. A nil logger means slog.Default().
func NewTaskHandler(store TaskStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes binds every named route to its handler.
func (h *TaskHandler) RegisterRoutes(r gin.IRoutes) {
	byName := map[string]gin.HandlerFunc{
		RouteTaskList:     h.List,
		RouteTaskDetail:   h.Detail,
		RouteTaskAdd:      h.Add,
		RouteTaskEdit:     h.Edit,
		RouteTaskDelete:   h.Delete,
		RouteTaskComplete: h.Complete,
	}
	for _, route := range Routes {
		for _, method := range route.Methods {
			r.Handle(method, route.Path, byName[route.Name])
		}
	}
}

func (h *TaskHandler) log(c *gin.Context) *slog.Logger {
	return logging.FromContextOrDefault(c.Request.Context(), h.logger).
		With(slog.String("component", "task_handler"))
}

// GET / - List all tasks
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.store.GetAllTasks(c.Request.Context())
	if err != nil {
		h.log(c).Error("failed to fetch tasks", "error", err)
		renderError(c, http.StatusInternalServerError)
		return
	}

	render(c, http.StatusOK, TemplateTaskList, gin.H{
		"title": "Tasks",
		"tasks": tasks,
	})
}

// GET /tasks/:pk/ - Show a single task
func (h *TaskHandler) Detail(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}

	render(c, http.StatusOK, TemplateTaskDetail, gin.H{
		"title": task.Description,
		"task":  task,
	})
}

// GET, POST /tasks/add/ - Show the creation form or create a task
func (h *TaskHandler) Add(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		renderForm(c, http.StatusOK, forms.NewTaskForm(nil))
		return
	}

	form, ok := h.bindForm(c, nil)
	if !ok {
		return
	}

	task, err := h.store.AddTask(c.Request.Context(), form.Description)
	if err != nil {
		h.log(c).Error("failed to add task", "error", err)
		renderError(c, http.StatusInternalServerError)
		return
	}

	h.log(c).Info("task added", "id", task.ID)
	setFlash(c, "Task added successfully.")
	c.Redirect(http.StatusFound, MustURL(RouteTaskList))
}

// GET, POST /tasks/:pk/edit/ - Show the edit form or update a task
func (h *TaskHandler) Edit(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		renderForm(c, http.StatusOK, forms.NewTaskForm(task))
		return
	}

	form, ok := h.bindForm(c, task)
	if !ok {
		return
	}

	if err := h.store.UpdateTask(c.Request.Context(), task.ID, form.Description); err != nil {
		h.storeError(c, err, "failed to update task")
		return
	}

	h.log(c).Info("task updated", "id", task.ID)
	setFlash(c, "Task updated successfully.")
	c.Redirect(http.StatusFound, MustURL(RouteTaskDetail, task.ID))
}

// POST /tasks/:pk/delete/ - Delete a task
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		renderError(c, http.StatusNotFound)
		return
	}

	if err := h.store.DeleteTask(c.Request.Context(), id); err != nil {
		h.storeError(c, err, "failed to delete task")
		return
	}

	h.log(c).Info("task deleted", "id", id)
	setFlash(c, "Task deleted successfully.")
	c.Redirect(http.StatusFound, MustURL(RouteTaskList))
}

// POST /tasks/:pk/complete/ - Mark a task as completed
func (h *TaskHandler) Complete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		renderError(c, http.StatusNotFound)
		return
	}

	if err := h.store.CompleteTask(c.Request.Context(), id); err != nil {
		h.storeError(c, err, "failed to complete task")
		return
	}

	h.log(c).Info("task completed", "id", id)
	setFlash(c, "Task marked as completed.")
	c.Redirect(http.StatusFound, MustURL(RouteTaskList))
}

// GET /healthz - Check that the database is reachable
func (h *TaskHandler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log(c).Error("health check failed", "error", err)
		c.String(http.StatusServiceUnavailable, "unavailable")
		return
	}
	c.String(http.StatusOK, "ok")
}

// NotFound renders the 404 page for unknown paths.
func (h *TaskHandler) NotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound)
}

// MethodNotAllowed renders the 405 page for known paths hit with the wrong method.
func (h *TaskHandler) MethodNotAllowed(c *gin.Context) {
	renderError(c, http.StatusMethodNotAllowed)
}

// loadTask resolves the :pk parameter to a stored task, writing a 404 or 500
// response when it cannot.
func (h *TaskHandler) loadTask(c *gin.Context) (*models.Task, bool) {
	id, ok := taskID(c)
	if !ok {
		renderError(c, http.StatusNotFound)
		return nil, false
	}

	task, err := h.store.GetTask(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "failed to get task")
		return nil, false
	}
	return task, true
}

// bindForm reads and validates the submitted task form. An invalid form is
// re-rendered with its errors and ok is false.
func (h *TaskHandler) bindForm(c *gin.Context, instance *models.Task) (*forms.TaskForm, bool) {
	form, err := forms.BindTaskForm(c, instance)
	if err != nil {
		h.log(c).Warn("failed to bind task form", "error", err)
		renderError(c, http.StatusBadRequest)
		return nil, false
	}

	if !form.Validate() {
		h.log(c).Debug("task form rejected", "error", form.Err())
		renderForm(c, http.StatusOK, form)
		return nil, false
	}
	return form, true
}

func (h *TaskHandler) storeError(c *gin.Context, err error, msg string) {
	if errors.Is(err, utils.ErrTaskNotFound) {
		h.log(c).Debug(msg, "error", err)
		renderError(c, http.StatusNotFound)
		return
	}
	h.log(c).Error(msg, "error", err)
	renderError(c, http.StatusInternalServerError)
}

func taskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("pk"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
