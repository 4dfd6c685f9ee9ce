package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bborn/jobdone/internal/hooks"
	"github.com/bborn/jobdone/internal/task"
)

// TaskDetail is the single-task response: the listing fields plus the
// numeric ID and the full front matter.
type TaskDetail struct {
	*task.Task
	ID          int               `json:"id"`
	FrontMatter map[string]string `json:"frontMatter"`
}

// handleListTasks handles GET /api/tasks
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	grouped, err := s.repo.ReadAll(s.cfg.Statuses)
	if err != nil {
		s.logger.Error("list tasks failed", "error", err)
		jsonError(w, "Failed to list tasks", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, grouped, http.StatusOK)
}

// CreateTaskRequest represents a request to create a task.
type CreateTaskRequest struct {
	Title    string `json:"title"`
	Priority string `json:"priority,omitempty"`
}

// handleCreateTask handles POST /api/tasks
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := parseJSON(r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		jsonError(w, "Title is required", http.StatusBadRequest)
		return
	}
	if req.Priority != "" && !s.cfg.ValidPriority(req.Priority) {
		jsonError(w, s.invalidPriorityMessage(), http.StatusBadRequest)
		return
	}

	result, err := s.repo.Create(title, req.Priority, s.cfg)
	if err != nil {
		if errors.Is(err, task.ErrEmptySlug) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("create task failed", "error", err)
		jsonError(w, "Failed to create task", http.StatusInternalServerError)
		return
	}

	s.hooks.Run(hooks.EventTaskCreated, result.Filename, s.cfg.Statuses[0])

	jsonResponse(w, map[string]interface{}{
		"ok":       true,
		"filename": result.Filename,
	}, http.StatusOK)
}

// handleGetTask handles GET /api/tasks/{id}
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		jsonError(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	t, err := s.repo.FindByID(s.cfg.Statuses, id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			jsonError(w, "Task not found", http.StatusNotFound)
			return
		}
		s.logger.Error("get task failed", "error", err)
		jsonError(w, "Failed to get task", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, TaskDetail{
		Task:        t,
		ID:          t.ID,
		FrontMatter: t.FrontMatter.StringMap(),
	}, http.StatusOK)
}

// UpdateTaskRequest represents a request to update a task.
type UpdateTaskRequest struct {
	FrontMatter map[string]interface{} `json:"frontMatter,omitempty"`
	Body        *string                `json:"body,omitempty"`
}

// handleUpdateTask handles PUT /api/tasks/{id}
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r)
	if err != nil {
		jsonError(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	var req UpdateTaskRequest
	if err := parseJSON(r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.FrontMatter) == 0 && req.Body == nil {
		jsonError(w, "No update fields supplied", http.StatusBadRequest)
		return
	}

	if p, ok := req.FrontMatter["priority"]; ok {
		priority, _ := p.(string)
		if !s.cfg.ValidPriority(priority) {
			jsonError(w, s.invalidPriorityMessage(), http.StatusBadRequest)
			return
		}
	}
	if t, ok := req.FrontMatter["title"]; ok {
		title, _ := t.(string)
		if strings.TrimSpace(title) == "" {
			jsonError(w, "Title cannot be empty", http.StatusBadRequest)
			return
		}
	}

	result, err := s.repo.ApplyUpdate(s.cfg.Statuses, id, task.Update{
		FrontMatter: req.FrontMatter,
		Body:        req.Body,
	})
	if err != nil {
		switch {
		case errors.Is(err, task.ErrNotFound):
			jsonError(w, "Task not found", http.StatusNotFound)
		case errors.Is(err, task.ErrEmptySlug):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, task.ErrExists):
			jsonError(w, err.Error(), http.StatusConflict)
		default:
			s.logger.Error("update task failed", "id", id, "error", err)
			jsonError(w, "Failed to update task", http.StatusInternalServerError)
		}
		return
	}

	s.hooks.Run(hooks.EventTaskUpdated, result.Filename, result.Status)

	jsonResponse(w, map[string]interface{}{
		"ok":       true,
		"filename": result.Filename,
		"status":   result.Status,
	}, http.StatusOK)
}

// MoveTaskRequest represents a request to move a task between statuses.
type MoveTaskRequest struct {
	Filename string `json:"filename"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// handleMoveTask handles POST /api/tasks/move
func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	var req MoveTaskRequest
	if err := parseJSON(r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Filename == "" || req.From == "" || req.To == "" {
		jsonError(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if !s.cfg.ValidStatus(req.From) || !s.cfg.ValidStatus(req.To) {
		jsonError(w, "Invalid status", http.StatusBadRequest)
		return
	}
	if req.From == req.To {
		jsonError(w, "Source and target status must differ", http.StatusBadRequest)
		return
	}

	if err := s.repo.Move(req.Filename, req.From, req.To); err != nil {
		s.logger.Error("move task failed", "filename", req.Filename, "error", err)
		jsonError(w, "Failed to move task", http.StatusInternalServerError)
		return
	}

	s.hooks.Run(hooks.EventTaskMoved, req.Filename, req.To)

	jsonResponse(w, map[string]interface{}{"ok": true}, http.StatusOK)
}

func (s *Server) invalidPriorityMessage() string {
	return fmt.Sprintf("Invalid priority. Must be one of: %s", strings.Join(s.cfg.Priorities, ", "))
}
