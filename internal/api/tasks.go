package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/taskyar/internal/auth"
	"github.com/ashureev/taskyar/internal/tools"
)

type createTaskRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Priority        string   `json:"priority"`
	DueDate         string   `json:"due_date"`
	Tags            []string `json:"tags"`
	RecurrenceRule  string   `json:"recurrence_rule"`
	ReminderMinutes *int     `json:"reminder_minutes"`
}

type updateTaskRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Priority        *string  `json:"priority"`
	DueDate         *string  `json:"due_date"`
	Completed       *bool    `json:"completed"`
	Tags            []string `json:"tags"`
	RecurrenceRule  *string  `json:"recurrence_rule"`
	ReminderMinutes *int     `json:"reminder_minutes"`
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp := h.gateway.Call(r.Context(), tools.AddTaskParams{
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		DueDate:         req.DueDate,
		Tags:            req.Tags,
		RecurrenceRule:  req.RecurrenceRule,
		ReminderMinutes: req.ReminderMinutes,
	}, userID)
	writeToolResponse(w, resp, http.StatusCreated)
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	params := tools.ListTasksParams{Priority: r.URL.Query().Get("priority")}
	if v := r.URL.Query().Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			Error(w, http.StatusBadRequest, "completed must be true or false")
			return
		}
		params.Completed = &completed
	}

	resp := h.gateway.Call(r.Context(), params, userID)
	writeToolResponse(w, resp, http.StatusOK)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	taskID, ok := taskIDFromURL(w, r)
	if !ok {
		return
	}

	task, err := h.repo.GetTask(r.Context(), taskID, userID)
	if err != nil {
		h.logger.Error("get task failed", "error", err, "task_id", taskID)
		Error(w, http.StatusInternalServerError, "failed to load task")
		return
	}
	if task == nil {
		Error(w, http.StatusNotFound, "task not found")
		return
	}
	JSON(w, http.StatusOK, tools.FromTask(task))
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	taskID, ok := taskIDFromURL(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp := h.gateway.Call(r.Context(), tools.UpdateTaskParams{
		TaskID:          taskID,
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		DueDate:         req.DueDate,
		Completed:       req.Completed,
		Tags:            req.Tags,
		RecurrenceRule:  req.RecurrenceRule,
		ReminderMinutes: req.ReminderMinutes,
	}, userID)
	writeToolResponse(w, resp, http.StatusOK)
}

func (h *Handler) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	taskID, ok := taskIDFromURL(w, r)
	if !ok {
		return
	}

	resp := h.gateway.Call(r.Context(), tools.CompleteTaskParams{TaskID: taskID}, userID)
	writeToolResponse(w, resp, http.StatusOK)
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	taskID, ok := taskIDFromURL(w, r)
	if !ok {
		return
	}

	resp := h.gateway.Call(r.Context(), tools.DeleteTaskParams{TaskID: taskID}, userID)
	writeToolResponse(w, resp, http.StatusOK)
}

// taskIDFromURL parses the {taskID} route parameter, writing a 400 on failure.
func taskIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil || id <= 0 {
		Error(w, http.StatusBadRequest, "task id must be a positive integer")
		return 0, false
	}
	return id, true
}
