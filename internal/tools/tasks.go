package tools

import (
	"context"
	"strings"
	"time"

	"github.com/ashureev/taskyar/internal/domain"
	"github.com/ashureev/taskyar/internal/events"
)

func (g *Gateway) addTask(ctx context.Context, p AddTaskParams, userID int64) Response {
	now := time.Now()
	task := &domain.Task{
		UserID:          userID,
		Title:           strings.TrimSpace(p.Title),
		Description:     p.Description,
		Priority:        domain.PriorityMedium,
		Tags:            p.Tags,
		RecurrenceRule:  p.RecurrenceRule,
		ReminderMinutes: p.ReminderMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if p.Priority != "" {
		task.Priority = domain.Priority(p.Priority)
	}
	if p.DueDate != "" {
		due, err := time.Parse("2006-01-02", p.DueDate)
		if err != nil {
			return Fail(CodeInvalidDate, "Due date must be in YYYY-MM-DD format",
				map[string]interface{}{"field": "due_date"})
		}
		task.DueDate = &due
	}

	if err := g.repo.CreateTask(ctx, task); err != nil {
		g.logger.Error("add_task store error", "error", err)
		return Fail(CodeProcessing, "Failed to create task",
			map[string]interface{}{"error": err.Error()})
	}

	data := FromTask(task)
	// Emitted only after the store commit succeeded.
	g.sink.Emit(events.TaskCreated, userID, task.ID, map[string]interface{}{
		"title":    task.Title,
		"priority": string(task.Priority),
		"due_date": data.DueDate,
	})

	g.logger.Info("add_task success", "task_id", task.ID)
	return Ok(data)
}

func (g *Gateway) listTasks(ctx context.Context, p ListTasksParams, userID int64) Response {
	tasks, err := g.repo.ListTasks(ctx, userID)
	if err != nil {
		g.logger.Error("list_tasks store error", "error", err)
		return Fail(CodeProcessing, "Failed to retrieve tasks",
			map[string]interface{}{"error": err.Error()})
	}

	data := ListTasksData{Tasks: []TaskData{}}
	for _, t := range tasks {
		if p.Completed != nil && t.Completed != *p.Completed {
			continue
		}
		if p.Priority != "" && string(t.Priority) != p.Priority {
			continue
		}
		data.Tasks = append(data.Tasks, FromTask(t))
	}
	data.Total = len(data.Tasks)

	g.logger.Info("list_tasks success", "count", data.Total)
	return Ok(data)
}

func (g *Gateway) completeTask(ctx context.Context, p CompleteTaskParams, userID int64) Response {
	task, err := g.repo.CompleteTask(ctx, p.TaskID, userID)
	if err != nil {
		g.logger.Error("complete_task store error", "error", err)
		return Fail(CodeProcessing, "Failed to complete task",
			map[string]interface{}{"error": err.Error()})
	}
	if task == nil {
		g.logger.Warn("complete_task not_found", "task_id", p.TaskID)
		return Fail(CodeNotFound, "Task not found",
			map[string]interface{}{"task_id": p.TaskID})
	}

	g.sink.Emit(events.TaskCompleted, userID, task.ID, map[string]interface{}{
		"title": task.Title,
	})

	g.logger.Info("complete_task success", "task_id", task.ID)
	return Ok(FromTask(task))
}

func (g *Gateway) deleteTask(ctx context.Context, p DeleteTaskParams, userID int64) Response {
	// Fetch first so the deletion event can carry the title; the delete
	// itself still filters by owner.
	task, err := g.repo.GetTask(ctx, p.TaskID, userID)
	if err != nil {
		g.logger.Error("delete_task store error", "error", err)
		return Fail(CodeProcessing, "Failed to delete task",
			map[string]interface{}{"error": err.Error()})
	}

	deleted, err := g.repo.DeleteTask(ctx, p.TaskID, userID)
	if err != nil {
		g.logger.Error("delete_task store error", "error", err)
		return Fail(CodeProcessing, "Failed to delete task",
			map[string]interface{}{"error": err.Error()})
	}
	if !deleted {
		g.logger.Warn("delete_task not_found", "task_id", p.TaskID)
		return Fail(CodeNotFound, "Task not found",
			map[string]interface{}{"task_id": p.TaskID})
	}

	data := map[string]interface{}{}
	if task != nil {
		data["title"] = task.Title
	}
	g.sink.Emit(events.TaskDeleted, userID, p.TaskID, data)

	g.logger.Info("delete_task success", "task_id", p.TaskID)
	return Ok(DeleteTaskData{Deleted: true, TaskID: p.TaskID})
}

func (g *Gateway) updateTask(ctx context.Context, p UpdateTaskParams, userID int64) Response {
	update := domain.TaskUpdate{
		Title:           p.Title,
		Description:     p.Description,
		Completed:       p.Completed,
		Priority:        p.Priority,
		DueDate:         p.DueDate,
		Tags:            p.Tags,
		RecurrenceRule:  p.RecurrenceRule,
		ReminderMinutes: p.ReminderMinutes,
	}

	task, err := g.repo.UpdateTask(ctx, p.TaskID, userID, update)
	if err != nil {
		g.logger.Error("update_task store error", "error", err)
		return Fail(CodeProcessing, "Failed to update task",
			map[string]interface{}{"error": err.Error()})
	}
	if task == nil {
		g.logger.Warn("update_task not_found", "task_id", p.TaskID)
		return Fail(CodeNotFound, "Task not found",
			map[string]interface{}{"task_id": p.TaskID})
	}

	g.sink.Emit(events.TaskUpdated, userID, task.ID, map[string]interface{}{
		"title":   task.Title,
		"changes": p.Audit(),
	})

	g.logger.Info("update_task success", "task_id", task.ID)
	return Ok(FromTask(task))
}
