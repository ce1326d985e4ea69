package agent

import (
	"fmt"
	"strings"

	"github.com/ashureev/taskyar/internal/tools"
)

func formatTaskCreated(task tools.TaskData, lang Language) string {
	return renderTemplate(tplTaskCreated, lang, map[string]string{"title": task.Title})
}

// formatTaskList renders the checkbox task list. An empty list gets its own
// friendlier message instead of a bare header.
func formatTaskList(data tools.ListTasksData, lang Language, status string) string {
	if len(data.Tasks) == 0 {
		return renderTemplate(tplTaskEmptyList, lang, nil)
	}

	lines := []string{renderTemplate(tplTaskListed, lang, map[string]string{"status": status})}
	for i, task := range data.Tasks {
		checkbox := "☐"
		if task.Completed {
			checkbox = "✓"
		}
		line := fmt.Sprintf("%d. %s %s", i+1, checkbox, task.Title)
		if task.Priority != "" {
			line += fmt.Sprintf(" [%s]", task.Priority)
		}
		if task.DueDate != "" {
			line += fmt.Sprintf(" (Due: %s)", task.DueDate)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatTaskCompleted(title string, lang Language) string {
	return renderTemplate(tplTaskCompleted, lang, map[string]string{"title": title})
}

func formatTaskDeleted(title string, lang Language) string {
	return renderTemplate(tplTaskDeleted, lang, map[string]string{"title": title})
}

func formatTaskUpdated(task tools.TaskData, changes Updates, lang Language) string {
	msg := renderTemplate(tplTaskUpdated, lang, map[string]string{"title": task.Title})
	if changes.Priority != "" {
		msg += fmt.Sprintf(" (priority: %s)", changes.Priority)
	}
	return msg
}

func formatAmbiguous(matches []tools.TaskData, lang Language) string {
	lines := []string{renderTemplate(tplAmbiguousRequest, lang, nil)}
	for _, task := range matches {
		lines = append(lines, "- "+task.Title)
	}
	return strings.Join(lines, "\n")
}

func formatDeleteConfirmation(title string, lang Language) string {
	return renderTemplate(tplDeleteConfirmation, lang, map[string]string{"title": title})
}

func formatGreeting(lang Language) string {
	return renderTemplate(tplGreeting, lang, nil)
}

func formatThanks(lang Language) string {
	return renderTemplate(tplThanks, lang, nil)
}

// formatError maps a tool error code to its localized user-facing message.
func formatError(code string, lang Language) string {
	if code == tools.CodeNotFound {
		return renderTemplate(tplTaskNotFound, lang, nil)
	}
	return errorMessage(code, lang)
}

// mapToolError renders the localized message for a failed tool response.
func mapToolError(resp tools.Response, lang Language) string {
	if resp.Error == nil {
		return ""
	}
	return formatError(resp.Error.Code, lang)
}
