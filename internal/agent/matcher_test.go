package agent

import (
	"testing"

	"github.com/ashureev/taskyar/internal/tools"
)

func taskList(titles ...string) []tools.TaskData {
	tasks := make([]tools.TaskData, len(titles))
	for i, title := range titles {
		tasks[i] = tools.TaskData{ID: int64(i + 1), Title: title}
	}
	return tasks
}

func TestMatchTaskByTitleExact(t *testing.T) {
	t.Parallel()

	tasks := taskList("buy milk", "buy milk and eggs")
	match, candidates := MatchTaskByTitle("buy milk", tasks)
	if match == nil {
		t.Fatal("Expected a unique match")
	}
	if match.ID != 1 {
		t.Errorf("Expected exact match on task 1, got %d", match.ID)
	}
	if len(candidates) != 1 {
		t.Errorf("Expected exact match to short-circuit, got %d candidates", len(candidates))
	}
}

func TestMatchTaskByTitleSubstring(t *testing.T) {
	t.Parallel()

	tasks := taskList("buy groceries for the week", "call mom")
	match, candidates := MatchTaskByTitle("groceries", tasks)
	if match == nil {
		t.Fatal("Expected a unique substring match")
	}
	if match.ID != 1 {
		t.Errorf("Expected task 1, got %d", match.ID)
	}
	if len(candidates) != 1 {
		t.Errorf("Expected one candidate, got %d", len(candidates))
	}
}

func TestMatchTaskByTitleAmbiguous(t *testing.T) {
	t.Parallel()

	tasks := taskList("buy milk", "buy bread", "call mom")
	match, candidates := MatchTaskByTitle("buy", tasks)
	if match != nil {
		t.Errorf("Expected no unique match, got task %d", match.ID)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if !DetectAmbiguity(candidates) {
		t.Error("Expected ambiguity")
	}
}

func TestMatchTaskByTitleWordOverlap(t *testing.T) {
	t.Parallel()

	tasks := taskList("submit quarterly report", "water the plants")
	// 2 of 3 query words overlap: 2 >= 0.5*3.
	match, _ := MatchTaskByTitle("quarterly report thing", tasks)
	if match == nil || match.ID != 1 {
		t.Fatal("Expected overlap match on task 1")
	}

	// 1 of 3 words: 1 < 1.5, no match.
	match, candidates := MatchTaskByTitle("report something else", tasks)
	if match != nil || len(candidates) != 0 {
		t.Errorf("Expected no match, got %v (%d candidates)", match, len(candidates))
	}
}

func TestMatchTaskByTitleEmpty(t *testing.T) {
	t.Parallel()

	if match, candidates := MatchTaskByTitle("anything", nil); match != nil || candidates != nil {
		t.Error("Expected no match on empty task list")
	}
	if match, _ := MatchTaskByTitle("  ", taskList("buy milk")); match != nil {
		t.Error("Expected no match on blank query")
	}
}
