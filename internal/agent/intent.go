package agent

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is a classified purpose of a user message.
type Intent string

const (
	IntentAdd      Intent = "add"
	IntentList     Intent = "list"
	IntentComplete Intent = "complete"
	IntentDelete   Intent = "delete"
	IntentUpdate   Intent = "update"
	IntentNone     Intent = ""
)

// intentKeywords routes a message to a task intent. Order is load-bearing:
// the first intent whose keyword list matches wins, so this must stay an
// ordered slice, never a map.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentAdd, []string{
		"add", "create", "new task", "remind",
		"shamil", "banao", "naya task", "task banao", "شامل", "بناؤ",
	}},
	{IntentList, []string{
		"show", "list", "what", "my task", "tasks",
		"dikhao", "dikha", "batao", "mere task", "فہرست", "دکھاؤ",
	}},
	{IntentComplete, []string{
		"done", "finish", "complete", "mark",
		"mukammal", "ho gaya", "مکمل",
	}},
	{IntentDelete, []string{
		"delete", "remove", "cancel",
		"hata", "hatao", "mita", "mitao", "حذف", "ہٹاؤ",
	}},
	{IntentUpdate, []string{
		"update", "change", "rename", "modify", "edit",
		"badlo", "tabdeel", "تبدیل", "بدلو",
	}},
}

// ClassifyIntent returns the first task intent whose keyword list matches.
func ClassifyIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.intent
			}
		}
	}
	return IntentNone
}

var greetings = []string{
	// English
	"hi", "hello", "hey", "good morning", "good evening", "good afternoon",
	// Roman Urdu
	"assalam", "assalam o alaikum", "salam", "aoa",
	// Urdu script
	"السلام علیکم", "سلام",
}

var thanksPhrases = []string{
	// English
	"thanks", "thank you", "thank u", "thx", "ty",
	// Roman Urdu
	"shukriya", "shukria", "meherbani",
	// Urdu script
	"شکریہ", "مہربانی",
}

var confirmations = map[string]struct{}{
	// English
	"yes": {}, "yes delete": {}, "confirm": {}, "do it": {}, "go ahead": {}, "ok": {}, "okay": {},
	// Roman Urdu
	"haan": {}, "haan delete": {}, "ji": {}, "ji haan": {}, "theek hai": {}, "kar do": {},
	// Urdu script
	"ہاں": {}, "جی ہاں": {}, "ٹھیک ہے": {},
}

var cancellations = map[string]struct{}{
	// English
	"no": {}, "cancel": {}, "stop": {}, "nevermind": {}, "never mind": {}, "nope": {},
	// Roman Urdu
	"nahi": {}, "nahi nahi": {}, "ruko": {}, "mat karo": {}, "rehne do": {},
	// Urdu script
	"نہیں": {}, "رکو": {}, "مت کرو": {},
}

// IsGreeting reports whether the message is a greeting, either exactly or by
// containing a greeting phrase.
func IsGreeting(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, g := range greetings {
		if lower == g || strings.Contains(lower, g) {
			return true
		}
	}
	return false
}

// IsThanks reports whether the message is a thank-you.
func IsThanks(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, t := range thanksPhrases {
		if lower == t || strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// IsConfirmation reports whether the trimmed message exactly matches the
// confirmation vocabulary.
func IsConfirmation(message string) bool {
	_, ok := confirmations[strings.ToLower(strings.TrimSpace(message))]
	return ok
}

// IsCancellation reports whether the trimmed message exactly matches the
// cancellation vocabulary.
func IsCancellation(message string) bool {
	_, ok := cancellations[strings.ToLower(strings.TrimSpace(message))]
	return ok
}

var taskIDPattern = regexp.MustCompile(`(?i)(?:task\s+)?(?:id|#|no\.?|number)\s*(\d+)`)

// ExtractTaskID pulls a numeric task ID from phrases like "task id 5",
// "task #5", or "id 5". Returns 0 when no ID is present.
func ExtractTaskID(message string) int64 {
	m := taskIDPattern.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// taskReferencePatterns are tried in order; the first capture wins.
var taskReferencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:the|my)\s+['"]?(.+?)['"]?\s+task`),
	regexp.MustCompile(`(?i)task\s+['"]?(.+?)['"]?(?:\s|$)`),
	regexp.MustCompile(`['"](.+?)['"]`),
	regexp.MustCompile(`(?i)(?:mark|complete|delete|update|remove)\s+['"]?(.+?)['"]?(?:\s+as|\s+task|$)`),
}

// ExtractTaskReference pulls a free-text task reference out of the message.
// Returns "" when nothing matches.
func ExtractTaskReference(message string) string {
	for _, p := range taskReferencePatterns {
		if m := p.FindStringSubmatch(message); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// titlePatterns strip add-intent prefixes from a message.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:add|create|new)\s+(?:a\s+)?(?:task\s+)?(?:to\s+)?(.+)`),
	regexp.MustCompile(`(?i)(?:remind\s+me\s+to\s+)(.+)`),
	regexp.MustCompile(`(?i)(?:task\s*:\s*)(.+)`),
}

// titleStopWords are dropped when falling back to the whole message.
var titleStopWords = map[string]struct{}{
	"add": {}, "create": {}, "new": {}, "task": {}, "a": {}, "to": {}, "please": {}, "plz": {},
}

// ExtractTitle pulls the task title from an add-intent message.
// Returns "" when nothing usable remains.
func ExtractTitle(message string) string {
	for _, p := range titlePatterns {
		if m := p.FindStringSubmatch(message); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	// Fallback: the whole message minus common words.
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(message)) {
		if _, skip := titleStopWords[w]; !skip {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

var renamePattern = regexp.MustCompile(`(?i)(?:rename|change|update)\s+(?:to|title\s+to)\s+['"]?(.+?)['"]?$`)

// Updates is the partial field map extracted from an update-intent message.
type Updates struct {
	Priority string
	Title    string
}

// Empty reports whether nothing was extracted.
func (u Updates) Empty() bool {
	return u.Priority == "" && u.Title == ""
}

// ExtractUpdates scans for priority keywords and a rename pattern.
func ExtractUpdates(message string) Updates {
	var updates Updates
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "high"):
		updates.Priority = "High"
	case strings.Contains(lower, "low"):
		updates.Priority = "Low"
	case strings.Contains(lower, "medium"):
		updates.Priority = "Medium"
	}

	if m := renamePattern.FindStringSubmatch(message); m != nil {
		updates.Title = strings.TrimSpace(m[1])
	}

	return updates
}
