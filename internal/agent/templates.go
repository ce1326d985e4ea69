package agent

import (
	"strings"
)

// templateKey identifies a response template family.
type templateKey string

const (
	tplTaskCreated        templateKey = "task_created"
	tplTaskListed         templateKey = "task_listed"
	tplTaskEmptyList      templateKey = "task_empty_list"
	tplTaskCompleted      templateKey = "task_completed"
	tplTaskDeleted        templateKey = "task_deleted"
	tplTaskUpdated        templateKey = "task_updated"
	tplTaskNotFound       templateKey = "task_not_found"
	tplAmbiguousRequest   templateKey = "ambiguous_request"
	tplDeleteConfirmation templateKey = "delete_confirmation"
	tplGreeting           templateKey = "greeting"
	tplThanks             templateKey = "thanks"
	tplDeleteCancelled    templateKey = "delete_cancelled"
	tplAddPrompt          templateKey = "add_prompt"
	tplFallback           templateKey = "fallback"
)

// templates holds every response template in all three languages.
// Placeholders use {name} syntax and are filled by renderTemplate.
var templates = map[templateKey]map[Language]string{
	tplTaskCreated: {
		LangEnglish:   `Got it! I've added the task "{title}" to your list.`,
		LangUrdu:      `ٹھیک ہے! میں نے "{title}" کا ٹاسک شامل کر دیا ہے۔`,
		LangRomanUrdu: `Theek hai! Main ne "{title}" ka task add kar diya hai.`,
	},
	tplTaskListed: {
		LangEnglish:   `Here are your {status} tasks:`,
		LangUrdu:      `یہ آپ کے {status} ٹاسکس ہیں:`,
		LangRomanUrdu: `Yeh aap ke {status} tasks hain:`,
	},
	tplTaskEmptyList: {
		LangEnglish:   `You don't have any tasks yet. Would you like to add one?`,
		LangUrdu:      `آپ کے پاس ابھی کوئی ٹاسک نہیں ہے۔ کیا آپ ایک شامل کرنا چاہیں گے؟`,
		LangRomanUrdu: `Aap ke paas abhi koi task nahi hai. Kya aap aik add karna chahein ge?`,
	},
	tplTaskCompleted: {
		LangEnglish:   `Nice! The task "{title}" is now marked as complete.`,
		LangUrdu:      `بہت خوب! "{title}" والا ٹاسک مکمل ہو گیا ہے۔`,
		LangRomanUrdu: `Zabardast! "{title}" wala task complete ho gaya hai.`,
	},
	tplTaskDeleted: {
		LangEnglish:   `Done. I've deleted the task "{title}".`,
		LangUrdu:      `ہو گیا۔ "{title}" والا ٹاسک حذف کر دیا گیا ہے۔`,
		LangRomanUrdu: `Ho gaya. "{title}" wala task delete kar diya gaya hai.`,
	},
	tplTaskUpdated: {
		LangEnglish:   `Updated! The task is now called "{title}".`,
		LangUrdu:      `اپڈیٹ ہو گیا! اب ٹاسک کا نام "{title}" ہے۔`,
		LangRomanUrdu: `Update ho gaya! Task ab "{title}" ke naam se hai.`,
	},
	tplTaskNotFound: {
		LangEnglish:   `I couldn't find that task. Can you double-check the details?`,
		LangUrdu:      `مجھے یہ ٹاسک نہیں ملا۔ براہِ کرم تفصیل چیک کریں۔`,
		LangRomanUrdu: `Mujhe yeh task nahi mila. Zara details check kar lein.`,
	},
	tplAmbiguousRequest: {
		LangEnglish:   `I see multiple matching tasks. Which one do you mean?`,
		LangUrdu:      `اس نام کے کئی ٹاسکس ہیں۔ براہِ کرم واضح کریں۔`,
		LangRomanUrdu: `Is naam ke kai tasks hain. Bata dein kaunsa?`,
	},
	tplDeleteConfirmation: {
		LangEnglish:   `Do you really want to delete "{title}"? Reply 'yes delete' to confirm.`,
		LangUrdu:      `کیا آپ واقعی "{title}" کو حذف کرنا چاہتے ہیں؟ تصدیق کے لیے 'ہاں حذف' لکھیں۔`,
		LangRomanUrdu: `Kya aap sach mein "{title}" ko delete karna chahte hain? 'haan delete' likh kar confirm karein.`,
	},
	tplGreeting: {
		LangEnglish:   `Hi! I'm here to help with your tasks. What would you like to do?`,
		LangUrdu:      `السلام علیکم! میں آپ کے ٹاسکس میں مدد کے لیے حاضر ہوں۔ کیا کروں؟`,
		LangRomanUrdu: `Assalam o Alaikum! Main aap ke tasks mein madad ke liye hazir hoon. Kya karoon?`,
	},
	tplThanks: {
		LangEnglish:   `You're welcome! Let me know if you need anything else.`,
		LangUrdu:      `خوش آمدید! اگر کچھ اور چاہیے تو بتائیں۔`,
		LangRomanUrdu: `Khush amdeed! Agar kuch aur chahiye to batayein.`,
	},
	tplDeleteCancelled: {
		LangEnglish:   `Okay, I won't delete that task.`,
		LangUrdu:      `ٹھیک ہے، میں وہ ٹاسک نہیں حذف کروں گا۔`,
		LangRomanUrdu: `Theek hai, main wo task delete nahi karunga.`,
	},
	tplAddPrompt: {
		LangEnglish:   `What would you like me to add to your tasks?`,
		LangUrdu:      `آپ کیا ٹاسک شامل کرنا چاہتے ہیں؟`,
		LangRomanUrdu: `Aap kya task add karna chahte hain?`,
	},
	tplFallback: {
		LangEnglish:   `I can help you manage tasks. Try: add, list, complete, delete, or update a task.`,
		LangUrdu:      `میں آپ کے کام میں مدد کر سکتا ہوں۔ کوشش کریں: ٹاسک شامل، فہرست، مکمل، حذف، یا اپڈیٹ کریں۔`,
		LangRomanUrdu: `Main aapke tasks manage karne mein madad kar sakta hoon. Try karein: add, list, complete, delete, ya update task.`,
	},
}

// errorTemplates map tool error codes to user-facing messages. Raw error
// text never reaches the user; only these strings do.
var errorTemplates = map[string]map[Language]string{
	"not_found": {
		LangEnglish:   `I couldn't find that task. Can you double-check the details?`,
		LangUrdu:      `مجھے یہ ٹاسک نہیں ملا۔ براہِ کرم تفصیل چیک کریں۔`,
		LangRomanUrdu: `Mujhe yeh task nahi mila. Zara details check kar lein.`,
	},
	"invalid_input": {
		LangEnglish:   `Could you provide more details? I need a bit more information.`,
		LangUrdu:      `کیا آپ مزید تفصیلات دے سکتے ہیں؟`,
		LangRomanUrdu: `Kya aap mazeed details de sakte hain?`,
	},
	"invalid_priority": {
		LangEnglish:   `Priority can be Low, Medium, or High. Which one should I use?`,
		LangUrdu:      `ترجیح Low، Medium یا High ہو سکتی ہے۔ کون سی رکھوں؟`,
		LangRomanUrdu: `Priority Low, Medium ya High ho sakti hai. Kaunsi rakhoon?`,
	},
	"invalid_date": {
		LangEnglish:   `I couldn't read that date. Please use the YYYY-MM-DD format.`,
		LangUrdu:      `یہ تاریخ سمجھ نہیں آئی۔ براہِ کرم YYYY-MM-DD فارمیٹ استعمال کریں۔`,
		LangRomanUrdu: `Yeh date samajh nahi aayi. Please YYYY-MM-DD format use karein.`,
	},
	"processing_error": {
		LangEnglish:   `I'm having a bit of trouble right now. Please try again in a moment.`,
		LangUrdu:      `ابھی کچھ مسئلہ ہے۔ براہِ کرم دوبارہ کوشش کریں۔`,
		LangRomanUrdu: `Abhi kuch masla hai. Please dobara try karein.`,
	},
	"timeout": {
		LangEnglish:   `That took longer than expected. Let's try again.`,
		LangUrdu:      `یہ توقع سے زیادہ وقت لگا۔ دوبارہ کوشش کرتے ہیں۔`,
		LangRomanUrdu: `Yeh expected se zyada time laga. Dobara try karte hain.`,
	},
	"unknown": {
		LangEnglish:   `Something went wrong. Please try again.`,
		LangUrdu:      `کچھ غلط ہو گیا۔ براہِ کرم دوبارہ کوشش کریں۔`,
		LangRomanUrdu: `Kuch galat ho gaya. Please dobara try karein.`,
	},
}

// renderTemplate returns the template in the requested language with
// {placeholder} values interpolated. Falls back to English for an unknown
// language tag.
func renderTemplate(key templateKey, lang Language, params map[string]string) string {
	byLang, ok := templates[key]
	if !ok {
		return ""
	}
	tpl, ok := byLang[lang]
	if !ok {
		tpl = byLang[LangEnglish]
	}
	for name, value := range params {
		tpl = strings.ReplaceAll(tpl, "{"+name+"}", value)
	}
	return tpl
}

// errorMessage returns the localized message for a tool error code.
// Unrecognized codes fall back to the generic unknown message.
func errorMessage(code string, lang Language) string {
	byLang, ok := errorTemplates[code]
	if !ok {
		byLang = errorTemplates["unknown"]
	}
	msg, ok := byLang[lang]
	if !ok {
		msg = byLang[LangEnglish]
	}
	return msg
}
