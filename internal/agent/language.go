package agent

import (
	"strings"
)

// romanUrduKeywords are distinctly Urdu words written in Latin script.
// English words that could appear in either language are deliberately absent.
var romanUrduKeywords = map[string]struct{}{
	// Greetings
	"assalam": {}, "walaikum": {}, "salam": {}, "khuda": {}, "allah": {},
	// Common Urdu words
	"kya": {}, "kia": {}, "kaise": {}, "kaisay": {}, "kaisa": {}, "karo": {}, "karein": {}, "karna": {},
	"hain": {}, "tha": {}, "thi": {}, "haan": {}, "nahi": {}, "nahin": {},
	"mera": {}, "meri": {}, "mere": {}, "aap": {}, "tum": {}, "ap": {},
	"kar": {}, "dein": {}, "dijiye": {}, "kijiye": {},
	"theek": {}, "thik": {}, "accha": {}, "acha": {},
	"shukriya": {}, "meherbani": {},
	"dekho": {}, "dikhao": {}, "batao": {}, "bata": {},
	"abhi": {}, "kal": {}, "aaj": {}, "parso": {},
	"wala": {}, "wali": {}, "wale": {},
	"mujhe": {}, "mujhay": {}, "humein": {},
	"yeh": {}, "ye": {}, "woh": {}, "wo": {},
	"ati": {}, "ata": {}, "hai": {}, "ho": {}, "main": {}, "tumhe": {}, "tumhein": {},
	"ko": {}, "ka": {}, "ki": {}, "ke": {}, "se": {}, "pe": {}, "par": {},
	"baat": {}, "urdu": {}, "sakty": {}, "sakta": {}, "sakti": {},
	// Confirmations
	"ji": {}, "bilkul": {}, "zaroor": {},
}

// strongRomanUrduIndicators are words that mark Roman Urdu on their own.
var strongRomanUrduIndicators = map[string]struct{}{
	"shukriya": {}, "assalam": {}, "walaikum": {}, "meherbani": {},
	"karo": {}, "karein": {}, "dijiye": {},
}

// DetectLanguage classifies a message as English, Urdu script, or Roman Urdu.
//
// Rules, first match wins:
//  1. Any Arabic-script character -> ur
//  2. At least two Roman Urdu keywords -> roman_ur
//  3. At least one strong indicator -> roman_ur
//  4. Otherwise -> en
//
// Pure and deterministic.
func DetectLanguage(message string) Language {
	if containsUrduScript(message) {
		return LangUrdu
	}

	// Distinct-word intersection: repeated words count once.
	seen := map[string]struct{}{}
	strong := false
	for _, word := range strings.Fields(strings.ToLower(message)) {
		if _, ok := romanUrduKeywords[word]; ok {
			seen[word] = struct{}{}
		}
		if _, ok := strongRomanUrduIndicators[word]; ok {
			strong = true
		}
	}
	if len(seen) >= 2 || strong {
		return LangRomanUrdu
	}

	return LangEnglish
}

// containsUrduScript reports whether text contains a character in the Arabic
// Unicode block (U+0600..U+06FF), which covers Urdu script.
func containsUrduScript(text string) bool {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}
