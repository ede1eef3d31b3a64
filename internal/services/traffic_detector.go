package services

import (
	"regexp"
	"strings"

	"traffic-chatbot/internal/models"
)

// singleWordMatcher holds the precompiled word-boundary regexes for one
// single-word traffic keyword, for both raw and diacritic-stripped text.
type singleWordMatcher struct {
	raw        *regexp.Regexp
	normalized *regexp.Regexp
}

// TrafficDetector classifies incoming questions as greetings, traffic-law
// questions, or off-topic. Detection is layered: greeting, penalty
// vocabulary, keyword match, contextual patterns, short phrases, and
// finally follow-up carryover from recent conversation turns.
type TrafficDetector struct {
	knowledge *Knowledge
	analyzer  *LegalAnalyzer

	singleWord []singleWordMatcher
	multiWord  [][2]string // lowercased raw, normalized
}

func NewTrafficDetector(knowledge *Knowledge, analyzer *LegalAnalyzer) *TrafficDetector {
	d := &TrafficDetector{knowledge: knowledge, analyzer: analyzer}
	for _, keyword := range knowledge.TrafficKeywords {
		lower := strings.ToLower(keyword)
		normalized := Normalize(lower)
		if !strings.Contains(keyword, " ") {
			// Word boundaries keep short keywords like "xe" from firing
			// inside unrelated words.
			d.singleWord = append(d.singleWord, singleWordMatcher{
				raw:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(lower) + `\b`),
				normalized: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(normalized) + `\b`),
			})
		} else {
			d.multiWord = append(d.multiWord, [2]string{lower, normalized})
		}
	}
	return d
}

// IsGreeting reports whether the question is a standalone greeting.
// Exact matches, a single trailing punctuation mark, and greeting-prefixed
// questions of at most four tokens all count.
func (d *TrafficDetector) IsGreeting(question string) bool {
	questionLower := strings.ToLower(strings.TrimSpace(question))
	questionNormalized := Normalize(questionLower)

	for _, greeting := range d.knowledge.Greetings {
		greetingLower := strings.ToLower(greeting)
		greetingNormalized := Normalize(greetingLower)

		if matchesGreeting(questionLower, greetingLower) ||
			matchesGreeting(questionNormalized, greetingNormalized) {
			return true
		}
	}
	return false
}

func matchesGreeting(question, greeting string) bool {
	if question == greeting || question == greeting+"!" ||
		question == greeting+"." || question == greeting+"?" {
		return true
	}
	return strings.HasPrefix(question, greeting+" ") && len(strings.Fields(question)) <= 4
}

// IsTrafficLawRelated reports whether the question is in scope for the
// assistant. Follow-up questions inherit scope from the last three turns
// of history.
func (d *TrafficDetector) IsTrafficLawRelated(question string, history []models.ConversationTurn) bool {
	if d.IsGreeting(question) {
		return true
	}
	if d.analyzer.IsLegalPenaltyQuery(question) {
		return true
	}

	questionLower := strings.ToLower(question)
	questionNormalized := Normalize(questionLower)

	if d.hasTrafficKeyword(questionLower, questionNormalized) {
		return true
	}

	for _, pattern := range d.knowledge.Patterns() {
		if pattern.MatchString(questionLower) || pattern.MatchString(questionNormalized) {
			return true
		}
	}

	if d.hasShortTrafficPhrase(questionLower, questionNormalized) {
		return true
	}

	if d.isFollowUp(questionLower, questionNormalized) && len(history) > 0 {
		recent := history
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		for _, turn := range recent {
			if d.IsTrafficLawRelated(turn.Question, nil) || d.IsTrafficLawRelated(turn.Answer, nil) {
				return true
			}
		}
	}

	return false
}

func (d *TrafficDetector) hasTrafficKeyword(questionLower, questionNormalized string) bool {
	for _, m := range d.singleWord {
		if m.raw.MatchString(questionLower) || m.normalized.MatchString(questionNormalized) {
			return true
		}
	}
	for _, kw := range d.multiWord {
		if strings.Contains(questionLower, kw[0]) || strings.Contains(questionNormalized, kw[1]) {
			return true
		}
	}
	return false
}

// hasShortTrafficPhrase matches phrases bag-of-words: every word of the
// phrase must appear somewhere among the question's tokens, in any order.
func (d *TrafficDetector) hasShortTrafficPhrase(questionLower, questionNormalized string) bool {
	questionWords := toWordSet(questionLower)
	questionNormalizedWords := toWordSet(questionNormalized)

	for _, phrase := range d.knowledge.TrafficPhrases {
		if allWordsPresent(strings.Fields(phrase), questionWords) ||
			allWordsPresent(strings.Fields(Normalize(phrase)), questionNormalizedWords) {
			return true
		}
	}
	return false
}

func (d *TrafficDetector) isFollowUp(questionLower, questionNormalized string) bool {
	for _, marker := range d.knowledge.FollowUpMarkers {
		if strings.Contains(questionLower, marker) ||
			strings.Contains(questionNormalized, Normalize(marker)) {
			return true
		}
	}
	return false
}

func toWordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		set[w] = true
	}
	return set
}

func allWordsPresent(words []string, set map[string]bool) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !set[w] {
			return false
		}
	}
	return true
}
