package services

import (
	"regexp"
	"strconv"
	"strings"

	"traffic-chatbot/internal/models"
)

// Citation patterns. Vietnamese forms tolerate optional whitespace inside
// compound words (nghị định / nghịđịnh appears both ways in user input).
var (
	articlePattern   = regexp.MustCompile(`(?i)điều\s+(\d+)`)
	clausePattern    = regexp.MustCompile(`(?i)khoản\s+(\d+)`)
	pointPattern     = regexp.MustCompile(`(?i)điểm\s+([a-z])\)`)
	decreePattern    = regexp.MustCompile(`(?i)nghị\s*định\s+(\d+)`)
	circularPattern  = regexp.MustCompile(`(?i)thông\s*tư\s+(\d+)`)
	decisionPattern  = regexp.MustCompile(`(?i)quyết\s*định\s+(\d+)`)
	articlePatternEn = regexp.MustCompile(`(?i)article\s+(\d+)`)
	clausePatternEn  = regexp.MustCompile(`(?i)clause\s+(\d+)`)
	decreePatternEn  = regexp.MustCompile(`(?i)decree\s+(\d+)`)
)

// LegalAnalyzer extracts legal citations and retrieval keywords from
// user queries against the loaded taxonomy.
type LegalAnalyzer struct {
	knowledge *Knowledge
}

func NewLegalAnalyzer(knowledge *Knowledge) *LegalAnalyzer {
	return &LegalAnalyzer{knowledge: knowledge}
}

// ExtractReferences pulls every article/clause/point/decree/circular/
// decision citation out of the query. Numbers are deduplicated in
// first-seen order.
func (a *LegalAnalyzer) ExtractReferences(query string) models.LegalReference {
	ref := models.LegalReference{
		Articles:  extractNumbers(query, articlePattern, articlePatternEn),
		Clauses:   extractNumbers(query, clausePattern, clausePatternEn),
		Points:    extractLetters(query, pointPattern),
		Decrees:   extractNumbers(query, decreePattern, decreePatternEn),
		Circulars: extractNumbers(query, circularPattern),
		Decisions: extractNumbers(query, decisionPattern),
	}
	ref.HasLegalReference = len(ref.Articles) > 0 || len(ref.Clauses) > 0 ||
		len(ref.Points) > 0 || len(ref.Decrees) > 0 ||
		len(ref.Circulars) > 0 || len(ref.Decisions) > 0
	return ref
}

// IsArticleSearch reports whether the query cites any legal reference
// explicitly.
func (a *LegalAnalyzer) IsArticleSearch(query string) bool {
	return a.ExtractReferences(query).HasLegalReference
}

// IsLegalPenaltyQuery reports whether the query asks about penalties or
// legal provisions. A query citing an article is always a penalty query.
func (a *LegalAnalyzer) IsLegalPenaltyQuery(query string) bool {
	if a.IsArticleSearch(query) {
		return true
	}

	queryLower := strings.ToLower(query)
	queryNormalized := Normalize(queryLower)

	return containsAnyIndicator(queryLower, queryNormalized, a.knowledge.PenaltyIndicators) ||
		containsAnyIndicator(queryLower, queryNormalized, a.knowledge.LegalIndicators)
}

// ExtractKeywords builds the retrieval keyword set for a query: cited
// reference phrases first, then every core keyword present in the raw or
// diacritic-stripped text, then any triggered violation bundle.
// Duplicates keep their first position.
func (a *LegalAnalyzer) ExtractKeywords(query string) []string {
	queryLower := strings.ToLower(query)
	queryNormalized := Normalize(queryLower)

	var found []string

	ref := a.ExtractReferences(query)
	if ref.HasLegalReference {
		for _, n := range ref.Articles {
			found = append(found, "điều "+strconv.Itoa(n))
		}
		for _, n := range ref.Clauses {
			found = append(found, "khoản "+strconv.Itoa(n))
		}
		for _, p := range ref.Points {
			found = append(found, "điểm "+p)
		}
		for _, n := range ref.Decrees {
			found = append(found, "nghị định "+strconv.Itoa(n))
		}
		for _, n := range ref.Circulars {
			found = append(found, "thông tư "+strconv.Itoa(n))
		}
		for _, n := range ref.Decisions {
			found = append(found, "quyết định "+strconv.Itoa(n))
		}
	}

	for _, keyword := range a.knowledge.CoreKeywords {
		keywordLower := strings.ToLower(keyword)
		if strings.Contains(queryLower, keywordLower) ||
			strings.Contains(queryNormalized, Normalize(keywordLower)) {
			found = append(found, keyword)
		}
	}

	for _, bundle := range a.knowledge.ViolationBundles {
		for _, trigger := range bundle.Triggers {
			if strings.Contains(queryLower, trigger) || strings.Contains(queryNormalized, trigger) {
				found = append(found, bundle.Keywords...)
				break
			}
		}
	}

	return dedupeStrings(found)
}

func containsAnyIndicator(queryLower, queryNormalized string, indicators []string) bool {
	for _, indicator := range indicators {
		if strings.Contains(queryLower, indicator) ||
			strings.Contains(queryNormalized, Normalize(indicator)) {
			return true
		}
	}
	return false
}

func extractNumbers(query string, patterns ...*regexp.Regexp) []int {
	var nums []int
	seen := make(map[int]bool)
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(query, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || seen[n] {
				continue
			}
			seen[n] = true
			nums = append(nums, n)
		}
	}
	return nums
}

func extractLetters(query string, pattern *regexp.Regexp) []string {
	var letters []string
	seen := make(map[string]bool)
	for _, m := range pattern.FindAllStringSubmatch(query, -1) {
		letter := strings.ToLower(m[1])
		if seen[letter] {
			continue
		}
		seen[letter] = true
		letters = append(letters, letter)
	}
	return letters
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
