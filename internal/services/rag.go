package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"traffic-chatbot/internal/models"
)

// Relevance scoring weights. Citation matches dominate so that an
// explicit "Điều 6" query surfaces the cited article ahead of chunks
// that merely share vocabulary.
const (
	scoreArticleMatch       = 50
	scorePointMatch         = 45
	scoreClauseMatch        = 40
	scoreDecreeMatch        = 35
	scoreClausePointCombo   = 25
	scoreArticleClauseCombo = 20
	scoreRedLightContext    = 20
	scoreSemanticMatch      = 15
	scoreOvertakingContext  = 15
	scoreDirectPhrase       = 15
	scoreLegalIndicator     = 5
	scoreMonetaryAmount     = 3
)

var (
	legalContentPattern = regexp.MustCompile(`(?i)điều\s+\d+|khoản\s+\d+|nghị định\s+\d+|quyết định\s+\d+`)
	monetaryPattern     = regexp.MustCompile(`(?i)\d+\.?\d*\s*(triệu|nghìn|đồng|vnđ)`)
)

// RAGScorer ranks document chunks against a query using deterministic
// additive scoring. Equal inputs always produce equal scores.
type RAGScorer struct {
	knowledge *Knowledge
	analyzer  *LegalAnalyzer
}

func NewRAGScorer(knowledge *Knowledge, analyzer *LegalAnalyzer) *RAGScorer {
	return &RAGScorer{knowledge: knowledge, analyzer: analyzer}
}

// ScoreChunk computes the relevance of one chunk to the query.
func (r *RAGScorer) ScoreChunk(chunk models.DocumentChunk, query string, keywords []string) int {
	chunkLower := strings.ToLower(chunk.Content)
	queryLower := strings.ToLower(query)
	queryNormalized := Normalize(queryLower)

	score := 0

	ref := r.analyzer.ExtractReferences(query)
	if ref.HasLegalReference {
		score += scoreLegalReferences(chunk.Content, ref)
	}

	score += r.scoreSemanticPatterns(chunkLower, queryLower)
	score += scoreKeywordMatches(chunkLower, keywords)
	score += scoreContextualMatches(chunkLower, queryLower, queryNormalized)

	if strings.Contains(chunkLower, queryLower) {
		score += scoreDirectPhrase
	}

	score += scoreWordMatches(chunkLower, queryLower)
	score += scoreLegalContent(chunk.Content)

	return score
}

// Retrieve returns up to maxChunks chunks ordered by descending score.
// Zero-score chunks are discarded; ties keep input order.
func (r *RAGScorer) Retrieve(allChunks []models.DocumentChunk, query string, keywords []string, maxChunks int) []models.DocumentChunk {
	type scored struct {
		chunk models.DocumentChunk
		score int
	}

	var candidates []scored
	for _, chunk := range allChunks {
		if s := r.ScoreChunk(chunk, query, keywords); s > 0 {
			candidates = append(candidates, scored{chunk: chunk, score: s})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if maxChunks > 0 && len(candidates) > maxChunks {
		candidates = candidates[:maxChunks]
	}

	result := make([]models.DocumentChunk, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.chunk)
	}
	return result
}

func scoreLegalReferences(content string, ref models.LegalReference) int {
	score := 0
	for _, n := range ref.Articles {
		if regexp.MustCompile(fmt.Sprintf(`(?i)điều\s+%d\b`, n)).MatchString(content) {
			score += scoreArticleMatch
		}
	}
	for _, n := range ref.Clauses {
		if regexp.MustCompile(fmt.Sprintf(`(?i)khoản\s+%d\b`, n)).MatchString(content) {
			score += scoreClauseMatch
		}
	}
	for _, p := range ref.Points {
		if regexp.MustCompile(fmt.Sprintf(`(?i)điểm\s+%s\)`, regexp.QuoteMeta(p))).MatchString(content) {
			score += scorePointMatch
		}
	}
	for _, n := range ref.Decrees {
		if regexp.MustCompile(fmt.Sprintf(`(?i)nghị\s*định\s+%d\b`, n)).MatchString(content) {
			score += scoreDecreeMatch
		}
	}
	if len(ref.Articles) > 0 && len(ref.Clauses) > 0 {
		score += scoreArticleClauseCombo
	}
	if len(ref.Clauses) > 0 && len(ref.Points) > 0 {
		score += scoreClausePointCombo
	}
	return score
}

func (r *RAGScorer) scoreSemanticPatterns(chunkLower, queryLower string) int {
	score := 0
	for intent, phrases := range r.knowledge.SemanticPatterns {
		if !strings.Contains(queryLower, intent) {
			continue
		}
		for _, phrase := range phrases {
			if strings.Contains(chunkLower, strings.ToLower(phrase)) {
				score += scoreSemanticMatch
			}
		}
	}
	return score
}

func scoreKeywordMatches(chunkLower string, keywords []string) int {
	score := 0
	for _, keyword := range keywords {
		keywordLower := strings.ToLower(keyword)
		occurrences := strings.Count(chunkLower, keywordLower)
		if occurrences == 0 {
			continue
		}

		weight := 2
		switch {
		case len([]rune(keyword)) > 10:
			weight = 8
		case strings.Contains(keywordLower, "phạt") || strings.Contains(keywordLower, "vi phạm"):
			weight = 5
		case strings.Contains(keywordLower, "điều") || strings.Contains(keywordLower, "khoản"):
			weight = 4
		}
		score += occurrences * weight
	}
	return score
}

func scoreContextualMatches(chunkLower, queryLower, queryNormalized string) int {
	score := 0

	isRedLightQuery := strings.Contains(queryLower, "vượt đèn đỏ") ||
		strings.Contains(queryLower, "chạy đèn đỏ") ||
		strings.Contains(queryNormalized, "vuot den do") ||
		strings.Contains(queryNormalized, "chay den do")

	if isRedLightQuery {
		if strings.Contains(chunkLower, "đèn tín hiệu") ||
			strings.Contains(chunkLower, "đèn đỏ") ||
			strings.Contains(chunkLower, "không chấp hành hiệu lệnh") {
			score += scoreRedLightContext
		}
		// Overtaking provisions steal red-light queries without this.
		if strings.Contains(chunkLower, "vượt xe") &&
			!strings.Contains(chunkLower, "đèn") &&
			!strings.Contains(chunkLower, "tín hiệu") {
			score -= 10
		}
	}

	isOvertakingQuery := (strings.Contains(queryLower, "vượt xe") ||
		strings.Contains(queryNormalized, "vuot xe")) && !isRedLightQuery

	if isOvertakingQuery {
		if strings.Contains(chunkLower, "vượt xe") || strings.Contains(chunkLower, "vượt ẩu") {
			score += scoreOvertakingContext
		}
		if strings.Contains(chunkLower, "đèn tín hiệu") || strings.Contains(chunkLower, "đèn đỏ") {
			score -= 5
		}
	}

	return score
}

func scoreWordMatches(chunkLower, queryLower string) int {
	matches := 0
	for _, word := range strings.Fields(queryLower) {
		if len([]rune(word)) <= 2 {
			continue
		}
		if strings.Contains(chunkLower, word) {
			matches++
		}
	}
	if matches > 1 {
		return matches * 2
	}
	return 0
}

func scoreLegalContent(content string) int {
	score := 0
	if legalContentPattern.MatchString(content) {
		score += scoreLegalIndicator
	}
	if monetaryPattern.MatchString(content) {
		score += scoreMonetaryAmount
	}
	return score
}
