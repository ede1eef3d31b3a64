package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) *LegalAnalyzer {
	t.Helper()
	k, err := LoadKnowledge("")
	require.NoError(t, err)
	return NewLegalAnalyzer(k)
}

func TestExtractReferences(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	t.Run("article and clause", func(t *testing.T) {
		ref := analyzer.ExtractReferences("Điều 6 Khoản 9 quy định gì?")
		assert.Equal(t, []int{6}, ref.Articles)
		assert.Equal(t, []int{9}, ref.Clauses)
		assert.True(t, ref.HasLegalReference)
	})

	t.Run("decree", func(t *testing.T) {
		ref := analyzer.ExtractReferences("nghị định 168 có hiệu lực khi nào")
		assert.Equal(t, []int{168}, ref.Decrees)
		assert.True(t, ref.HasLegalReference)
	})

	t.Run("point with closing parenthesis", func(t *testing.T) {
		ref := analyzer.ExtractReferences("điểm b) khoản 3")
		assert.Equal(t, []string{"b"}, ref.Points)
		assert.Equal(t, []int{3}, ref.Clauses)
	})

	t.Run("english forms", func(t *testing.T) {
		ref := analyzer.ExtractReferences("what does article 12 clause 4 of decree 100 say")
		assert.Equal(t, []int{12}, ref.Articles)
		assert.Equal(t, []int{4}, ref.Clauses)
		assert.Equal(t, []int{100}, ref.Decrees)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		ref := analyzer.ExtractReferences("điều 6 và điều 6 và article 6")
		assert.Equal(t, []int{6}, ref.Articles)
	})

	t.Run("no references", func(t *testing.T) {
		ref := analyzer.ExtractReferences("vượt đèn đỏ bị phạt bao nhiêu")
		assert.False(t, ref.HasLegalReference)
		assert.Empty(t, ref.Articles)
	})
}

func TestIsLegalPenaltyQuery(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	assert.True(t, analyzer.IsLegalPenaltyQuery("mức phạt vượt đèn đỏ"))
	assert.True(t, analyzer.IsLegalPenaltyQuery("Điều 6 nói gì"))
	assert.True(t, analyzer.IsLegalPenaltyQuery("what is the fine for speeding"))
	// Toneless penalty vocabulary still matches.
	assert.True(t, analyzer.IsLegalPenaltyQuery("muc phat vuot den do"))
	assert.False(t, analyzer.IsLegalPenaltyQuery("how do I cook rice"))
}

func TestIsArticleSearch(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	assert.True(t, analyzer.IsArticleSearch("Điều 6 Khoản 9"))
	assert.False(t, analyzer.IsArticleSearch("vượt đèn đỏ"))
}

func TestExtractKeywords(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	t.Run("reference phrases come first", func(t *testing.T) {
		keywords := analyzer.ExtractKeywords("Điều 6 Khoản 9 phạt bao nhiêu")
		require.NotEmpty(t, keywords)
		assert.Equal(t, "điều 6", keywords[0])
		assert.Contains(t, keywords, "khoản 9")
	})

	t.Run("violation bundle expands red light query", func(t *testing.T) {
		keywords := analyzer.ExtractKeywords("vượt đèn đỏ bị phạt không")
		assert.Contains(t, keywords, "không chấp hành hiệu lệnh của đèn tín hiệu giao thông")
		assert.Contains(t, keywords, "đèn tín hiệu")
	})

	t.Run("bundle triggers on toneless text", func(t *testing.T) {
		keywords := analyzer.ExtractKeywords("vuot den do bi phat khong")
		assert.Contains(t, keywords, "không chấp hành hiệu lệnh của đèn tín hiệu giao thông")
	})

	t.Run("no duplicates", func(t *testing.T) {
		keywords := analyzer.ExtractKeywords("vượt đèn đỏ vượt đèn đỏ")
		seen := make(map[string]int)
		for _, kw := range keywords {
			seen[kw]++
		}
		for kw, count := range seen {
			assert.Equal(t, 1, count, "keyword %q appears %d times", kw, count)
		}
	})

	t.Run("off topic yields nothing", func(t *testing.T) {
		assert.Empty(t, analyzer.ExtractKeywords("zzz qqq"))
	})
}
