package services

import (
	"testing"

	"traffic-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer(t *testing.T) (*RAGScorer, *LegalAnalyzer) {
	t.Helper()
	k, err := LoadKnowledge("")
	require.NoError(t, err)
	analyzer := NewLegalAnalyzer(k)
	return NewRAGScorer(k, analyzer), analyzer
}

func chunk(id, content string) models.DocumentChunk {
	return models.DocumentChunk{
		ID:            id,
		DocumentID:    "doc-1",
		DocumentTitle: "Nghị định 168",
		Content:       content,
		TotalChunks:   1,
	}
}

func TestScoreChunk(t *testing.T) {
	scorer, analyzer := newTestScorer(t)

	t.Run("deterministic", func(t *testing.T) {
		c := chunk("c1", "Điều 6. Phạt tiền từ 4.000.000 đồng khi không chấp hành hiệu lệnh của đèn tín hiệu giao thông.")
		query := "vượt đèn đỏ phạt bao nhiêu"
		keywords := analyzer.ExtractKeywords(query)

		first := scorer.ScoreChunk(c, query, keywords)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, scorer.ScoreChunk(c, query, keywords))
		}
	})

	t.Run("cited article outranks vocabulary overlap", func(t *testing.T) {
		query := "Điều 6 Khoản 9 phạt bao nhiêu"
		keywords := analyzer.ExtractKeywords(query)

		cited := chunk("c1", "Điều 6 Khoản 9. Phạt tiền từ 4.000.000 đồng đến 6.000.000 đồng.")
		related := chunk("c2", "Người vi phạm bị phạt theo quy định về xử phạt hành chính.")

		assert.Greater(t, scorer.ScoreChunk(cited, query, keywords), scorer.ScoreChunk(related, query, keywords))
	})

	t.Run("red light query prefers signal provisions over overtaking", func(t *testing.T) {
		query := "vượt đèn đỏ bị phạt bao nhiêu"
		keywords := analyzer.ExtractKeywords(query)

		signal := chunk("c1", "Không chấp hành hiệu lệnh của đèn tín hiệu giao thông bị phạt tiền.")
		overtaking := chunk("c2", "Vượt xe không đúng quy định bị phạt tiền.")

		assert.Greater(t, scorer.ScoreChunk(signal, query, keywords), scorer.ScoreChunk(overtaking, query, keywords))
	})

	t.Run("unrelated chunk scores zero", func(t *testing.T) {
		c := chunk("c1", "zzz qqq www")
		assert.Equal(t, 0, scorer.ScoreChunk(c, "vượt đèn đỏ", nil))
	})
}

func TestRetrieve(t *testing.T) {
	scorer, analyzer := newTestScorer(t)

	query := "vượt đèn đỏ phạt bao nhiêu"
	keywords := analyzer.ExtractKeywords(query)

	chunks := []models.DocumentChunk{
		chunk("low", "Quy định chung về giao thông đường bộ."),
		chunk("zero", "zzz qqq www"),
		chunk("high", "Không chấp hành hiệu lệnh của đèn tín hiệu giao thông: phạt tiền từ 4.000.000 đồng. Điều 6."),
	}

	t.Run("sorted by score, zero discarded", func(t *testing.T) {
		result := scorer.Retrieve(chunks, query, keywords, 10)
		require.NotEmpty(t, result)
		assert.Equal(t, "high", result[0].ID)
		for _, c := range result {
			assert.NotEqual(t, "zero", c.ID)
		}
	})

	t.Run("truncates to maxChunks", func(t *testing.T) {
		result := scorer.Retrieve(chunks, query, keywords, 1)
		require.Len(t, result, 1)
		assert.Equal(t, "high", result[0].ID)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		same := []models.DocumentChunk{
			chunk("a", "đèn đỏ phạt tiền"),
			chunk("b", "đèn đỏ phạt tiền"),
		}
		result := scorer.Retrieve(same, query, keywords, 10)
		require.Len(t, result, 2)
		assert.Equal(t, "a", result[0].ID)
		assert.Equal(t, "b", result[1].ID)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, scorer.Retrieve(nil, query, keywords, 10))
	})
}
