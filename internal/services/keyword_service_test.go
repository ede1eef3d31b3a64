package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDocumentKeywords(t *testing.T) {
	service := NewKeywordService()

	t.Run("citations become compound terms", func(t *testing.T) {
		keywords, err := service.ExtractDocumentKeywords(
			"Decree 168",
			"Article 6 and Clause 9 of Decree 168 set the penalty for traffic violations.",
		)
		require.NoError(t, err)

		byWord := make(map[string]DocumentKeyword)
		for _, kw := range keywords {
			byWord[kw.Word] = kw
		}

		require.Contains(t, byWord, "decree 168")
		assert.Equal(t, "CITATION", byWord["decree 168"].PosTag)
		assert.Contains(t, byWord, "article 6")
		assert.Contains(t, byWord, "clause 9")
	})

	t.Run("stop words and short tokens excluded", func(t *testing.T) {
		keywords, err := service.ExtractDocumentKeywords(
			"Traffic penalties",
			"The penalty for the violation is a fine and it should be paid.",
		)
		require.NoError(t, err)

		for _, kw := range keywords {
			assert.NotEqual(t, "the", kw.Word)
			assert.NotEqual(t, "is", kw.Word)
			assert.NotEqual(t, "a", kw.Word)
			assert.GreaterOrEqual(t, len([]rune(kw.Word)), 2)
		}
	})

	t.Run("domain vocabulary outranks generic prose", func(t *testing.T) {
		keywords, err := service.ExtractDocumentKeywords(
			"Regulations",
			"The penalty applies whenever a vehicle exceeds the speed limit on any ordinary street corner.",
		)
		require.NoError(t, err)

		rank := func(word string) int {
			for i, kw := range keywords {
				if kw.Word == word {
					return i
				}
			}
			return len(keywords)
		}
		assert.Less(t, rank("penalty"), rank("corner"))
	})

	t.Run("repeated terms accumulate frequency", func(t *testing.T) {
		keywords, err := service.ExtractDocumentKeywords(
			"Fines",
			"Fine for speeding. Fine for parking. Fine for overloading.",
		)
		require.NoError(t, err)

		for _, kw := range keywords {
			if kw.Word == "fine" {
				assert.Equal(t, 3, kw.Frequency)
				return
			}
		}
		t.Fatal("expected keyword 'fine' in results")
	})

	t.Run("result count capped", func(t *testing.T) {
		long := ""
		words := []string{
			"penalty", "vehicle", "speed", "license", "helmet", "traffic", "decree",
			"article", "violation", "fine", "motorbike", "highway", "intersection",
			"signal", "lane", "crossing", "pedestrian", "registration", "insurance",
			"inspection", "alcohol", "concentration", "overtaking", "parking",
			"loading", "passenger", "driver", "roadway", "barrier", "curfew",
			"permit", "tonnage", "freight", "axle", "emission",
		}
		for _, w := range words {
			long += w + " regulation. "
		}

		keywords, err := service.ExtractDocumentKeywords("Big document", long)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(keywords), 30)
	})
}
