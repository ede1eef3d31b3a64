package services

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// DocumentKeyword is one scored term from a legal document.
type DocumentKeyword struct {
	Word      string  `json:"word"`
	Frequency int     `json:"frequency"`
	Score     float64 `json:"score"`
	PosTag    string  `json:"pos_tag"`
}

var citationTermPattern = regexp.MustCompile(`(?i)(điều|khoản|nghị định|thông tư|quyết định|article|clause|decree)\s+\d+`)

// KeywordService surfaces the dominant legal terms of a document. Admins
// use it to sanity-check what an uploaded regulation will match on.
type KeywordService struct {
	stopWords      map[string]bool
	domainKeywords map[string]float64
	minLength      int
	maxResults     int
}

func NewKeywordService() *KeywordService {
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
		"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
		"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
		"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
		"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
		"this": true, "that": true, "these": true, "those": true, "it": true,
		"và": true, "hoặc": true, "của": true, "cho": true, "trong": true,
		"là": true, "các": true, "những": true, "được": true, "theo": true,
		"với": true, "về": true, "tại": true, "từ": true, "đến": true,
	}

	// Legal and traffic vocabulary outranks generic prose.
	domainKeywords := map[string]float64{
		"phạt": 2.5, "điều": 2.2, "khoản": 2.2, "điểm": 2.0,
		"vi phạm": 2.5, "nghị định": 2.2, "thông tư": 2.0,
		"giao thông": 2.0, "xe": 1.5, "tốc độ": 2.0, "đèn": 1.8,
		"đồng": 1.8, "triệu": 1.8, "penalty": 2.0, "fine": 2.0,
		"decree": 2.0, "article": 2.0, "violation": 2.0, "traffic": 1.8,
		"vehicle": 1.5, "speed": 1.8, "license": 1.8, "helmet": 1.8,
	}

	return &KeywordService{
		stopWords:      stopWords,
		domainKeywords: domainKeywords,
		minLength:      2,
		maxResults:     30,
	}
}

// ExtractDocumentKeywords tokenizes the document with POS tagging,
// scores terms by tag and domain weight, and adds regulation citations
// (Điều N, Nghị định N) as high-scoring compound terms.
func (s *KeywordService) ExtractDocumentKeywords(title, content string) ([]DocumentKeyword, error) {
	// Title terms count double.
	text := strings.Repeat(title+" ", 2) + " " + content

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	wordFreq := make(map[string]*DocumentKeyword)

	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if s.shouldSkipWord(word) {
			continue
		}

		score := s.calculateScore(tok.Tag)
		if boost, ok := s.domainKeywords[word]; ok {
			score *= boost
		}

		if existing, exists := wordFreq[word]; exists {
			existing.Frequency++
			existing.Score += score
		} else {
			wordFreq[word] = &DocumentKeyword{
				Word:      word,
				Frequency: 1,
				Score:     score,
				PosTag:    tok.Tag,
			}
		}
	}

	for _, ent := range doc.Entities() {
		word := strings.ToLower(ent.Text)
		if len([]rune(word)) >= s.minLength && !s.stopWords[word] {
			if existing, exists := wordFreq[word]; exists {
				existing.Score += 2.0
			} else {
				wordFreq[word] = &DocumentKeyword{
					Word:      word,
					Frequency: 1,
					Score:     2.0,
					PosTag:    "NE_" + ent.Label,
				}
			}
		}
	}

	// Citations are the strongest retrieval anchors for legal text.
	for _, citation := range citationTermPattern.FindAllString(strings.ToLower(text), -1) {
		if existing, exists := wordFreq[citation]; exists {
			existing.Frequency++
			existing.Score += 3.0
		} else {
			wordFreq[citation] = &DocumentKeyword{
				Word:      citation,
				Frequency: 1,
				Score:     3.0,
				PosTag:    "CITATION",
			}
		}
	}

	keywords := make([]DocumentKeyword, 0, len(wordFreq))
	for _, result := range wordFreq {
		result.Score = result.Score * float64(result.Frequency)
		keywords = append(keywords, *result)
	}

	sort.Slice(keywords, func(i, j int) bool {
		return keywords[i].Score > keywords[j].Score
	})

	if len(keywords) > s.maxResults {
		keywords = keywords[:s.maxResults]
	}
	return keywords, nil
}

func (s *KeywordService) shouldSkipWord(word string) bool {
	if len([]rune(word)) < s.minLength {
		return true
	}
	if s.stopWords[word] {
		return true
	}
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

func (s *KeywordService) calculateScore(posTag string) float64 {
	switch {
	case strings.HasPrefix(posTag, "NN"): // nouns
		return 1.5
	case strings.HasPrefix(posTag, "VB"): // verbs
		return 1.2
	case strings.HasPrefix(posTag, "JJ"): // adjectives
		return 1.0
	case strings.HasPrefix(posTag, "CD"): // numbers
		return 1.3
	default:
		return 0.5
	}
}
