package services

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledgeYAML []byte

// ViolationBundle injects a fixed keyword set when the query matches one
// of the trigger phrases, covering paraphrases the raw keyword list misses
// (red-light, alcohol, speed, helmet).
type ViolationBundle struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
	Keywords []string `yaml:"keywords"`
}

// Knowledge is the classification taxonomy: every tunable keyword,
// phrase, and pattern table used by the intent classifier, the keyword
// extractor, and the relevance scorer. It ships as an embedded YAML file
// and can be replaced without a rebuild via KNOWLEDGE_FILE.
type Knowledge struct {
	Greetings         []string            `yaml:"greetings"`
	PenaltyIndicators []string            `yaml:"penalty_indicators"`
	LegalIndicators   []string            `yaml:"legal_indicators"`
	CoreKeywords      []string            `yaml:"core_keywords"`
	TrafficKeywords   []string            `yaml:"traffic_keywords"`
	TrafficPhrases    []string            `yaml:"traffic_phrases"`
	FollowUpMarkers   []string            `yaml:"followup_markers"`
	TrafficPatterns   []string            `yaml:"traffic_patterns"`
	ViolationBundles  []ViolationBundle   `yaml:"violation_bundles"`
	SemanticPatterns  map[string][]string `yaml:"semantic_patterns"`

	compiledPatterns []*regexp.Regexp
}

// LoadKnowledge parses the embedded default taxonomy, or the file at
// path when non-empty. A broken override file is a startup error, not a
// silent fallback.
func LoadKnowledge(path string) (*Knowledge, error) {
	data := defaultKnowledgeYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read knowledge file %s: %w", path, err)
		}
		data = fileData
	}

	var k Knowledge
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge file: %w", err)
	}

	k.compiledPatterns = make([]*regexp.Regexp, 0, len(k.TrafficPatterns))
	for _, p := range k.TrafficPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid traffic pattern %q: %w", p, err)
		}
		k.compiledPatterns = append(k.compiledPatterns, re)
	}

	return &k, nil
}

// Patterns returns the compiled contextual traffic regexes.
func (k *Knowledge) Patterns() []*regexp.Regexp {
	return k.compiledPatterns
}
