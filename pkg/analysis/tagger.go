package analysis

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// TagResult is the outcome of tagging one segment's text
type TagResult struct {
	// SymptomTags and ThemeTags follow the vocabulary's stable order
	SymptomTags []string
	ThemeTags   []string

	// MatchCounts holds raw trigger hits per tagged label
	MatchCounts map[string]int

	// FillerCount is the number of filler-word hits
	FillerCount int
}

// Tagger matches segment text against the closed symptom and theme
// vocabularies. Matching is case-insensitive whole-word: trigger phrases
// only match at word boundaries, so "ADHD" inside a longer token does
// not fire. Identical text always yields identical tags.
type Tagger struct {
	logger *logrus.Entry

	symptomPatterns map[string][]*regexp.Regexp
	themePatterns   map[string][]*regexp.Regexp
	fillerPatterns  []*regexp.Regexp
}

// NewTagger creates a tagger over the default vocabularies
func NewTagger(logger *logrus.Logger) *Tagger {
	return NewTaggerWithTriggers(logger, DefaultSymptomTriggers, DefaultThemeTriggers, DefaultFillerTriggers)
}

// NewTaggerWithTriggers creates a tagger with custom trigger phrases.
// Labels must still come from the closed vocabularies.
func NewTaggerWithTriggers(logger *logrus.Logger, symptoms, themes map[string][]string, fillers []string) *Tagger {
	t := &Tagger{
		logger:          logger.WithField("component", "keyword_tagger"),
		symptomPatterns: make(map[string][]*regexp.Regexp, len(symptoms)),
		themePatterns:   make(map[string][]*regexp.Regexp, len(themes)),
	}

	for label, phrases := range symptoms {
		t.symptomPatterns[label] = compilePhrases(phrases)
	}
	for label, phrases := range themes {
		t.themePatterns[label] = compilePhrases(phrases)
	}
	t.fillerPatterns = compilePhrases(fillers)

	total := 0
	for _, patterns := range t.symptomPatterns {
		total += len(patterns)
	}
	for _, patterns := range t.themePatterns {
		total += len(patterns)
	}
	t.logger.WithFields(logrus.Fields{
		"symptom_labels":  len(t.symptomPatterns),
		"theme_labels":    len(t.themePatterns),
		"trigger_phrases": total,
	}).Debug("Keyword tagger initialized")

	return t
}

// Tag matches the text against both vocabularies. A label is tagged when
// at least one of its trigger phrases matches; labels are non-exclusive.
func (t *Tagger) Tag(text string) TagResult {
	normalized := normalizeApostrophes(text)

	result := TagResult{
		SymptomTags: []string{},
		ThemeTags:   []string{},
		MatchCounts: make(map[string]int),
	}

	// Iterate in vocabulary order so tag slices are deterministic
	for _, label := range SymptomLabels {
		if hits := countMatches(t.symptomPatterns[label], normalized); hits > 0 {
			result.SymptomTags = append(result.SymptomTags, label)
			result.MatchCounts[label] = hits
		}
	}
	for _, label := range ThemeLabels {
		if hits := countMatches(t.themePatterns[label], normalized); hits > 0 {
			result.ThemeTags = append(result.ThemeTags, label)
			result.MatchCounts[label] = hits
		}
	}

	result.FillerCount = countMatches(t.fillerPatterns, normalized)

	return result
}

// countMatches sums the whole-word occurrences of every pattern in the text
func countMatches(patterns []*regexp.Regexp, text string) int {
	hits := 0
	for _, pattern := range patterns {
		hits += len(pattern.FindAllStringIndex(text, -1))
	}
	return hits
}

// compilePhrases builds case-insensitive whole-word patterns. Multi-word
// phrases match across any run of whitespace.
func compilePhrases(phrases []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(phrases))
	for _, phrase := range phrases {
		phrase = normalizeApostrophes(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}

		words := strings.Fields(phrase)
		for i, word := range words {
			words[i] = regexp.QuoteMeta(word)
		}

		expr := `(?i)\b` + strings.Join(words, `\s+`) + `\b`
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return patterns
}

// normalizeApostrophes folds typographic apostrophes so "can’t" and
// "can't" match the same trigger
func normalizeApostrophes(s string) string {
	return strings.ReplaceAll(s, "’", "'")
}
