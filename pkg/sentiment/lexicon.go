package sentiment

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"neuronook-server/pkg/errors"
)

// LexiconEngine scores text with a valence lexicon plus negation,
// intensifier and punctuation rules. The compound score lands in
// [-1.0, 1.0], negative for negative polarity.
type LexiconEngine struct {
	logger *logrus.Entry

	// Lexicon-based analysis
	positiveWords map[string]float64
	negativeWords map[string]float64
	intensifiers  map[string]float64
	negators      map[string]float64

	// Pattern-based analysis
	emotionPatterns  map[string]*regexp.Regexp
	punctuationRules map[string]float64

	// Text preprocessing
	contractions      map[string]string
	whitespacePattern *regexp.Regexp

	// Result cache, keyed by normalized text
	cacheMaxSize int
	scoreCache   map[string]float64
	mutex        sync.RWMutex
}

// NewLexiconEngine creates a lexicon-backed sentiment engine
func NewLexiconEngine(logger *logrus.Logger) *LexiconEngine {
	e := &LexiconEngine{
		logger:            logger.WithField("component", "sentiment_engine"),
		cacheMaxSize:      1000,
		scoreCache:        make(map[string]float64),
		whitespacePattern: regexp.MustCompile(`\s+`),
	}

	e.initializeLexicons()
	e.initializePatterns()

	return e
}

// Name returns the engine identifier
func (e *LexiconEngine) Name() string { return "lexicon" }

// Score computes the compound polarity of the text. Degenerate input
// (nothing scoreable after preprocessing) yields an error so the caller
// can apply its degraded-default policy.
func (e *LexiconEngine) Score(text string) (float64, error) {
	processed := e.preprocess(text)
	if processed == "" {
		return 0, errors.Wrap(errors.ErrSentimentEngineFailed, "no scoreable tokens in text")
	}

	if cached, exists := e.getCachedScore(processed); exists {
		return cached, nil
	}

	words := strings.Fields(processed)

	lexiconScore := e.calculateLexiconScore(words)
	patternScore := e.calculatePatternScore(text)
	punctuationScore := e.calculatePunctuationScore(text)

	// Combine scores with weights
	combined := lexiconScore*0.6 + patternScore*0.3 + punctuationScore*0.1

	// Squash into [-1, 1]
	score := math.Tanh(combined)

	e.cacheScore(processed, score)

	return score, nil
}

// calculateLexiconScore calculates sentiment score based on word lexicons
func (e *LexiconEngine) calculateLexiconScore(words []string) float64 {
	score := 0.0
	wordCount := 0
	modifier := 1.0

	for i, word := range words {
		lowerWord := strings.ToLower(word)

		// Negators flip sentiment for the following words
		if negValue, isNegator := e.negators[lowerWord]; isNegator {
			modifier = negValue
			continue
		}

		if intValue, isIntensifier := e.intensifiers[lowerWord]; isIntensifier {
			modifier *= intValue
			continue
		}

		if posValue, isPositive := e.positiveWords[lowerWord]; isPositive {
			score += posValue * modifier
			wordCount++
		} else if negValue, isNegative := e.negativeWords[lowerWord]; isNegative {
			score += negValue * modifier
			wordCount++
		}

		// Reset modifier after 3 words or at end of sentence
		if i > 0 && (i%3 == 0 || strings.ContainsAny(word, ".!?")) {
			modifier = 1.0
		}
	}

	if wordCount > 0 {
		return score / float64(wordCount)
	}
	return 0.0
}

// calculatePatternScore calculates sentiment based on emotion patterns
func (e *LexiconEngine) calculatePatternScore(text string) float64 {
	score := 0.0

	for emotion, pattern := range e.emotionPatterns {
		if pattern.MatchString(text) {
			switch emotion {
			case "joy", "love":
				score += 0.8
			case "sadness", "fear", "anger":
				score -= 0.8
			case "despair":
				score -= 0.9
			}
		}
	}

	return score
}

// calculatePunctuationScore calculates sentiment based on punctuation
func (e *LexiconEngine) calculatePunctuationScore(text string) float64 {
	score := 0.0

	for punct, value := range e.punctuationRules {
		count := strings.Count(text, punct)
		score += float64(count) * value
	}

	return score
}

func (e *LexiconEngine) preprocess(text string) string {
	processed := strings.ToLower(strings.TrimSpace(text))

	for contraction, expansion := range e.contractions {
		processed = strings.ReplaceAll(processed, contraction, expansion)
	}

	processed = e.whitespacePattern.ReplaceAllString(processed, " ")

	return strings.TrimSpace(processed)
}

func (e *LexiconEngine) getCachedScore(key string) (float64, bool) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	score, exists := e.scoreCache[key]
	return score, exists
}

func (e *LexiconEngine) cacheScore(key string, score float64) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if len(e.scoreCache) >= e.cacheMaxSize {
		// Evict a quarter of the cache (simplified LRU)
		count := 0
		target := e.cacheMaxSize / 4
		for k := range e.scoreCache {
			delete(e.scoreCache, k)
			count++
			if count >= target {
				break
			}
		}
	}

	e.scoreCache[key] = score
}

// initializeLexicons initializes the valence lexicons. The negative side
// leans into interview language: distress, fatigue and self-worth terms.
func (e *LexiconEngine) initializeLexicons() {
	e.positiveWords = map[string]float64{
		"good": 0.7, "great": 0.8, "better": 0.6, "fine": 0.4, "okay": 0.3,
		"happy": 0.8, "hopeful": 0.8, "calm": 0.6, "relieved": 0.7, "proud": 0.8,
		"love": 0.8, "like": 0.6, "enjoy": 0.7, "excited": 0.8, "grateful": 0.8,
		"improving": 0.7, "progress": 0.7, "supported": 0.7, "motivated": 0.7,
	}

	e.negativeWords = map[string]float64{
		"bad": -0.7, "terrible": -0.8, "awful": -0.9, "horrible": -0.9,
		"sad": -0.7, "depressed": -0.8, "hopeless": -0.9, "worthless": -0.9,
		"anxious": -0.7, "scared": -0.7, "afraid": -0.7, "worried": -0.6,
		"tired": -0.5, "exhausted": -0.7, "drained": -0.7, "numb": -0.7,
		"alone": -0.6, "lonely": -0.7, "ignored": -0.6, "abandoned": -0.8,
		"stuck": -0.6, "trapped": -0.8, "overwhelmed": -0.7, "useless": -0.8,
		"failure": -0.8, "broken": -0.7, "hate": -0.8, "crying": -0.7,
		"pointless": -0.8, "empty": -0.7, "stressed": -0.6, "panic": -0.8,
	}

	e.intensifiers = map[string]float64{
		"very": 1.3, "extremely": 1.5, "really": 1.2, "so": 1.2, "quite": 1.1,
		"absolutely": 1.4, "completely": 1.4, "totally": 1.4, "incredibly": 1.5,
		"always": 1.3, "constantly": 1.3,
	}

	e.negators = map[string]float64{
		"not": -1.0, "no": -1.0, "never": -1.0, "nothing": -1.0, "nobody": -1.0,
		"without": -0.8, "barely": -0.7, "hardly": -0.7, "scarcely": -0.7,
	}

	e.contractions = map[string]string{
		"don't": "do not", "won't": "will not", "can't": "cannot", "can’t": "cannot",
		"shouldn't": "should not", "wouldn't": "would not", "couldn't": "could not",
		"isn't": "is not", "aren't": "are not", "wasn't": "was not",
		"haven't": "have not", "hasn't": "has not", "doesn't": "does not",
		"i'm": "i am", "it's": "it is", "don’t": "do not", "doesn’t": "does not",
	}
}

// initializePatterns initializes emotion detection patterns
func (e *LexiconEngine) initializePatterns() {
	e.emotionPatterns = map[string]*regexp.Regexp{
		"joy":     regexp.MustCompile(`(?i)\b(haha|lol|laughing|smiling)\b`),
		"love":    regexp.MustCompile(`(?i)\b(love|adore|cherish)\b`),
		"sadness": regexp.MustCompile(`(?i)\b(sob|cry|crying|tears|tearful)\b`),
		"fear":    regexp.MustCompile(`(?i)\b(scared|afraid|terrified|panic|panicking)\b`),
		"anger":   regexp.MustCompile(`(?i)\b(angry|furious|rage|screaming)\b`),
		"despair": regexp.MustCompile(`(?i)\b(give up|giving up|no way out|rock bottom)\b`),
	}

	e.punctuationRules = map[string]float64{
		"!":   0.2,  // Exclamation adds intensity
		"...": -0.1, // Ellipsis slightly negative (trailing off)
		"…":   -0.1,
	}
}
