// Package estimator approximates token counts and the linguistic complexity of prompts.
package estimator

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Egham-7/site-context/internal/models"
	"github.com/Egham-7/site-context/internal/utils"
)

const (
	wordWeight        = 0.75
	punctuationWeight = 0.5
	numericWeight     = 0.3
	residualWeight    = 0.25
	charsPerToken     = 3.5

	whWindow        = 3
	longPromptWords = 40
	veryLongWords   = 80
)

var (
	whWords = map[string]struct{}{
		"what": {}, "when": {}, "where": {}, "who": {}, "how": {},
	}
	analyticalVerbs = map[string]struct{}{
		"analyze": {}, "analyse": {}, "compare": {}, "explain": {},
		"describe": {}, "evaluate": {}, "critique": {},
	}
	connectives = map[string]struct{}{
		"and": {}, "or": {}, "but": {}, "however": {},
		"therefore": {}, "moreover": {}, "furthermore": {},
	}

	sentenceBreak = regexp.MustCompile(`[.!?]+`)
)

// EstimateTokens approximates the token count of prompt and context combined.
// Non-empty text always yields at least 1.
func EstimateTokens(prompt, context string) int {
	text := utils.CollapseWhitespace(utils.StripMarkup(prompt) + " " + utils.StripMarkup(context))
	if text == "" {
		return 0
	}

	words := strings.Fields(text)
	var punctuation, numeric, residual int
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
		case unicode.IsPunct(r):
			punctuation++
		default:
			residual++
		}
	}
	for _, w := range words {
		if isNumeric(w) {
			numeric++
		}
	}

	weighted := math.Ceil(float64(len(words))*wordWeight +
		float64(punctuation)*punctuationWeight +
		float64(numeric)*numericWeight +
		float64(residual)*residualWeight)
	floor := math.Ceil(float64(utf8.RuneCountInString(text)) / charsPerToken)

	tokens := int(math.Max(weighted, floor))
	if tokens < 1 {
		return 1
	}
	return tokens
}

// AnalyzeComplexity buckets the prompt by question shape, analytical verbs,
// connectives, sentence count and length. The context argument does not
// influence the score.
func AnalyzeComplexity(prompt, _ string) models.Complexity {
	score := Score(prompt)
	switch {
	case score <= 2:
		return models.ComplexitySimple
	case score <= 5:
		return models.ComplexityMedium
	default:
		return models.ComplexityComplex
	}
}

// Score returns the raw complexity score of a prompt.
func Score(prompt string) int {
	words := normalizedWords(prompt)
	score := 1

	for i := 0; i < len(words) && i < whWindow; i++ {
		if _, ok := whWords[words[i]]; ok {
			score--
			break
		}
	}

	for _, w := range words {
		if _, ok := analyticalVerbs[w]; ok {
			score += 2
		}
		if _, ok := connectives[w]; ok {
			score++
		}
	}

	if sentences := countSentences(prompt); sentences > 1 {
		score += sentences - 1
	}

	if len(words) > longPromptWords {
		score += 2
	}
	if len(words) > veryLongWords {
		score++
	}

	return score
}

func normalizedWords(prompt string) []string {
	fields := strings.Fields(strings.ToLower(prompt))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func countSentences(prompt string) int {
	n := 0
	for _, part := range sentenceBreak.Split(prompt, -1) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

func isNumeric(word string) bool {
	word = strings.TrimFunc(word, unicode.IsPunct)
	if word == "" {
		return false
	}
	digits := 0
	for _, r := range word {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',':
		default:
			return false
		}
	}
	return digits > 0
}
