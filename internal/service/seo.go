// Package service holds the SEO analysis logic and the AI keyword client.
package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// metaDescriptionLimit is the conventional search-snippet length.
const metaDescriptionLimit = 160

// Analysis is the result of analyzing one article. ReadabilityScore is a
// Flesch reading-ease value clamped to [0,100]; KeywordDensity maps each
// tracked keyword to its percentage of the article's words.
type Analysis struct {
	ReadabilityScore float64
	KeywordDensity   map[string]float64
	MetaDescription  string
	Suggestions      []string
}

// AnalyzeSEO computes readability, keyword density, a meta description and
// improvement suggestions for an article. Pure function, safe under
// concurrent calls.
func AnalyzeSEO(title, content string, keywords []string) Analysis {
	words := splitWords(content)
	wordCount := len(words)
	sentenceCount := countSentences(content)
	syllableCount := 0
	for _, w := range words {
		syllableCount += countSyllables(w)
	}

	readability := 100.0
	if wordCount > 0 && sentenceCount > 0 {
		readability = 206.835 -
			1.015*(float64(wordCount)/float64(sentenceCount)) -
			84.6*(float64(syllableCount)/float64(wordCount))
	}
	readability = math.Max(0, math.Min(100, readability))

	normalized := " " + strings.Join(words, " ") + " "
	density := make(map[string]float64, len(keywords))
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		occurrences := strings.Count(normalized, " "+k+" ")
		pct := 0.0
		if wordCount > 0 {
			pct = float64(occurrences) / float64(wordCount) * 100
		}
		density[k] = math.Round(pct*100) / 100
	}

	return Analysis{
		ReadabilityScore: math.Round(readability*100) / 100,
		KeywordDensity:   density,
		MetaDescription:  metaDescription(content),
		Suggestions:      suggestions(title, wordCount, readability, density),
	}
}

func suggestions(title string, wordCount int, readability float64, density map[string]float64) []string {
	out := make([]string, 0, 4)
	if n := len([]rune(title)); n > 60 {
		out = append(out, fmt.Sprintf("Title is %d characters; keep it under 60 for full display in search results", n))
	}
	if wordCount < 300 {
		out = append(out, "Content is under 300 words; longer articles tend to rank better")
	}
	if readability < 50 {
		out = append(out, "Readability is low; shorten sentences and prefer simpler words")
	}
	// Deterministic order for the per-keyword advice.
	kws := make([]string, 0, len(density))
	for k := range density {
		kws = append(kws, k)
	}
	sort.Strings(kws)
	for _, k := range kws {
		switch d := density[k]; {
		case d == 0:
			out = append(out, fmt.Sprintf("Keyword %q does not appear in the content", k))
		case d > 3:
			out = append(out, fmt.Sprintf("Keyword %q density is %.2f%%; above 3%% reads as keyword stuffing", k, d))
		}
	}
	return out
}

// metaDescription takes the first sentence, clipped to the snippet limit.
func metaDescription(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	first := content
	if idx := strings.IndexAny(content, ".!?"); idx >= 0 {
		first = content[:idx+1]
	}
	first = strings.Join(strings.Fields(first), " ")
	runes := []rune(first)
	if len(runes) <= metaDescriptionLimit {
		return first
	}
	return string(runes[:metaDescriptionLimit-3]) + "..."
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

func countSentences(s string) int {
	n := 0
	inTerminator := false
	for _, r := range s {
		if r == '.' || r == '!' || r == '?' {
			if !inTerminator {
				n++
			}
			inTerminator = true
		} else {
			inTerminator = false
		}
	}
	if n == 0 && strings.TrimSpace(s) != "" {
		n = 1
	}
	return n
}

// countSyllables approximates syllables by counting vowel groups. Good
// enough for a relative readability score.
func countSyllables(word string) int {
	n := 0
	prevVowel := false
	for _, r := range word {
		v := strings.ContainsRune("aeiouy", r)
		if v && !prevVowel {
			n++
		}
		prevVowel = v
	}
	if strings.HasSuffix(word, "e") && n > 1 {
		n--
	}
	if n == 0 {
		n = 1
	}
	return n
}
