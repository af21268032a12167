// Package prompt builds the target text of a typing test.
package prompt

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/keysprint/internal/model"
)

const (
	minSentenceWords = 4
	maxSentenceWords = 12
	commaPct         = 0.15
)

var sentenceEnds = []rune{'.', '.', '.', '.', '!', '?'}

// Decoration adds capitals and punctuation to sampled words.
type Decoration struct {
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Weighting biases word sampling toward words containing weak characters.
type Weighting struct {
	Weak   map[rune]struct{}
	Factor float64
}

func (w Weighting) active() bool {
	return len(w.Weak) > 0 && w.Factor > 0
}

// Generator produces randomized typing text.
type Generator struct {
	rnd        *rand.Rand
	decoration Decoration
	weighting  Weighting
}

// New returns a Generator drawing from rnd.
func New(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// NewSeeded returns a Generator seeded with the current time.
func NewSeeded() *Generator {
	return New(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// SetDecoration configures caps and punctuation for the words policy.
func (g *Generator) SetDecoration(d Decoration) {
	g.decoration = d
}

// SetWeighting configures weak-character sampling. A zero value disables it.
func (g *Generator) SetWeighting(w Weighting) {
	g.weighting = w
}

// Generate builds a prompt for the given policy.
func (g *Generator) Generate(policy model.Policy, parameter int, pool []string, customText string) (model.Prompt, error) {
	switch policy {
	case model.PolicyCustom:
		if customText == "" {
			return model.Prompt{}, &model.ConfigError{Field: "prompt", Reason: "must not be empty"}
		}
		return model.Prompt{
			Text:   customText,
			Policy: model.PolicyCustom,
			Words:  len(strings.Fields(customText)),
		}, nil
	case model.PolicySentences:
		if err := checkSampling(parameter, pool, "sentences"); err != nil {
			return model.Prompt{}, err
		}
		sentences := g.Sentences(pool, parameter)
		text := strings.Join(sentences, " ")
		return model.Prompt{
			Text:   text,
			Policy: model.PolicySentences,
			Words:  len(strings.Fields(text)),
		}, nil
	default:
		if err := checkSampling(parameter, pool, "words"); err != nil {
			return model.Prompt{}, err
		}
		var words []string
		if g.weighting.active() {
			words = g.GenerateWeighted(pool, parameter)
		} else {
			words = g.Words(pool, parameter)
		}
		return model.Prompt{
			Text:   strings.Join(words, " "),
			Policy: model.PolicyWords,
			Words:  len(words),
		}, nil
	}
}

func checkSampling(parameter int, pool []string, field string) error {
	if len(pool) == 0 {
		return &model.ConfigError{Field: "lang", Reason: "word pool is empty"}
	}
	if parameter <= 0 {
		return &model.ConfigError{Field: field, Reason: "must be > 0"}
	}
	return nil
}

// Words selects words uniformly and applies caps/punctuation rules.
func (g *Generator) Words(pool []string, count int) []string {
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := pool[g.rnd.Intn(len(pool))]
		result = append(result, g.decorate(word))
	}
	return result
}

// GenerateWeighted selects words with a bias toward weak characters.
func (g *Generator) GenerateWeighted(pool []string, count int) []string {
	weights := make([]float64, len(pool))
	total := 0.0
	for i, word := range pool {
		weakCount := 0
		for _, r := range word {
			if _, ok := g.weighting.Weak[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*g.weighting.Factor
		weights[i] = w
		total += w
	}

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := len(pool) - 1
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		result = append(result, g.decorate(pool[idx]))
	}
	return result
}

// Sentences builds count sentences of sampled words. Each sentence starts
// with a capital letter and ends with terminal punctuation.
func (g *Generator) Sentences(pool []string, count int) []string {
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		n := minSentenceWords + g.rnd.Intn(maxSentenceWords-minSentenceWords+1)
		words := make([]string, 0, n)
		for j := 0; j < n; j++ {
			word := pool[g.rnd.Intn(len(pool))]
			if j > 0 && j < n-1 && g.rnd.Float64() < commaPct {
				word += ","
			}
			words = append(words, word)
		}
		words[0] = capitalize(words[0])
		end := sentenceEnds[g.rnd.Intn(len(sentenceEnds))]
		words[n-1] = strings.TrimSuffix(words[n-1], ",") + string(end)
		result = append(result, strings.Join(words, " "))
	}
	return result
}

func (g *Generator) decorate(word string) string {
	word = applyCaps(g.rnd, word, g.decoration.CapsPct)
	return applyPunct(g.rnd, word, g.decoration.PunctPct, g.decoration.PunctSet)
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	return capitalize(word)
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
