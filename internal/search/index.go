// Package search ranks chat messages against a free-text query.
//
// Scoring is Jaccard similarity between the query token set and each
// message's token set: score = |Q ∩ M| / |Q ∪ M|. Tokens are lowercased
// letter runs with optional trailing digits; an optional stop-word list is
// removed from both sides. Ties favour shorter texts, then newer messages.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tbourn/thoughts-chat/internal/domain"
)

// DefaultK is the result count used when the caller passes k <= 0.
const DefaultK = 10

// Result is a ranked message with its similarity score.
type Result struct {
	Message domain.MessageView `json:"message"`
	Score   float64            `json:"score"`
}

// Option tunes ranking.
type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	minScore  float64
}

// WithStopwords drops the given words from queries and messages.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMinScore discards results scoring below s.
func WithMinScore(s float64) Option {
	return func(c *config) {
		if s > 0 {
			c.minScore = s
		}
	}
}

// Rank returns up to k messages matching query, best first. A blank query,
// or one made only of stop words, matches nothing.
func Rank(msgs []domain.MessageView, query string, k int, opts ...Option) []Result {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if len(msgs) == 0 || strings.TrimSpace(query) == "" {
		return nil
	}
	if k <= 0 {
		k = DefaultK
	}
	q := tokenize(query, cfg.stopwords)
	if len(q) == 0 {
		return nil
	}

	type scored struct {
		idx      int
		score    float64
		lenRunes int
	}
	buf := make([]scored, 0, min(k*4, len(msgs)))
	for i := range msgs {
		toks := tokenize(msgs[i].Text, cfg.stopwords)
		over := overlap(q, toks)
		if over == 0 {
			continue
		}
		score := float64(over) / float64(len(q)+len(toks)-over)
		if score < cfg.minScore {
			continue
		}
		buf = append(buf, scored{idx: i, score: score, lenRunes: utf8.RuneCountInString(msgs[i].Text)})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return msgs[buf[a].idx].ID > msgs[buf[b].idx].ID
	})

	k = min(k, len(buf))
	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = Result{Message: msgs[buf[i].idx], Score: buf[i].score}
	}
	return out
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
