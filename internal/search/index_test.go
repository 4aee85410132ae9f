package search

import (
	"testing"

	"github.com/tbourn/thoughts-chat/internal/domain"
)

func views(texts ...string) []domain.MessageView {
	out := make([]domain.MessageView, len(texts))
	for i, t := range texts {
		out[i] = domain.MessageView{Message: domain.Message{ID: int64(i + 1), Text: t}}
	}
	return out
}

func TestRank_EmptyInputs(t *testing.T) {
	msgs := views("buy milk")
	if got := Rank(nil, "milk", 3); got != nil {
		t.Fatalf("no messages = %v", got)
	}
	if got := Rank(msgs, "   ", 3); got != nil {
		t.Fatalf("blank query = %v", got)
	}
	if got := Rank(msgs, "?!", 3); got != nil {
		t.Fatalf("punctuation query = %v", got)
	}
	if got := Rank(msgs, "the", 3, WithStopwords([]string{" THE ", ""})); got != nil {
		t.Fatalf("stop-word query = %v", got)
	}
	if got := Rank(msgs, "eggs", 3); got != nil {
		t.Fatalf("no overlap = %v", got)
	}
}

func TestRank_ScoresAndOrder(t *testing.T) {
	msgs := views(
		"Buy milk and eggs",  // 1/4
		"milk",               // 1/1
		"remember the Milk!", // 1/3
		"call mom",
	)
	got := Rank(msgs, "MILK", 0)
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3 (%v)", len(got), got)
	}
	wantIDs := []int64{2, 3, 1}
	for i, r := range got {
		if r.Message.ID != wantIDs[i] {
			t.Fatalf("order = %v; want ids %v", got, wantIDs)
		}
	}
	if got[0].Score != 1 || got[2].Score != 0.25 {
		t.Fatalf("scores = %v, %v", got[0].Score, got[2].Score)
	}
}

func TestRank_TieBreaks(t *testing.T) {
	// Equal score and length: newer message first.
	msgs := views("milk", "milk", "milk2 x")
	got := Rank(msgs, "milk", 2)
	if len(got) != 2 || got[0].Message.ID != 2 || got[1].Message.ID != 1 {
		t.Fatalf("tie order = %+v", got)
	}
}

func TestRank_Options(t *testing.T) {
	msgs := views("the milk", "milk and the eggs")

	got := Rank(msgs, "the milk", 5, WithStopwords([]string{"the"}))
	if len(got) != 2 || got[0].Message.ID != 1 || got[0].Score != 1 {
		t.Fatalf("with stopwords = %+v", got)
	}

	got = Rank(msgs, "milk", 5, WithMinScore(0.5))
	if len(got) != 1 || got[0].Message.ID != 1 {
		t.Fatalf("with min score = %+v", got)
	}

	// Non-positive min score is ignored.
	if got = Rank(msgs, "milk", 5, WithMinScore(-1)); len(got) != 2 {
		t.Fatalf("negative min score = %+v", got)
	}
}

func TestTokenize_UnicodeAndDigits(t *testing.T) {
	toks := tokenize("Café room42 42 ÉTÉ", nil)
	for _, w := range []string{"café", "room42", "été"} {
		if _, ok := toks[w]; !ok {
			t.Fatalf("missing token %q in %v", w, toks)
		}
	}
	if _, ok := toks["42"]; ok {
		t.Fatalf("bare digits should not be a token: %v", toks)
	}
}
