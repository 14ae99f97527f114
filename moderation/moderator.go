package moderation

import (
	"fmt"
	"log/slog"
	"room-relay/errors"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks forbidden words in chat text.
// Matching is done on a folded copy of the text (lower case, leet speak
// mapped back to letters, punctuation and spaces dropped) while masking is
// applied to the original runes, so "B.4.d" is masked as a whole.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

type foldedText struct {
	runes   []rune
	origIdx []int
}

// NewModerator builds the automaton from the folded words.
// Words that fold to nothing are ignored; ErrEmptyWords is returned when none is left.
func NewModerator(words []string, replacement rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		folded := fold([]rune(word)).runes
		if len(folded) == 0 {
			log.Debug("Ignoring censored word without letters", "word", word)
			continue
		}
		patterns = append(patterns, folded)
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, fmt.Errorf("build moderation automaton: %w", err)
	}
	return &Moderator{matcher: machine, replacement: replacement, log: log}, nil
}

// Censor returns the masked text and the folded words that were found, in order.
func (m *Moderator) Censor(text string) (string, []string) {
	folded := fold([]rune(text))
	if len(folded.runes) == 0 {
		return text, nil
	}
	terms := m.matcher.MultiPatternSearch(folded.runes, false)
	if len(terms) == 0 {
		return text, nil
	}

	runes := []rune(text)
	var found []string
	for _, term := range terms {
		start, end := term.Pos, term.Pos+len(term.Word)
		if start < 0 || end > len(folded.origIdx) {
			continue
		}
		for i := folded.origIdx[start]; i <= folded.origIdx[end-1]; i++ {
			runes[i] = m.replacement
		}
		found = append(found, string(term.Word))
	}
	m.log.Debug("Message censored", "words", found)
	return string(runes), found
}

func fold(input []rune) foldedText {
	out := foldedText{
		runes:   make([]rune, 0, len(input)),
		origIdx: make([]int, 0, len(input)),
	}
	for i, r := range input {
		clean := unleet(r)
		if isNoise(clean) {
			continue
		}
		out.runes = append(out.runes, unicode.ToLower(clean))
		out.origIdx = append(out.origIdx, i)
	}
	return out
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
