package subtitle

import (
	"strings"
)

// TextBuilder segments freeform text into fixed-size timed phrases.
type TextBuilder struct {
	WordsPerPhrase int
	SecondsPerWord float64
}

func NewTextBuilder() *TextBuilder {
	return &TextBuilder{
		WordsPerPhrase: 3,
		SecondsPerWord: 0.5,
	}
}

// FromText builds captions with the default heuristic.
func FromText(text string) (Sequence, float64, error) {
	return NewTextBuilder().Build(text)
}

// Build splits text on single spaces and returns the captions together
// with the estimated duration in seconds.
//
// Every phrase gets the duration of a full phrase, including a shorter
// trailing one, so the last caption can end after the estimate.
func (b *TextBuilder) Build(text string) (Sequence, float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, 0, ErrEmptyInput
	}

	words := strings.Split(text, " ")
	estimated := float64(len(words)) * b.SecondsPerWord
	wordsPerSecond := float64(len(words)) / estimated
	phraseDuration := float64(b.WordsPerPhrase) / wordsPerSecond

	seq := make(Sequence, 0, (len(words)+b.WordsPerPhrase-1)/b.WordsPerPhrase)
	current := 0.0

	for i := 0; i < len(words); i += b.WordsPerPhrase {
		end := i + b.WordsPerPhrase
		if end > len(words) {
			end = len(words)
		}

		seq = append(seq, Caption{
			ID:        len(seq) + 1,
			StartTime: current,
			EndTime:   current + phraseDuration,
			Text:      strings.Join(words[i:end], " "),
		})
		current += phraseDuration
	}

	return seq, estimated, nil
}
