package embed

import (
	"strings"
	"unicode"

	"github.com/sandevgo/chatgate/pkg/tokens"
)

var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '．': true, '…': true,
}

// ChunkText packs sentences into chunks of at most budget.Limit() tokens.
// A sentence longer than the budget is cut to fit.
func ChunkText(text string, budget *tokens.Budget) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if budget.Limit() <= 0 || budget.Count(text) <= budget.Limit() {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentTokens = 0
		}
	}

	for _, sentence := range splitSentences(text) {
		n := budget.Count(sentence)

		if n > budget.Limit() {
			flush()
			chunks = append(chunks, strings.TrimSpace(budget.KeepHead(sentence)))
			continue
		}

		if currentTokens+n > budget.Limit() {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		currentTokens += n
	}
	flush()

	return chunks
}

// splitSentences splits paragraphs at sentence-ending punctuation that is
// followed by whitespace, the end of the text, or a CJK character.
func splitSentences(text string) []string {
	var sentences []string

	for _, para := range splitParagraphs(text) {
		var current strings.Builder
		runes := []rune(para)

		for i, r := range runes {
			current.WriteRune(r)

			if sentenceEnders[r] {
				if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) || isCJK(runes[i+1]) {
					if s := strings.TrimSpace(current.String()); s != "" {
						sentences = append(sentences, s)
					}
					current.Reset()
				}
			}
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 && text != "" {
		return []string{text}
	}
	return sentences
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")

	var result []string
	for _, p := range parts {
		// soft wraps
		p = strings.ReplaceAll(p, "\n", " ")
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
