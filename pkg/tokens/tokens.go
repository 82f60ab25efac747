package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Encoder is the subset of *tiktoken.Tiktoken used here.
type Encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Budget trims text to a token budget. A non-positive limit disables
// trimming. When the BPE tables cannot be loaded, counts fall back to
// an estimate of four bytes per token.
type Budget struct {
	limit int

	once sync.Once
	enc  Encoder
	load func() (Encoder, error)
}

func NewBudget(limit int) *Budget {
	return &Budget{
		limit: limit,
		load: func() (Encoder, error) {
			return tiktoken.GetEncoding(encodingName)
		},
	}
}

// NewBudgetWithEncoder uses enc instead of loading the tiktoken tables.
func NewBudgetWithEncoder(limit int, enc Encoder) *Budget {
	b := &Budget{limit: limit, enc: enc}
	b.once.Do(func() {})
	return b
}

func (b *Budget) Limit() int {
	return b.limit
}

func (b *Budget) encoder() Encoder {
	b.once.Do(func() {
		if b.load == nil {
			return
		}
		enc, err := b.load()
		if err == nil {
			b.enc = enc
		}
	})
	return b.enc
}

// Count returns the number of tokens in text.
func (b *Budget) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := b.encoder(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

// KeepHead returns the leading part of text that fits the budget.
func (b *Budget) KeepHead(text string) string {
	if b.limit <= 0 || text == "" {
		return text
	}
	enc := b.encoder()
	if enc == nil {
		return headBytes(text, b.limit*4)
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= b.limit {
		return text
	}
	return enc.Decode(ids[:b.limit])
}

// KeepTail returns the trailing part of text that fits the budget.
// Prompt context is ordered oldest first, so the tail is the recent part.
func (b *Budget) KeepTail(text string) string {
	if b.limit <= 0 || text == "" {
		return text
	}
	enc := b.encoder()
	if enc == nil {
		return tailBytes(text, b.limit*4)
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= b.limit {
		return text
	}
	return enc.Decode(ids[len(ids)-b.limit:])
}

// headBytes cuts at a rune boundary at or before n bytes.
func headBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func tailBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !isRuneStart(s[start]) {
		start++
	}
	return s[start:]
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}
