// Package text provides the character-level tokenizer used to turn corpus
// transcriptions into token ids.
package text

import (
	"bufio"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Reserved token ids.
const (
	PadID = 0
	EOSID = 1
	UnkID = 2
)

var reserved = []string{"<pad>", "<eos>", "<unk>"}

// CharacterEncoder maps every rune of a transcription to an id from a fixed
// vocabulary and terminates the sequence with EOSID.
type CharacterEncoder struct {
	symbols []string
	ids     map[rune]int
}

// NewCharacterEncoder builds an encoder for the given symbols. Each symbol
// must be a single rune; ids start right after the reserved tokens.
func NewCharacterEncoder(symbols []string) (*CharacterEncoder, error) {
	e := &CharacterEncoder{
		symbols: append(append([]string{}, reserved...), symbols...),
		ids:     make(map[rune]int, len(symbols)),
	}
	for i, s := range symbols {
		if utf8.RuneCountInString(s) != 1 {
			return nil, errors.Errorf("vocab symbol %q at line %d is not a single character", s, i+1)
		}
		r, _ := utf8.DecodeRuneInString(s)
		if _, dup := e.ids[r]; dup {
			return nil, errors.Errorf("duplicate vocab symbol %q", s)
		}
		e.ids[r] = len(reserved) + i
	}
	return e, nil
}

// LoadCharacterVocab reads one symbol per line from path. A line holding a
// single space is kept, so word boundaries can be part of the vocabulary.
func LoadCharacterVocab(path string) (*CharacterEncoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open vocab")
	}
	defer f.Close()

	var symbols []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read vocab %s", path)
	}
	return NewCharacterEncoder(symbols)
}

// VocabSize returns the number of ids, reserved tokens included.
func (e *CharacterEncoder) VocabSize() int { return len(e.symbols) }

// Encode implements corpus.Tokenizer.
func (e *CharacterEncoder) Encode(text string) []int {
	ids := make([]int, 0, utf8.RuneCountInString(text)+1)
	for _, r := range text {
		id, ok := e.ids[r]
		if !ok {
			id = UnkID
		}
		ids = append(ids, id)
	}
	return append(ids, EOSID)
}

// Decode turns ids back into text. It stops at the first EOSID and drops
// padding.
func (e *CharacterEncoder) Decode(ids []int) string {
	var sb strings.Builder
	for _, id := range ids {
		switch {
		case id == EOSID:
			return sb.String()
		case id == PadID:
			continue
		case id < 0 || id >= len(e.symbols):
			sb.WriteString(reserved[UnkID])
		default:
			sb.WriteString(e.symbols[id])
		}
	}
	return sb.String()
}
