package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Token is a year or state code as supplied by a caller: either an integer or
// a decimal string. Int is the only way to get at the value, so every caller
// goes through the same parse-or-fail normalization.
type Token struct {
	num    int
	text   string
	isText bool
}

// Num wraps an integer.
func Num(n int) Token {
	return Token{num: n}
}

// Text wraps a decimal string such as "2013".
func Text(s string) Token {
	return Token{text: s, isText: true}
}

// Int normalizes the token. Text is trimmed and parsed as a base-10 integer.
func (t Token) Int() (int, error) {
	if !t.isText {
		return t.num, nil
	}
	s := strings.TrimSpace(t.text)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidToken, t.text)
	}
	return n, nil
}

// String returns the token as the caller supplied it.
func (t Token) String() string {
	if t.isText {
		return t.text
	}
	return strconv.Itoa(t.num)
}

// Filename normalizes the token and derives the archive filename for it.
func (t Token) Filename() (string, error) {
	year, err := t.Int()
	if err != nil {
		return "", err
	}
	return MakeFilename(year), nil
}

// UnmarshalJSON accepts both 2013 and "2013".
func (t *Token) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Num(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidToken, data)
	}
	*t = Text(s)
	return nil
}

// ParseTokens splits a comma-separated list such as "2013,2014" into text
// tokens. Empty elements are dropped.
func ParseTokens(list string) []Token {
	parts := strings.Split(list, ",")
	tokens := make([]Token, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tokens = append(tokens, Text(p))
	}
	return tokens
}
