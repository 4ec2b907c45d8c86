package jsonrepair

import (
	"encoding/json"
	"strings"
)

type tokenKind int

const (
	tokBeginObject tokenKind = iota
	tokEndObject
	tokBeginArray
	tokEndArray
	tokColon
	tokComma
	tokString
	tokLiteral
	// tokPlaceholder is a bare elision marker such as ... standing in for content.
	tokPlaceholder
)

type token struct {
	kind tokenKind
	text string
	end  int
	// closed is false for a string cut off by the end of input.
	closed bool
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	switch c {
	case '{', '}', '[', ']', ':', ',', '"':
		return true
	}
	return isSpace(c)
}

// tokenize scans s into JSON-ish tokens. Strings honour backslash escapes; anything
// outside strings that is not punctuation becomes a literal token.
func tokenize(s string) []token {
	var toks []token
	punct := map[byte]tokenKind{
		'{': tokBeginObject, '}': tokEndObject,
		'[': tokBeginArray, ']': tokEndArray,
		':': tokColon, ',': tokComma,
	}
	for i := 0; i < len(s); {
		c := s[i]
		if isSpace(c) {
			i++
			continue
		}
		if k, ok := punct[c]; ok {
			toks = append(toks, token{kind: k, text: s[i : i+1], end: i + 1, closed: true})
			i++
			continue
		}
		if c == '"' {
			j, closed := i+1, false
			for j < len(s) {
				if s[j] == '\\' {
					j += 2
					continue
				}
				if s[j] == '"' {
					closed = true
					j++
					break
				}
				j++
			}
			if j > len(s) {
				j = len(s)
			}
			toks = append(toks, token{kind: tokString, text: s[i:j], end: j, closed: closed})
			i = j
			continue
		}
		j := i
		for j < len(s) && !isDelimiter(s[j]) {
			j++
		}
		toks = append(toks, token{kind: tokLiteral, text: s[i:j], end: j, closed: true})
		i = j
	}
	return toks
}

// markPlaceholders tags bare elision markers, blanks quoted ones and maps Python-style
// literals onto their JSON spelling. Bare markers are resolved by rebalance, which knows
// whether they fill a member value or an array slot.
func markPlaceholders(toks []token) []token {
	for i := range toks {
		t := &toks[i]
		switch t.kind {
		case tokLiteral:
			if isEllipsis(t.text) {
				t.kind = tokPlaceholder
				continue
			}
			switch t.text {
			case "True":
				t.text = "true"
			case "False":
				t.text = "false"
			case "None", "NULL", "Null":
				t.text = "null"
			}
		case tokString:
			if t.closed && isEllipsis(t.text[1:len(t.text)-1]) {
				t.text = `""`
			}
		}
	}
	return toks
}

func isEllipsis(s string) bool {
	s = strings.TrimSpace(s)
	if s == "…" {
		return true
	}
	return len(s) >= 2 && strings.Trim(s, ".") == ""
}

// stringText returns a token's string literal with raw control characters escaped and
// a missing closing quote restored.
func stringText(t token) string {
	body := t.text[1:]
	if t.closed {
		body = body[:len(body)-1]
	} else if trailingBackslashes(body)%2 == 1 {
		body = body[:len(body)-1]
	}
	var b strings.Builder
	b.Grow(len(body) + 2)
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte("0123456789abcdef"[c>>4])
			b.WriteByte("0123456789abcdef"[c&0xf])
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func trailingBackslashes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n
}

// literalText keeps valid JSON scalars and quotes anything else, so an unquoted enum
// value such as NOT_MET survives as a string.
func literalText(lit string) string {
	if lit == "true" || lit == "false" || lit == "null" || isNumber(lit) {
		return lit
	}
	quoted, _ := json.Marshal(lit)
	return string(quoted)
}

func isNumber(s string) bool {
	var n json.Number
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		return false
	}
	return s != "" && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9'))
}
