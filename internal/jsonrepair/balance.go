package jsonrepair

import (
	"encoding/json"
	"strings"
)

type frameState int

const (
	expectKey frameState = iota
	expectColon
	expectValue
	afterValue
)

type frame struct {
	object bool
	state  frameState
}

// rebalance re-emits the token stream as structurally valid JSON. It stops once the
// root object closes and reports how many tokens the root consumed, or false when the
// stream cannot be made sensible.
func rebalance(toks []token) (string, int, bool) {
	var (
		b            strings.Builder
		stack        []*frame
		pendingComma bool
	)

	closeFrame := func(f *frame) {
		pendingComma = false
		if f.object {
			switch f.state {
			case expectColon:
				b.WriteString(":null")
			case expectValue:
				b.WriteString("null")
			}
			b.WriteByte('}')
			return
		}
		b.WriteByte(']')
	}

	writeValue := func(t token) {
		if pendingComma {
			b.WriteByte(',')
			pendingComma = false
		}
		switch t.kind {
		case tokString:
			b.WriteString(stringText(t))
		case tokLiteral:
			b.WriteString(literalText(t.text))
		case tokBeginObject:
			b.WriteByte('{')
			stack = append(stack, &frame{object: true, state: expectKey})
		case tokBeginArray:
			b.WriteByte('[')
			stack = append(stack, &frame{state: expectValue})
		}
	}

	writeKey := func(top *frame, t token) bool {
		switch t.kind {
		case tokString:
			if pendingComma {
				b.WriteByte(',')
				pendingComma = false
			}
			b.WriteString(stringText(t))
		case tokLiteral:
			if pendingComma {
				b.WriteByte(',')
				pendingComma = false
			}
			quoted, _ := json.Marshal(t.text)
			b.Write(quoted)
		default:
			return false
		}
		top.state = expectColon
		return true
	}

	consumed := len(toks)
	for i, t := range toks {
		if i == 0 {
			if t.kind != tokBeginObject {
				return "", 0, false
			}
			writeValue(t)
			continue
		}
		if len(stack) == 0 {
			consumed = i
			break
		}
		top := stack[len(stack)-1]

		switch t.kind {
		case tokString, tokLiteral, tokBeginObject, tokBeginArray:
			if top.object {
				switch top.state {
				case expectKey:
					if !writeKey(top, t) {
						return "", 0, false
					}
					continue
				case afterValue:
					// Missing comma between members.
					pendingComma = true
					top.state = expectKey
					if !writeKey(top, t) {
						return "", 0, false
					}
					continue
				case expectColon:
					b.WriteByte(':')
				}
			} else if top.state == afterValue {
				pendingComma = true
			}
			top.state = afterValue
			writeValue(t)

		case tokColon:
			if top.object && top.state == expectColon {
				b.WriteByte(':')
				top.state = expectValue
			}

		case tokPlaceholder:
			// An elided member value becomes null; elided array items are dropped.
			if top.object && (top.state == expectColon || top.state == expectValue) {
				if top.state == expectColon {
					b.WriteByte(':')
				}
				b.WriteString("null")
				top.state = afterValue
			}

		case tokComma:
			switch {
			case top.state == afterValue:
			case top.object && top.state == expectColon:
				b.WriteString(":null")
			case top.object && top.state == expectValue:
				b.WriteString("null")
			default:
				continue
			}
			pendingComma = true
			if top.object {
				top.state = expectKey
			} else {
				top.state = expectValue
			}

		case tokEndObject, tokEndArray:
			wantObject := t.kind == tokEndObject
			match := -1
			for j := len(stack) - 1; j >= 0; j-- {
				if stack[j].object == wantObject {
					match = j
					break
				}
			}
			if match < 0 {
				continue
			}
			for len(stack) > match {
				closeFrame(stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
		}
	}

	for len(stack) > 0 {
		closeFrame(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return b.String(), consumed, true
}
