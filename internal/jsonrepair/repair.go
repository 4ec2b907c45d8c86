// Package jsonrepair recovers a JSON object from free-form model output.
//
// Recovery runs as ordered passes over a character scan:
//
//  1. strip framing noise (reasoning blocks, markdown fences) and locate the payload start
//  2. tokenize and mark placeholder tokens; an elided member value becomes null
//  3. rebalance the token stream: insert or drop separators, close dangling strings,
//     objects and arrays, discard stray closers
//  4. validate the result
//
// Well-formed input is returned untouched.
package jsonrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoPayload is returned when the text contains no '{' at all.
	ErrNoPayload = errors.New("jsonrepair: no JSON object found")
	// ErrUnrepairable is returned when no candidate could be turned into valid JSON.
	ErrUnrepairable = errors.New("jsonrepair: payload could not be repaired")
)

// maxCandidates bounds how many '{' positions are tried as the payload start.
const maxCandidates = 8

// Extract returns the JSON object contained in raw.
func Extract(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}

	text := stripFraming(raw)
	starts := candidateStarts(text, maxCandidates)
	if len(starts) == 0 {
		return nil, ErrNoPayload
	}
	// A candidate that is already well formed wins over one that needs repair.
	for _, s := range starts {
		if span, ok := wellFormed(text[s:]); ok {
			return span, nil
		}
	}
	// Otherwise the repair that accounts for the most of the text wins, so a brace in
	// prose cannot shadow a damaged payload that follows it.
	var best []byte
	bestConsumed := 0
	for _, s := range starts {
		if out, consumed, ok := recoverObject(text[s:]); ok && consumed > bestConsumed {
			best, bestConsumed = out, consumed
		}
	}
	if best != nil {
		return best, nil
	}
	return nil, fmt.Errorf("%w (tried %d candidate start positions)", ErrUnrepairable, len(starts))
}

// Unmarshal extracts the JSON object contained in raw and decodes it into v.
func Unmarshal(raw string, v any) error {
	payload, err := Extract(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("jsonrepair: decoding recovered payload: %w", err)
	}
	return nil
}

func candidateStarts(text string, limit int) []int {
	var out []int
	for i := 0; i < len(text) && len(out) < limit; i++ {
		if text[i] == '{' {
			out = append(out, i)
		}
	}
	return out
}

func wellFormed(text string) ([]byte, bool) {
	toks := tokenize(text)
	if len(toks) == 0 || toks[0].kind != tokBeginObject {
		return nil, false
	}
	span := rootSpan(text, toks)
	return []byte(span), json.Valid([]byte(span))
}

// recoverObject turns text beginning with '{' into a valid JSON object if it can and
// reports how many tokens the object spans. An object whose members are all null
// carried no content and is rejected.
func recoverObject(text string) ([]byte, int, bool) {
	toks := tokenize(text)
	if len(toks) == 0 || toks[0].kind != tokBeginObject {
		return nil, 0, false
	}
	toks = markPlaceholders(toks)
	out, consumed, ok := rebalance(toks)
	if !ok || !json.Valid([]byte(out)) || allNull([]byte(out)) {
		return nil, 0, false
	}
	return []byte(out), consumed, true
}

func allNull(obj []byte) bool {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(obj, &members); err != nil || len(members) == 0 {
		return false
	}
	for _, v := range members {
		if string(v) != "null" {
			return false
		}
	}
	return true
}

// rootSpan returns the text from the opening brace to the token that closes it,
// or the whole text when the root never closes.
func rootSpan(text string, toks []token) string {
	depth := 0
	for _, t := range toks {
		switch t.kind {
		case tokBeginObject, tokBeginArray:
			depth++
		case tokEndObject, tokEndArray:
			depth--
			if depth == 0 {
				return text[:t.end]
			}
		}
	}
	return strings.TrimSpace(text)
}
