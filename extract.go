package appforge

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
)

// topLevelObjects returns every balanced {...} span of text at nesting depth
// zero, in order. Braces inside JSON string literals, including escaped
// quotes, do not count. Quotes outside any object are ignored so that prose
// around the document cannot open a string.
func topLevelObjects(text string) []string {
	var (
		objects  []string
		depth    int
		start    int
		inString bool
		escaped  bool
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				objects = append(objects, text[start:i+1])
			}
		}
	}

	return objects
}

// greedySpan returns text from the first '{' to the last '}'.
func greedySpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// jsonCandidates lists the substrings that may hold the response document, in
// the order they are tried: balanced top-level objects, the greedy span, and
// the whole text.
func jsonCandidates(text string) []string {
	candidates := topLevelObjects(text)
	if span, ok := greedySpan(text); ok {
		candidates = append(candidates, span)
	}
	candidates = append(candidates, text)
	return lo.Uniq(candidates)
}

// hasKey reports whether doc is a JSON object with the given top-level key.
func hasKey(doc, key string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &fields); err != nil {
		return false
	}
	_, ok := fields[key]
	return ok
}

// decodeResponse decodes the first usable candidate of text into T. A
// balanced object that is narrower than the greedy span is only accepted when
// it carries anchorKey, so that an unrelated object in surrounding prose does
// not shadow the real document. Candidates that are not JSON objects are
// skipped. The returned string is the candidate that was decoded.
func decodeResponse[T any](text, anchorKey string) (*T, string, error) {
	span, _ := greedySpan(text)

	for _, candidate := range jsonCandidates(text) {
		if !strings.HasPrefix(strings.TrimSpace(candidate), "{") {
			continue
		}
		if candidate != span && candidate != text && !hasKey(candidate, anchorKey) {
			continue
		}

		var v T
		if err := json.Unmarshal([]byte(candidate), &v); err != nil {
			continue
		}
		return &v, candidate, nil
	}

	return nil, "", goerr.Wrap(ErrMalformedResponse, "no JSON document in model response",
		goerr.V("anchor_key", anchorKey),
		goerr.V("response_length", len(text)),
	)
}
