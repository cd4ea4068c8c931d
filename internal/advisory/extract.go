package advisory

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedOutput is the single error every advisory call reports when
// the model's free-text reply does not contain parseable JSON. Callers
// treat it as recoverable: the primary operation proceeds unenriched.
var ErrMalformedOutput = errors.New("malformed model output")

var fencePattern = regexp.MustCompile("```(?:json)?\\s*")

// ExtractJSON locates the first JSON object or array inside free model
// output and unmarshals it into target. Markdown code fences are stripped
// first; anything before the opening brace or after the closing one is
// ignored, since models habitually wrap JSON in prose.
func ExtractJSON(text string, target any) error {
	text = fencePattern.ReplaceAllString(text, "")

	span, ok := jsonSpan(text)
	if !ok {
		return fmt.Errorf("%w: no JSON object or array found", ErrMalformedOutput)
	}

	if err := json.Unmarshal([]byte(span), target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

// jsonSpan returns the widest {...} or [...] slice of text, whichever
// opens first.
func jsonSpan(text string) (string, bool) {
	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	start, closer := objStart, "}"
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		start, closer = arrStart, "]"
	}
	if start < 0 {
		return "", false
	}

	end := strings.LastIndex(text, closer)
	if end <= start {
		return "", false
	}
	return strings.TrimSpace(text[start : end+1]), true
}
