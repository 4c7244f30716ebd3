package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mfeller/metagen-api/internal/analysis"
	"github.com/mfeller/metagen-api/internal/domain"
)

// fallbackKeywords is used when the upstream provides no usable keywords
// at all. Keeping the list non-empty spares callers a special case.
var fallbackKeywords = []string{"Allgemein", "Inhalt", "Medium"}

// markupArtifacts are structural characters that indicate a keyword is a
// leftover markdown/link fragment rather than a real tag.
const markupArtifacts = "[]()#|/"

const (
	maxKeywords          = 15
	maxDescriptionLength = 500
	maxCaptionLength     = 200
)

// flexString unmarshals either a plain JSON string or an upstream value
// object such as {"type":"string","value":"..."}. No caller downstream of
// this package ever sees the wrapped shape.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}

	var wrapped struct {
		Value       *string `json:"value"`
		ValueString *string `json:"valueString"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	switch {
	case wrapped.Value != nil:
		*f = flexString(*wrapped.Value)
	case wrapped.ValueString != nil:
		*f = flexString(*wrapped.ValueString)
	default:
		*f = ""
	}
	return nil
}

type imageDoc struct {
	Description flexString   `json:"description"`
	Keywords    []flexString `json:"keywords"`
	Caption     flexString   `json:"caption"`
}

type audioDoc struct {
	Description flexString   `json:"description"`
	Keywords    []flexString `json:"keywords"`
	Summary     flexString   `json:"summary"`
}

// normalizeImage converts raw upstream response text into a plain
// ImageAnalysis. Absence of every field is the only hard failure.
func normalizeImage(raw string) (*domain.ImageAnalysis, error) {
	var doc imageDoc
	if err := parseDoc(raw, &doc); err != nil {
		return nil, err
	}

	description := truncate(strings.TrimSpace(string(doc.Description)), maxDescriptionLength)
	caption := strings.TrimSpace(string(doc.Caption))
	keywords := cleanKeywords(doc.Keywords)

	if description == "" && caption == "" && len(keywords) == 0 {
		return nil, fmt.Errorf("%w: %s: analysis result carries no fields",
			analysis.ErrInvalidResponse, domain.ErrCodeEmptyResult)
	}

	if caption == "" {
		caption = truncate(description, maxCaptionLength)
	}
	if description == "" {
		description = caption
	}
	if len(keywords) == 0 {
		keywords = fallbackKeywords
	}

	return &domain.ImageAnalysis{
		Description: description,
		Keywords:    keywords,
		Caption:     caption,
	}, nil
}

// normalizeAudio converts raw upstream response text into a plain
// AudioAnalysis. The summary is truncated to its first sentence.
func normalizeAudio(raw string) (*domain.AudioAnalysis, error) {
	var doc audioDoc
	if err := parseDoc(raw, &doc); err != nil {
		return nil, err
	}

	description := truncate(strings.TrimSpace(string(doc.Description)), maxDescriptionLength)
	summary := strings.TrimSpace(string(doc.Summary))
	keywords := cleanKeywords(doc.Keywords)

	if description == "" && summary == "" && len(keywords) == 0 {
		return nil, fmt.Errorf("%w: %s: analysis result carries no fields",
			analysis.ErrInvalidResponse, domain.ErrCodeEmptyResult)
	}

	if summary == "" {
		summary = truncate(description, maxCaptionLength)
	}
	summary = firstSentence(summary)
	if description == "" {
		description = summary
	}
	if len(keywords) == 0 {
		keywords = fallbackKeywords
	}

	return &domain.AudioAnalysis{
		Description: description,
		Keywords:    keywords,
		Summary:     summary,
	}, nil
}

// parseDoc strips markdown fences, extracts the JSON object, and
// unmarshals into v.
func parseDoc(raw string, v any) error {
	text := stripMarkdownFences(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return fmt.Errorf("%w: %s: no JSON object in upstream response",
			analysis.ErrInvalidResponse, domain.ErrCodeInvalidResponse)
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %s: %v",
			analysis.ErrInvalidResponse, domain.ErrCodeInvalidResponse, err)
	}
	return nil
}

// stripMarkdownFences removes ```json ... ``` wrapping when present.
func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i >= 1; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}

// cleanKeywords normalizes the keyword list: trims whitespace, drops
// entries containing markup artifacts, removes duplicates, and caps the
// list length. A partial list is returned as-is; callers only fall back
// when nothing survives.
func cleanKeywords(raw []flexString) []string {
	seen := make(map[string]struct{}, len(raw))
	keywords := make([]string, 0, len(raw))

	for _, k := range raw {
		kw := strings.TrimSpace(string(k))
		if kw == "" || strings.ContainsAny(kw, markupArtifacts) {
			continue
		}
		lower := strings.ToLower(kw)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		keywords = append(keywords, kw)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}

// firstSentence returns text up to and including the first sentence
// terminator (. ! ?) followed by whitespace or end of string.
func firstSentence(text string) string {
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		rest := text[i+1:]
		if rest == "" || rest[0] == ' ' || rest[0] == '\n' || rest[0] == '\t' {
			return strings.TrimSpace(text[:i+1])
		}
	}
	return text
}

// truncate limits s to max runes without splitting a multi-byte character.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
