package markdown

import (
	"regexp"
	"strings"
)

type delimiter struct {
	marker string
	style  Style
}

// spanRules is tried in order at every position; the first delimiter with a
// non-empty closed span wins.
var spanRules = []delimiter{
	{"**", Bold},
	{"~~", Strike},
	{"`", Code},
	{"*", Italic},
}

var (
	linkAtRe = regexp.MustCompile(`^\[(.*?)\]\((.*?)\)`)
	linkRe   = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
)

// parseInline scans s left to right and splits it into styled spans.
// Unclosed or empty markers stay literal. Links keep only their text.
func parseInline(s string) Inline {
	var (
		out   Inline
		plain strings.Builder
	)
	flush := func() {
		if plain.Len() > 0 {
			out = append(out, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(s); {
		if span, n, ok := matchSpan(s[i:]); ok {
			flush()
			out = append(out, span)
			i += n
			continue
		}
		if s[i] == '[' {
			if m := linkAtRe.FindStringSubmatch(s[i:]); m != nil {
				plain.WriteString(m[1])
				i += len(m[0])
				continue
			}
		}
		plain.WriteByte(s[i])
		i++
	}
	flush()
	return out
}

func matchSpan(s string) (Span, int, bool) {
	for _, d := range spanRules {
		if !strings.HasPrefix(s, d.marker) {
			continue
		}
		body := s[len(d.marker):]
		end := strings.Index(body, d.marker)
		if end <= 0 {
			continue
		}
		text := body[:end]
		if d.style != Code {
			text = linkRe.ReplaceAllString(text, "$1")
		}
		return Span{Text: text, Style: d.style}, len(d.marker)*2 + end, true
	}
	return Span{}, 0, false
}
