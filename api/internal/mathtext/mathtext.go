// Package mathtext splits model text into plain and math segments and renders
// them for text frontends.
package mathtext

import (
	"regexp"
	"strings"
)

type Kind int

const (
	Text Kind = iota
	Inline
	Display
)

type Segment struct {
	Kind Kind
	Body string
}

var (
	displayBrackets = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)
	inlineParens    = regexp.MustCompile(`\\\((.*?)\\\)`)
)

// Normalize rewrites \[..\] to $$..$$ and \(..\) to $..$.
func Normalize(s string) string {
	s = displayBrackets.ReplaceAllStringFunc(s, func(m string) string {
		return "$$" + displayBrackets.FindStringSubmatch(m)[1] + "$$"
	})
	return inlineParens.ReplaceAllStringFunc(s, func(m string) string {
		return "$" + inlineParens.FindStringSubmatch(m)[1] + "$"
	})
}

// Split normalizes s and cuts it on $$ and then $. An unterminated math run is
// kept as literal text including its opening delimiter.
func Split(s string) []Segment {
	var out []Segment
	blocks := strings.Split(Normalize(s), "$$")
	for i, b := range blocks {
		if i%2 == 1 {
			if i == len(blocks)-1 {
				out = appendText(out, "$$"+b)
				continue
			}
			out = append(out, Segment{Kind: Display, Body: b})
			continue
		}
		inl := strings.Split(b, "$")
		for j, p := range inl {
			switch {
			case j%2 == 0:
				out = appendText(out, p)
			case j == len(inl)-1:
				out = appendText(out, "$"+p)
			default:
				out = append(out, Segment{Kind: Inline, Body: p})
			}
		}
	}
	return out
}

func appendText(out []Segment, s string) []Segment {
	if s == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Kind == Text {
		out[n-1].Body += s
		return out
	}
	return append(out, Segment{Kind: Text, Body: s})
}

// Balanced reports whether every math delimiter in s is closed.
func Balanced(s string) bool {
	n := Normalize(s)
	if strings.Count(n, "$$")%2 != 0 {
		return false
	}
	return strings.Count(strings.ReplaceAll(n, "$$", ""), "$")%2 == 0
}

// Typesetter turns one math segment into output text.
type Typesetter interface {
	Typeset(tex string, display bool) (string, error)
}

// Render joins segments, typesetting math and falling back to the literal
// delimited source when typesetting fails.
func Render(s string, ts Typesetter) string {
	var b strings.Builder
	for _, seg := range Split(s) {
		switch seg.Kind {
		case Text:
			b.WriteString(seg.Body)
		default:
			display := seg.Kind == Display
			out, err := ts.Typeset(seg.Body, display)
			if err != nil {
				b.WriteString(literal(seg.Body, display))
				continue
			}
			b.WriteString(out)
		}
	}
	return b.String()
}

func literal(tex string, display bool) string {
	if display {
		return "$$" + tex + "$$"
	}
	return "$" + tex + "$"
}
