package mathtext

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var ErrUnbalancedBraces = errors.New("mathtext: unbalanced braces")

var symbols = strings.NewReplacer(
	`\left`, "", `\right`, "",
	`\geq`, "≥", `\ge`, "≥",
	`\leq`, "≤", `\le`, "≤",
	`\neq`, "≠", `\ne`, "≠",
	`\approx`, "≈",
	`\cdot`, "·", `\times`, "×", `\div`, "÷",
	`\pm`, "±",
	`\infty`, "∞",
	`\pi`, "π", `\theta`, "θ", `\alpha`, "α", `\beta`, "β",
	`\sum`, "∑", `\prod`, "∏",
	`\sqrt`, "√",
	`\in`, "∈",
	`\Rightarrow`, "⇒", `\implies`, "⇒", `\iff`, "⇔",
	`\,`, " ", `\;`, " ", `\quad`, "  ",
)

// Plain renders TeX as readable Unicode text. Braces must balance.
type Plain struct{}

func (Plain) Typeset(tex string, display bool) (string, error) {
	if !bracesBalanced(tex) {
		return "", ErrUnbalancedBraces
	}
	out := strings.TrimSpace(symbols.Replace(expandGroups(tex)))
	if display {
		return "\n    " + out + "\n", nil
	}
	return out, nil
}

// expandGroups rewrites \sqrt{x} as √x and \frac{a}{b} as a/b, recursing into
// the arguments. Callers have already checked that braces balance.
func expandGroups(tex string) string {
	var b strings.Builder
	for i := 0; i < len(tex); {
		rest := tex[i:]
		switch {
		case strings.HasPrefix(rest, `\sqrt{`):
			arg, n := group(rest[len(`\sqrt`):])
			b.WriteString("√" + wrap(arg))
			i += len(`\sqrt`) + n
		case strings.HasPrefix(rest, `\frac{`):
			args := rest[len(`\frac`):]
			num, n := group(args)
			if !strings.HasPrefix(args[n:], "{") {
				b.WriteString(`\frac`)
				i += len(`\frac`)
				continue
			}
			den, m := group(args[n:])
			b.WriteString(wrap(num) + "/" + wrap(den))
			i += len(`\frac`) + n + m
		case rest[0] == '\\' && len(rest) > 1:
			b.WriteString(rest[:2])
			i += 2
		default:
			b.WriteByte(rest[0])
			i++
		}
	}
	return b.String()
}

// group returns the contents of the brace group s starts with and the number
// of bytes it spans, braces included.
func group(s string) (string, int) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], i + 1
			}
		}
	}
	return s[1:], len(s)
}

// wrap typesets a group argument, parenthesizing it unless it is one symbol.
func wrap(arg string) string {
	out := strings.TrimSpace(symbols.Replace(expandGroups(arg)))
	if utf8.RuneCountInString(out) <= 1 {
		return out
	}
	return "(" + out + ")"
}

// Markdown keeps TeX source but marks it as code so renderers leave it alone.
type Markdown struct{}

func (Markdown) Typeset(tex string, display bool) (string, error) {
	if !bracesBalanced(tex) {
		return "", ErrUnbalancedBraces
	}
	tex = strings.TrimSpace(tex)
	if display {
		return "\n```latex\n" + tex + "\n```\n", nil
	}
	return "`" + tex + "`", nil
}

func bracesBalanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++ // escaped char, e.g. \{
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
