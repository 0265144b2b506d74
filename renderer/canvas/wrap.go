package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/labreport/layout"
)

// greedyWrapTokens 按宽度贪心折行，宽度单位均为 mm。
// wrap 取值：nowrap 只按显式换行；break-word 逐字符切分；其他值优先在空白处断行，超长词在词内拆分。
func greedyWrapTokens(content string, width float64, face *canvas.FontFace, wrap string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	if wrap == "nowrap" {
		parts := strings.Split(strings.ReplaceAll(content, "\r", ""), "\n")
		lines := make([]layout.TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, layout.TextLine{Content: p, Width: face.TextWidth(p)})
		}
		return lines
	}

	w := &lineWriter{face: face, limit: limit}
	if wrap == "break-word" {
		for _, r := range content {
			switch r {
			case '\r':
			case '\n':
				w.emit(true)
			default:
				w.add(string(r))
			}
		}
		w.emit(true)
		return w.lines
	}

	for _, token := range tokenizeContent(content) {
		if token == "\n" {
			w.emit(true)
			continue
		}
		if face.TextWidth(token) <= limit {
			w.add(token)
			continue
		}
		for _, chunk := range splitTokenByWidth(token, limit, face) {
			w.add(chunk)
		}
	}
	w.emit(true)
	return w.lines
}

type lineWriter struct {
	face    *canvas.FontFace
	limit   float64
	lines   []layout.TextLine
	builder strings.Builder
	current float64
}

func (w *lineWriter) add(token string) {
	tw := w.face.TextWidth(token)
	if w.current > 0 && w.current+tw > w.limit {
		w.emit(false)
		// 新行不以空白开头
		if strings.TrimSpace(token) == "" {
			return
		}
	}
	w.builder.WriteString(token)
	w.current += tw
}

// emit 结束当前行；force 为 true 时即使为空也输出一行（显式换行产生的空行）。
func (w *lineWriter) emit(force bool) {
	if w.builder.Len() == 0 {
		if force {
			w.lines = append(w.lines, layout.TextLine{})
		}
		return
	}
	content := strings.TrimRightFunc(w.builder.String(), unicode.IsSpace)
	width := w.current
	if content != w.builder.String() {
		width = w.face.TextWidth(content)
	}
	w.lines = append(w.lines, layout.TextLine{Content: content, Width: width})
	w.builder.Reset()
	w.current = 0
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

// splitTokenByWidth 将超宽的词拆成不超过 limit 的片段，单个字符超宽时独占一段。
func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		next := append(current, r)
		if len(current) > 0 && face.TextWidth(string(next)) > limit {
			parts = append(parts, string(current))
			current = []rune{r}
			continue
		}
		current = next
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
