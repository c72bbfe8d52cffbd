package content

import (
	"html"
	"regexp"
	"strings"
)

var blockComment = regexp.MustCompile(`<!--\s*/?wp:[^>]*?-->`)

// ShortcodeFunc renders one shortcode occurrence. content is empty for self-closing tags.
type ShortcodeFunc func(attrs map[string]string, content string) string

// Renderer turns a stored body into final HTML by dropping block delimiters
// and expanding registered shortcodes. Unregistered shortcodes stay verbatim.
type Renderer struct {
	shortcodes map[string]ShortcodeFunc
}

// NewRenderer creates a renderer with the stock shortcodes.
func NewRenderer() *Renderer {
	r := &Renderer{shortcodes: map[string]ShortcodeFunc{}}
	r.Register("caption", func(_ map[string]string, content string) string { return content })
	r.Register("embed", func(_ map[string]string, content string) string {
		url := strings.TrimSpace(content)
		return `<a href="` + html.EscapeString(url) + `">` + html.EscapeString(url) + `</a>`
	})
	r.Register("gallery", func(map[string]string, string) string { return "" })
	media := func(attrs map[string]string, _ string) string {
		src := attrs["src"]
		if src == "" {
			return ""
		}
		return `<a href="` + html.EscapeString(src) + `">` + html.EscapeString(src) + `</a>`
	}
	r.Register("audio", media)
	r.Register("video", media)
	return r
}

// Register adds or replaces a shortcode handler.
func (r *Renderer) Register(name string, fn ShortcodeFunc) {
	r.shortcodes[strings.ToLower(name)] = fn
}

// Render returns the final HTML for a body.
func (r *Renderer) Render(body string) string {
	out := blockComment.ReplaceAllString(body, "")
	out = r.expandShortcodes(out)
	return strings.TrimSpace(out)
}

func (r *Renderer) expandShortcodes(s string) string {
	if !strings.Contains(s, "[") {
		return s
	}

	var b strings.Builder
	for {
		start := strings.IndexByte(s, '[')
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		rest := s[start:]

		tag, ok := parseOpenTag(rest)
		fn, registered := r.shortcodes[tag.name]
		if !ok || !registered {
			b.WriteByte('[')
			s = s[start+1:]
			continue
		}

		after := rest[tag.length:]
		inner := ""
		if !tag.selfClosing {
			closing := "[/" + tag.name + "]"
			if end := indexFoldASCII(after, closing); end >= 0 {
				inner = r.expandShortcodes(after[:end])
				after = after[end+len(closing):]
			}
		}

		b.WriteString(fn(tag.attrs, inner))
		s = after
	}
}

type openTag struct {
	name        string
	attrs       map[string]string
	selfClosing bool
	length      int
}

// parseOpenTag reads `[name attr="v" attr2=v2]` or `[name /]` at the start of s.
func parseOpenTag(s string) (openTag, bool) {
	end := strings.IndexByte(s, ']')
	if end < 0 || len(s) < 2 {
		return openTag{}, false
	}
	body := s[1:end]
	tag := openTag{length: end + 1, attrs: map[string]string{}}

	if strings.HasSuffix(body, "/") {
		tag.selfClosing = true
		body = strings.TrimSuffix(body, "/")
	}

	nameEnd := strings.IndexAny(body, " \t\n")
	if nameEnd < 0 {
		nameEnd = len(body)
	}
	tag.name = strings.ToLower(body[:nameEnd])
	if tag.name == "" || !isShortcodeName(tag.name) {
		return openTag{}, false
	}

	for _, m := range attrPattern.FindAllStringSubmatch(body[nameEnd:], -1) {
		val := m[2]
		if val == "" {
			val = m[3]
		}
		if val == "" {
			val = m[4]
		}
		tag.attrs[strings.ToLower(m[1])] = val
	}
	return tag, true
}

var attrPattern = regexp.MustCompile(`([a-zA-Z0-9_-]+)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"']+))`)

// indexFoldASCII finds sub in s ignoring ASCII case. sub must be lowercase ASCII,
// so the returned offset is valid for s whatever else s contains.
func indexFoldASCII(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i] != sub[0] {
			continue
		}
		match := true
		for j := 1; j < len(sub); j++ {
			c := s[i+j]
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func isShortcodeName(name string) bool {
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
