package content

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	titleLine      = regexp.MustCompile(`제목:\s*(.*)`)
	introLine      = regexp.MustCompile(`서두:\s*(.*)`)
	blankLineSplit = regexp.MustCompile(`\n[ \t]*\n`)
)

// Article is model output split into its labelled parts
type Article struct {
	Title string
	Intro string
	Body  string
}

// FallbackTitle is used when the model output carries no title line
func FallbackTitle(artist, song string) string {
	return fmt.Sprintf("%s - %s 리뷰", artist, song)
}

// FallbackIntro is used when the model output carries no intro line
func FallbackIntro(artist, song string) string {
	return fmt.Sprintf("%s의 '%s'에 담긴 이야기와 사운드를 Voxo가 깊이 들여다봅니다.", artist, song)
}

// ParseArticle extracts the "제목:" title line and the "서두:" intro line that
// follows it, removes both lines from the text and returns the rest as Body.
// Missing or empty fields fall back to templated defaults.
func ParseArticle(text, artist, song string) Article {
	body := strings.ReplaceAll(text, "\r\n", "\n")

	title, body, at := cutLabelledLine(body, titleLine, 0)
	intro, body, _ := cutLabelledLine(body, introLine, at)

	if title == "" {
		title = FallbackTitle(artist, song)
	}
	if intro == "" {
		intro = FallbackIntro(artist, song)
	}

	return Article{
		Title: title,
		Intro: intro,
		Body:  strings.TrimSpace(body),
	}
}

// cutLabelledLine finds the first match of re at or after from, removes the
// whole line containing it and returns the cleaned capture, the remaining
// text and the offset where the line was.
func cutLabelledLine(text string, re *regexp.Regexp, from int) (string, string, int) {
	loc := re.FindStringSubmatchIndex(text[from:])
	if loc == nil {
		return "", text, from
	}
	matchStart, matchEnd := from+loc[0], from+loc[1]
	value := cleanField(text[from+loc[2] : from+loc[3]])

	lineStart := strings.LastIndex(text[:matchStart], "\n") + 1
	lineEnd := len(text)
	if i := strings.Index(text[matchEnd:], "\n"); i >= 0 {
		lineEnd = matchEnd + i + 1
	}

	return value, text[:lineStart] + text[lineEnd:], lineStart
}

func cleanField(s string) string {
	return strings.Trim(s, " \t*")
}

// ParagraphsToHTML converts blank-line separated blocks into HTML. Blocks
// starting with "#" become <h3>, the rest become <p> with single newlines
// kept as <br/>. Text is HTML-escaped.
func ParagraphsToHTML(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")

	var out []string
	for _, block := range blankLineSplit.Split(body, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if strings.HasPrefix(block, "#") {
			heading := strings.TrimSpace(strings.TrimLeft(block, "#"))
			out = append(out, "<h3>"+html.EscapeString(heading)+"</h3>")
			continue
		}

		lines := strings.Split(block, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(line))
		}
		out = append(out, "<p>"+strings.Join(lines, "<br/>")+"</p>")
	}

	return strings.Join(out, "\n")
}

// ParseTags splits model output on commas. Tokens are trimmed and stripped of
// leading '#'; empty tokens are dropped. Order and duplicates are kept.
func ParseTags(s string) []string {
	tags := []string{}
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tok), "#"))
		if tok == "" {
			continue
		}
		tags = append(tags, tok)
	}
	return tags
}

// FillTemplate replaces every {name} placeholder with vars[name].
// Unknown placeholders are left as they are.
func FillTemplate(tpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
