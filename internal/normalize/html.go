package normalize

import "strings"

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#8217;", "'",
	"&#8220;", `"`,
	"&#8221;", `"`,
)

// StripHTML removes tags, decodes common entities and collapses whitespace.
func StripHTML(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := entityReplacer.Replace(result.String())
	return strings.Join(strings.Fields(s), " ")
}
