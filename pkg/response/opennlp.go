package response

import (
	"strings"

	"github.com/kittclouds/opinion/pkg/scanner/resolver"
)

// FormatOpenNLP renders a sentence in OpenNLP name-finder markup:
//
//	The <START:OTE> battery life <END> is great
//
// spans must be disjoint and sorted by start.
func FormatOpenNLP(forms []string, spans []resolver.Span) string {
	var b strings.Builder
	next := 0
	for i, form := range forms {
		if next < len(spans) && spans[next].Start == i {
			writeSep(&b)
			b.WriteString("<START:")
			b.WriteString(spans[next].Label)
			b.WriteByte('>')
		}
		writeSep(&b)
		b.WriteString(form)
		if next < len(spans) && spans[next].End == i+1 {
			b.WriteString(" <END>")
			next++
		}
	}
	return b.String()
}

func writeSep(b *strings.Builder) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
}
