// Package dialogue turns a topic into a normalized two-voice interview
// script: LLM draft, optional specialist rewrite, and speaker-alternation
// normalization.
package dialogue

import (
	"regexp"
	"strings"

	"github.com/ljmonteiro/interviewcast/internal/models"
)

var speakerLine = regexp.MustCompile(`^(Sarah|Leo):\s*(.*)$`)

// Normalize parses raw model output into dialogue lines with a strict
// Sarah/Leo alternation. Blank lines are dropped; labeled lines have the
// label stripped; everything else is kept verbatim. A final pass assigns
// speakers purely by position (Sarah even, Leo odd), so any labels in the
// raw text only affect the extracted text, never the final attribution.
func Normalize(raw string) []models.DialogueLine {
	var lines []models.DialogueLine

	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}

		text := l
		if m := speakerLine.FindStringSubmatch(l); m != nil {
			text = strings.TrimSpace(m[2])
			if text == "" {
				// A bare "Sarah:" label carries no content.
				continue
			}
		}
		lines = append(lines, models.DialogueLine{Text: text})
	}

	for i := range lines {
		lines[i].Speaker = models.SpeakerForIndex(i)
	}
	return lines
}

// Render joins lines back into labeled "Speaker: text" form, the shape fed
// to the specialist rewrite and stored in the audit collections.
func Render(lines []models.DialogueLine) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(l.Speaker))
		b.WriteString(": ")
		b.WriteString(l.Text)
	}
	return b.String()
}
