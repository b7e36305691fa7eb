package genapi

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// characterPrompt is the instruction sent with every seed. The model is
// asked for a fixed markdown structure so downstream parsing can rely
// on the section headings.
const characterPrompt = `You are a character writer for tabletop and fiction projects.
From the seed below, write one complete, internally consistent character sheet.

Respond in markdown with exactly these sections:

# <Character Name>

## Archetype
One line naming the core archetype and a twist on it.

## Appearance
2-4 sentences, concrete physical detail only.

## Personality
3-5 sentences. Include one flaw that creates friction.

## Backstory
2 short paragraphs. Ground it in the seed; invent nothing that contradicts it.

## Voice
2-3 example lines of dialogue that capture how they speak.

Seed:
{{ .Seed }}
`

var promptTmpl = template.Must(template.New("character").Parse(characterPrompt))

// BuildPrompt renders the generation prompt for one seed.
func BuildPrompt(seed string) (string, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return "", fmt.Errorf("empty seed")
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, struct{ Seed string }{Seed: seed}); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// ExtractName pulls the character name from the first top-level markdown
// heading of a generated sheet. Empty when the sheet has none.
func ExtractName(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
