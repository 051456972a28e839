package recipe

import (
	"fmt"
	"strings"
)

// Prompt is the request sent to the generator for dish.
func Prompt(dish string) string {
	return fmt.Sprintf("Provide a structured recipe for %s, including a list of max 7 ingredients, "+
		"max 7 step-by-step instructions, and a caution message. Format as follows: "+
		"Ingredients: [list of ingredients] Instructions: [Step 1: ..., Step 2: ..., etc.] "+
		"Caution: [caution message]", dish)
}

// Generated is the three-field shape parsed from generated text.
type Generated struct {
	Ingredients  []string
	Instructions []string
	Caution      string
}

// Empty reports whether nothing was parsed.
func (g Generated) Empty() bool {
	return len(g.Ingredients) == 0 && len(g.Instructions) == 0 && g.Caution == ""
}

type section int

const (
	sectionNone section = iota
	sectionIngredients
	sectionInstructions
	sectionCaution
)

var headers = []struct {
	prefix  string
	section section
}{
	{"ingredients:", sectionIngredients},
	{"instructions:", sectionInstructions},
	{"caution:", sectionCaution},
}

// ParseGenerated splits generated text into sections by lines that start with
// "Ingredients:", "Instructions:" or "Caution:" in any case. Text before the first
// header is ignored. Lists keep at most MaxItems entries; the last caution line wins.
// Malformed text yields partially empty fields.
func ParseGenerated(text string) Generated {
	g := Generated{Ingredients: []string{}, Instructions: []string{}}
	current := sectionNone

	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}

		if s, rest, ok := matchHeader(line); ok {
			current = s
			if rest == "" {
				continue
			}
			line = rest
		}

		switch current {
		case sectionIngredients:
			if len(g.Ingredients) < MaxItems {
				g.Ingredients = append(g.Ingredients, line)
			}
		case sectionInstructions:
			if len(g.Instructions) < MaxItems {
				g.Instructions = append(g.Instructions, line)
			}
		case sectionCaution:
			g.Caution = line
		}
	}

	return g
}

// cleanLine trims whitespace, markdown heading and emphasis markers, and list bullets.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#")
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "__", "")
	line = strings.TrimSpace(line)

	for _, bullet := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, bullet) {
			line = strings.TrimSpace(line[len(bullet):])
			break
		}
	}
	return line
}

func matchHeader(line string) (section, string, bool) {
	lower := strings.ToLower(line)
	for _, h := range headers {
		if strings.HasPrefix(lower, h.prefix) {
			return h.section, strings.TrimSpace(line[len(h.prefix):]), true
		}
	}
	return sectionNone, "", false
}
