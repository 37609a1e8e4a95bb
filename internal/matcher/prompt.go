// File path: internal/matcher/prompt.go
package matcher

import "strings"

// PromptTemplate renders the variables of one disambiguation round into
// a prompt string. Pure formatting, no I/O.
type PromptTemplate interface {
	Format(vars map[string]string) string
}

// Template substitutes {name} placeholders with the supplied variables.
// Unknown placeholders are left untouched so a missing variable shows up
// in the rendered prompt instead of vanishing silently.
type Template struct {
	text string
}

func NewTemplate(text string) *Template {
	return &Template{text: text}
}

func (t *Template) Format(vars map[string]string) string {
	out := t.text
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}

var _ PromptTemplate = (*Template)(nil)

// DefaultMatchTemplate drives candidate disambiguation. The tie-break
// rule lives here as a protocol contract: when more than one candidate
// matches the query equally well the model must answer NONE.
var DefaultMatchTemplate = NewTemplate(strings.TrimSpace(`
You match a query record against a list of known candidate records.

Candidates (one per line, "id: fields"):
{candidates}

Query record:
{query}

Pick the single candidate that refers to the same real-world item as the
query. If no candidate matches, or if more than one candidate matches
the query equally well, answer NONE.

Reply with JSON only, no other text:
{"answer": "<candidate id or NONE>", "explanation": "<one sentence>"}
`))

// DefaultExplainTemplate asks for a rationale after the fact, given the
// prompt and reply captured during resolution.
var DefaultExplainTemplate = NewTemplate(strings.TrimSpace(`
You previously answered a record-matching request.

Original request:
{prompt}

Your reply:
{reply}

Explain in one or two sentences why that reply was the right call.
Reply with the explanation text only.
`))
