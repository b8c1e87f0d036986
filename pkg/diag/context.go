package diag

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Context is a range of text in a named source. Errors that can be pinned to
// a part of a template or an expression carry one.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit.
var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

// Position returns the 1-based line and column of the start of the range.
// Columns count codepoints.
func (c *Context) Position() (line, col int) {
	before := c.Source[:c.From]
	line = strings.Count(before, "\n") + 1
	col = len([]rune(lastLine(before))) + 1
	return line, col
}

func (c *Context) valid() bool {
	return c.From >= 0 && c.From <= c.To && c.To <= len(c.Source)
}

// Describe returns "name:line:col", or just the name when the range is
// not usable. It returns "" for a zero Context.
func (c *Context) Describe() string {
	if c.Name == "" && c.Source == "" {
		return ""
	}
	if !c.valid() {
		return c.Name
	}
	line, col := c.Position()
	return fmt.Sprintf("%s:%d:%d", c.Name, line, col)
}

// Show shows the start of the range and the relevant lines of source, with
// the culprit highlighted. Lines after the first are indented with indent,
// plus enough spaces to line up with the first line.
func (c *Context) Show(indent string) string {
	desc := c.Describe()
	if !c.valid() {
		return desc + ", unknown position"
	}
	desc += ": "
	descIndent := strings.Repeat(" ", runewidth.StringWidth(desc))
	return desc + c.relevantSource(indent+descIndent)
}

func (c *Context) relevantSource(indent string) string {
	before := c.Source[:c.From]
	culprit := c.Source[c.From:c.To]
	after := c.Source[c.To:]

	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else {
		tail = firstLine(after)
	}
	if culprit == "" {
		culprit = culpritPlaceHolder
	}

	var sb strings.Builder
	sb.WriteString(lastLine(before))
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(indent)
		}
		sb.WriteString(culpritStart + line + culpritEnd)
	}
	sb.WriteString(tail)
	return sb.String()
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	return s[strings.LastIndexByte(s, '\n')+1:]
}
