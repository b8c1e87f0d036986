package lsp

import (
	"fmt"
	"sort"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/thistle-tpl/thistle/pkg/compile"
	"github.com/thistle-tpl/thistle/pkg/diag"
	"github.com/thistle-tpl/thistle/pkg/thistle"
)

type completionResult struct {
	items   []string
	kind    lsp.CompletionItemKind
	replace diag.Ranging
}

// Completes the name that ends at dot. After a "|" filter names are
// offered, after a "<" names of elements with directives, and elsewhere in
// a start tag directive attributes.
func complete(e *thistle.Engine, content string, dot int) (completionResult, bool) {
	if dot < 0 || dot > len(content) {
		return completionResult{}, false
	}
	start := dot
	for start > 0 && isNameByte(content[start-1]) {
		start--
	}
	prefix := content[start:dot]
	replace := diag.Ranging{From: start, To: dot}

	var candidates []string
	var kind lsp.CompletionItemKind
	switch {
	case afterPipe(content, start):
		candidates, kind = e.Compiler().Exprs().FilterNames(), lsp.CIKFunction
	case start > 0 && content[start-1] == '<':
		candidates, kind = tagNames(e.Compiler().Directives()), lsp.CIKClass
	case start > 0 && isSpace(content[start-1]) && inStartTag(content, start):
		candidates, kind = attrNames(e.Compiler().Directives()), lsp.CIKProperty
	default:
		return completionResult{}, false
	}

	var items []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			items = append(items, c)
		}
	}
	return completionResult{items, kind, replace}, true
}

// Describes the filter or the directives named by the word at dot.
func describeAt(e *thistle.Engine, content string, dot int) (string, diag.Ranging, bool) {
	if dot < 0 || dot > len(content) {
		return "", diag.Ranging{}, false
	}
	start, end := dot, dot
	for start > 0 && isNameByte(content[start-1]) {
		start--
	}
	for end < len(content) && isNameByte(content[end]) {
		end++
	}
	word := content[start:end]
	if word == "" {
		return "", diag.Ranging{}, false
	}
	r := diag.Ranging{From: start, To: end}

	if afterPipe(content, start) {
		for _, name := range e.Compiler().Exprs().FilterNames() {
			if name == word {
				return "filter " + word, r, true
			}
		}
		return "", diag.Ranging{}, false
	}

	var names func(*compile.Directive) []string
	switch {
	case start > 0 && content[start-1] == '<',
		start > 1 && content[start-2:start] == "</":
		names = func(d *compile.Directive) []string { return d.Selector().TagNames() }
	case inStartTag(content, start):
		names = func(d *compile.Directive) []string { return d.Selector().AttrNames() }
	default:
		return "", diag.Ranging{}, false
	}
	var lines []string
	for _, d := range e.Compiler().Directives() {
		if contains(names(d), word) {
			lines = append(lines, describeDirective(d))
		}
	}
	if len(lines) == 0 {
		return "", diag.Ranging{}, false
	}
	return strings.Join(lines, "\n"), r, true
}

func describeDirective(d *compile.Directive) string {
	s := fmt.Sprintf("%s, priority %d", d, d.Priority())
	if d.Terminal() {
		s += ", terminal"
	}
	return s
}

func tagNames(ds []*compile.Directive) []string {
	var names []string
	for _, d := range ds {
		names = append(names, d.Selector().TagNames()...)
	}
	return sortedUnique(names)
}

func attrNames(ds []*compile.Directive) []string {
	var names []string
	for _, d := range ds {
		names = append(names, d.Selector().AttrNames()...)
	}
	return sortedUnique(names)
}

func sortedUnique(names []string) []string {
	sort.Strings(names)
	var result []string
	for i, name := range names {
		if i == 0 || name != names[i-1] {
			result = append(result, name)
		}
	}
	return result
}

// Reports whether a single "|", possibly followed by spaces, ends before i.
func afterPipe(s string, i int) bool {
	for i > 0 && isSpace(s[i-1]) {
		i--
	}
	return i > 0 && s[i-1] == '|' && (i < 2 || s[i-2] != '|')
}

// Reports whether i is in a start tag and outside of attribute values.
func inStartTag(s string, i int) bool {
	lt := strings.LastIndexByte(s[:i], '<')
	if lt == -1 || lt+1 == len(s) || s[lt+1] == '/' || s[lt+1] == '!' {
		return false
	}
	var quote byte
	for j := lt + 1; j < i; j++ {
		switch {
		case quote != 0:
			if s[j] == quote {
				quote = 0
			}
		case s[j] == '"' || s[j] == '\'':
			quote = s[j]
		case s[j] == '>':
			return false
		}
	}
	return quote == 0
}

func isNameByte(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9' ||
		b == '_' || b == '-' || b == '$' || b == ':'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func contains(ss []string, s string) bool {
	for _, t := range ss {
		if t == s {
			return true
		}
	}
	return false
}
