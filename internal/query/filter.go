package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
)

// DocumentVar is the name the current document is bound to inside a query,
// e.g. `c.score >= minScore`.
const DocumentVar = "c"

// Matcher evaluates a compiled query against documents.
type Matcher struct {
	program *vm.Program
	params  map[string]any
	limit   int
}

// Compile prepares q. An empty query text matches every document. Param
// names may carry a leading '@'.
func Compile(q store.Query) (*Matcher, error) {
	params := make(map[string]any, len(q.Params))
	for name, value := range q.Params {
		params[strings.TrimPrefix(name, "@")] = value
	}
	m := &Matcher{params: params, limit: q.Limit}
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return m, nil
	}
	program, err := expr.Compile(text, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("query: compile %q: %w", text, err)
	}
	m.program = program
	return m, nil
}

// Match reports whether doc satisfies the query.
func (m *Matcher) Match(doc store.Document) (bool, error) {
	if m.program == nil {
		return true, nil
	}
	env := make(map[string]any, len(m.params)+1)
	for k, v := range m.params {
		env[k] = v
	}
	env[DocumentVar] = map[string]any(doc)
	out, err := expr.Run(m.program, env)
	if err != nil {
		return false, fmt.Errorf("query: evaluate: %w", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Filter returns the documents matching q ordered by id, honouring q.Limit.
func Filter(docs []store.Document, q store.Query) ([]store.Document, error) {
	m, err := Compile(q)
	if err != nil {
		return nil, err
	}
	sorted := append([]store.Document(nil), docs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })

	out := make([]store.Document, 0, len(sorted))
	for _, doc := range sorted {
		ok, err := m.Match(doc)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, doc.Clone())
		if m.limit > 0 && len(out) >= m.limit {
			break
		}
	}
	return out, nil
}
