// Package memory provides an in-memory relation resolver for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"gatehouse/internal/audit"
)

// Entry is one resolvable row. Translated names are keyed by language code;
// Name serves the direct-field and computed-expression strategies.
type Entry struct {
	Name         string
	Translations map[string]string
	Extra        map[string]string
}

// InMemory resolves ids from seeded tables. The table key is the rule's
// Table (or TranslationTable for translation joins).
type InMemory struct {
	mu       sync.RWMutex
	tables   map[string]map[int64]Entry
	baseLang string
}

func NewInMemory(baseLang string) *InMemory {
	if baseLang == "" {
		baseLang = "en"
	}
	return &InMemory{tables: map[string]map[int64]Entry{}, baseLang: baseLang}
}

// Seed replaces the rows of one table.
func (r *InMemory) Seed(table string, rows map[int64]Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[table] = rows
}

func (r *InMemory) Resolve(_ context.Context, rule audit.RelationRule, ids []int64, lang string) ([]audit.ResolvedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table := rule.Table
	if rule.Strategy == audit.StrategyTranslationJoin {
		table = rule.TranslationTable
	}

	switch rule.Strategy {
	case audit.StrategyDirectField, audit.StrategyComputedExpression, audit.StrategyTranslationJoin:
	default:
		return nil, fmt.Errorf("%w %q", audit.ErrUnknownStrategy, rule.Strategy)
	}

	rows := r.tables[table]
	var items []audit.ResolvedItem
	for _, id := range ids {
		entry, ok := rows[id]
		if !ok {
			continue
		}
		name := entry.Name
		if rule.Strategy == audit.StrategyTranslationJoin {
			name = pickTranslation(entry.Translations, lang, r.baseLang)
		}
		if name == "" {
			continue
		}
		items = append(items, audit.ResolvedItem{ID: id, Name: name, Extra: entry.Extra})
	}
	return items, nil
}

func pickTranslation(translations map[string]string, active, base string) string {
	if name := translations[active]; name != "" {
		return name
	}
	if name := translations[base]; name != "" {
		return name
	}
	// Deterministic "any language": lowest language code wins.
	var bestLang, bestName string
	for lang, name := range translations {
		if name == "" {
			continue
		}
		if bestLang == "" || lang < bestLang {
			bestLang, bestName = lang, name
		}
	}
	return bestName
}
