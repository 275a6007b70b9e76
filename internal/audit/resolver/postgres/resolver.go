// Package postgres interprets relation resolution rules against the primary
// database. The audit engine stays storage-agnostic; all SQL lives here.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gatehouse/internal/audit"
)

// Resolver implements audit.Resolver over database/sql.
type Resolver struct {
	db       *sql.DB
	baseLang string
}

// New creates a resolver. baseLang is the system base language used as the
// first fallback in translation-joined lookups.
func New(db *sql.DB, baseLang string) *Resolver {
	if baseLang == "" {
		baseLang = "en"
	}
	return &Resolver{db: db, baseLang: baseLang}
}

// Resolve turns raw ids into named items per the rule's strategy. Ids that
// have no matching row are simply missing from the result; the engine
// synthesizes placeholders for those, so nothing is ever silently dropped.
func (r *Resolver) Resolve(ctx context.Context, rule audit.RelationRule, ids []int64, lang string) ([]audit.ResolvedItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	switch rule.Strategy {
	case audit.StrategyDirectField:
		return r.resolveColumn(ctx, rule, ids, quoteIdent(rule.NameColumn))
	case audit.StrategyComputedExpression:
		return r.resolveColumn(ctx, rule, ids, "("+rule.Expression+")")
	case audit.StrategyTranslationJoin:
		return r.resolveTranslated(ctx, rule, ids, lang)
	default:
		return nil, fmt.Errorf("%w %q", audit.ErrUnknownStrategy, rule.Strategy)
	}
}

// resolveColumn covers the direct-field and computed-expression strategies:
// one query against the target table, name taken from a column or a declared
// expression.
func (r *Resolver) resolveColumn(ctx context.Context, rule audit.RelationRule, ids []int64, nameExpr string) ([]audit.ResolvedItem, error) {
	idCol := quoteIdent(idColumn(rule))
	cols := []string{idCol, nameExpr}
	for _, extra := range rule.ExtraColumns {
		cols = append(cols, quoteIdent(extra))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1::bigint[])`,
		strings.Join(cols, ", "), quoteIdent(rule.Table), idCol)

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rule.Table, err)
	}
	defer rows.Close()

	var items []audit.ResolvedItem
	for rows.Next() {
		item := audit.ResolvedItem{}
		var name sql.NullString
		extras := make([]sql.NullString, len(rule.ExtraColumns))
		dest := []any{&item.ID, &name}
		for i := range extras {
			dest = append(dest, &extras[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", rule.Table, err)
		}
		item.Name = name.String
		for i, col := range rule.ExtraColumns {
			if extras[i].Valid {
				if item.Extra == nil {
					item.Extra = map[string]string{}
				}
				item.Extra[col] = extras[i].String
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// resolveTranslated reads names from a per-language translation table. For
// each id the fallback chain is: active language, base language, any
// available language (lowest code for determinism).
func (r *Resolver) resolveTranslated(ctx context.Context, rule audit.RelationRule, ids []int64, lang string) ([]audit.ResolvedItem, error) {
	fkCol := quoteIdent(rule.ForeignKeyColumn)
	langCol := quoteIdent(langColumn(rule))
	nameCol := quoteIdent(rule.NameColumn)

	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = ANY($1::bigint[]) ORDER BY %s, %s`,
		fkCol, langCol, nameCol, quoteIdent(rule.TranslationTable), fkCol, fkCol, langCol)

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rule.TranslationTable, err)
	}
	defer rows.Close()

	byID := map[int64][]candidate{}
	for rows.Next() {
		var (
			id      int64
			rowLang string
			name    sql.NullString
		)
		if err := rows.Scan(&id, &rowLang, &name); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", rule.TranslationTable, err)
		}
		if name.Valid && name.String != "" {
			byID[id] = append(byID[id], candidate{lang: rowLang, name: name.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var items []audit.ResolvedItem
	for _, id := range ids {
		candidates := byID[id]
		if len(candidates) == 0 {
			continue
		}
		name := pickTranslation(candidates, lang, r.baseLang)
		items = append(items, audit.ResolvedItem{ID: id, Name: name})
	}
	return items, nil
}

type candidate struct {
	lang string
	name string
}

func pickTranslation(candidates []candidate, active, base string) string {
	for _, want := range []string{active, base} {
		if want == "" {
			continue
		}
		for _, c := range candidates {
			if c.lang == want {
				return c.name
			}
		}
	}
	// Rows arrive ordered by language code, so this is deterministic.
	return candidates[0].name
}

func idColumn(rule audit.RelationRule) string {
	if rule.IDColumn != "" {
		return rule.IDColumn
	}
	return "id"
}

func langColumn(rule audit.RelationRule) string {
	if rule.LangColumn != "" {
		return rule.LangColumn
	}
	return "lang_code"
}

// quoteIdent protects identifiers that come from the injected configuration.
// Rules are operator-supplied, not user input, but quoting keeps a typo from
// becoming an injection vector.
func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
