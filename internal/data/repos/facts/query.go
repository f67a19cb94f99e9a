package facts

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
)

type condition struct {
	sql  string
	args []any
}

// FactQuery is a built, not yet executed, fact search. The access predicate is always the first condition.
type FactQuery struct {
	conds     []condition
	randomize bool
}

func (q *FactQuery) add(sql string, args ...any) {
	q.conds = append(q.conds, condition{sql: sql, args: args})
}

// Where joins every condition with AND.
func (q *FactQuery) Where() (string, []any) {
	parts := make([]string, 0, len(q.conds))
	var args []any
	for _, c := range q.conds {
		parts = append(parts, "("+c.sql+")")
		args = append(args, c.args...)
	}
	return strings.Join(parts, " AND "), args
}

// BuildFactQuery translates filters into predicates scoped to what userID may see:
// facts they own, facts in decks they possess, and facts in public decks.
func BuildFactQuery(s facts.Search, userID uuid.UUID) *FactQuery {
	q := &FactQuery{randomize: s.Randomize}

	if userID == uuid.Nil {
		q.add("fact.deck_id IN (SELECT id FROM deck WHERE public = ?)", true)
	} else {
		q.add(
			"fact.user_id = ? OR fact.deck_id IN (SELECT deck_id FROM deck_possession WHERE user_id = ?) OR fact.deck_id IN (SELECT id FROM deck WHERE public = ?)",
			userID, userID, true,
		)
	}

	if all := strings.TrimSpace(s.All); all != "" {
		p := likePattern(all)
		q.add(
			containsSQL("text")+" OR "+containsSQL("answer")+" OR "+containsSQL("category")+" OR "+containsSQL("identifier"),
			p, p, p, p,
		)
	}
	for _, f := range []struct{ col, val string }{
		{"text", s.Text},
		{"answer", s.Answer},
		{"category", s.Category},
		{"identifier", s.Identifier},
	} {
		if v := strings.TrimSpace(f.val); v != "" {
			q.add(containsSQL(f.col), likePattern(v))
		}
	}

	if s.DeckID != nil && *s.DeckID != uuid.Nil {
		q.add("fact.deck_id = ?", *s.DeckID)
	}
	if len(s.DeckIDs) > 0 {
		q.add("fact.deck_id IN ?", s.DeckIDs)
	}

	addToggle(q, userID, facts.KindMark, s.Marked)
	addToggle(q, userID, facts.KindSuspend, s.Suspended)
	addToggle(q, userID, facts.KindReport, s.Reported)
	return q
}

func addToggle(q *FactQuery, userID uuid.UUID, kind facts.Kind, want *bool) {
	if want == nil {
		return
	}
	exists := "EXISTS (SELECT 1 FROM moderation_toggle mt WHERE mt.fact_id = fact.id AND mt.user_id = ? AND mt.kind = ?)"
	if !*want {
		exists = "NOT " + exists
	}
	q.add(exists, userID, string(kind))
}

func containsSQL(col string) string {
	return fmt.Sprintf(`LOWER(fact.%s) LIKE ? ESCAPE '\'`, col)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(v string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(v)) + "%"
}

// Execute counts and pages with the same predicate inside one transaction.
func (r *factRepo) Execute(dbc dbctx.Context, q *FactQuery, skip, limit int) ([]*types.Fact, int64, error) {
	if q == nil {
		return nil, 0, fmt.Errorf("nil fact query")
	}
	if skip < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("invalid pagination skip=%d limit=%d", skip, limit)
	}
	where, args := q.Where()

	var (
		out   []*types.Fact
		total int64
	)
	err := dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&types.Fact{}).Where(where, args...).Count(&total).Error; err != nil {
			return fmt.Errorf("count facts: %w", err)
		}
		page := tx.Model(&types.Fact{}).Where(where, args...)
		if q.randomize {
			page = page.Order("RANDOM()")
		} else {
			page = page.Order("fact.created_at ASC").Order("fact.id ASC")
		}
		if err := page.Offset(skip).Limit(limit).Find(&out).Error; err != nil {
			return fmt.Errorf("page facts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
