package postgres

import (
	"fmt"
	"strings"

	"github.com/dafibh/tally/tally-backend/internal/domain"
)

const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, t.amount, t.description, t.transaction_date, t.created_at,
	       c.name, c.type, c.color
	FROM transactions t
	JOIN categories c ON c.id = t.category_id`

const transactionOrder = ` ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// whereClause is the only place transaction filters become SQL
type whereClause struct {
	conds []string
	args  []interface{}
}

func (w *whereClause) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereClause) String() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// placeholder returns the next bind parameter reference for arg
func (w *whereClause) placeholder(arg interface{}) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

// buildTransactionWhere translates filters into a parameterized WHERE clause
func buildTransactionWhere(userID int32, f *domain.TransactionFilters) *whereClause {
	w := &whereClause{}
	w.add("t.user_id = $%d", userID)

	if f == nil {
		return w
	}
	if f.DescriptionContains != nil {
		w.add(`t.description ILIKE $%d ESCAPE '\'`, "%"+escapeLike(*f.DescriptionContains)+"%")
	}
	if f.CategoryID != nil {
		w.add("t.category_id = $%d", *f.CategoryID)
	}
	if f.Month != nil {
		start := *f.Month
		w.add("t.transaction_date >= $%d", dateToPg(start))
		w.add("t.transaction_date < $%d", dateToPg(start.AddDate(0, 1, 0)))
	}
	return w
}
