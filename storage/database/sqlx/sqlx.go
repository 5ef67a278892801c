package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// pgCode returns the SQLSTATE of a postgres error from either supported driver.
func pgCode(err error) string {
	cause := errors.Cause(err)
	var pqErr *pq.Error
	if errors.As(cause, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(cause, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == uniqueViolation
}

// isInvalidText recognizes a value postgres could not parse, e.g. a malformed uuid.
func isInvalidText(err error) bool {
	return pgCode(err) == invalidTextRepresentation
}

func isNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

func newID() string {
	return uuid.NewString()
}

func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs drops the ids no uuid column can hold.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isValidID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

// setClause collects the "col = $n" assignments of an UPDATE and their arguments.
type setClause struct {
	cols []string
	args []interface{}
}

func (s *setClause) add(col string, val interface{}) {
	s.args = append(s.args, val)
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)))
}

// raw adds an assignment without argument, e.g. "version = version + 1".
func (s *setClause) raw(expr string) {
	s.cols = append(s.cols, expr)
}

func (s *setClause) String() string {
	return strings.Join(s.cols, ", ")
}

// arg appends val to the arguments and returns its placeholder.
func (s *setClause) arg(val interface{}) string {
	s.args = append(s.args, val)
	return fmt.Sprintf("$%d", len(s.args))
}

// whereClause collects AND-ed conditions. Conditions use "?" placeholders and are rebound to "$n".
type whereClause struct {
	conds []string
	args  []interface{}
}

func (w *whereClause) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// build expands slice arguments (sqlx.In) and rebinds the query for postgres.
func build(query string, args ...interface{}) (string, []interface{}, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, q), a, nil
}

func orderBy(ordering []core.DBOrdering, fields []string, fallback string) string {
	ords := core.AllowedOrderings(ordering, fields...)
	clauses := make([]string, 0, len(ords)+1)
	for _, ord := range ords {
		clauses = append(clauses, ord.String())
	}
	clauses = append(clauses, fallback)
	return " ORDER BY " + strings.Join(clauses, ", ")
}

// checkAffected returns notFound when res affected no rows.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "getting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
