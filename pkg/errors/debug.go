package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain into log fields. It is never rendered to
// clients.
type ErrorDump struct {
	TopMessage string
	Code       Code
	Chain      []string

	SQLState      string
	SQLConstraint string
	SQLTable      string
	SQLDetail     string
	SQLMessage    string
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.SQLState = pgxErr.Code
		d.SQLConstraint = pgxErr.ConstraintName
		d.SQLTable = pgxErr.TableName
		d.SQLDetail = pgxErr.Detail
		d.SQLMessage = pgxErr.Message
	case errors.As(err, &pqErr):
		d.SQLState = string(pqErr.Code)
		d.SQLConstraint = pqErr.Constraint
		d.SQLTable = pqErr.Table
		d.SQLDetail = pqErr.Detail
		d.SQLMessage = pqErr.Message
	default:
		// sqlite surfaces constraint failures only as text; the innermost
		// link carries the bare driver message.
		for i := len(d.Chain) - 1; i >= 0; i-- {
			if strings.Contains(d.Chain[i], "constraint failed") {
				_, msg, _ := strings.Cut(d.Chain[i], ": ")
				d.SQLMessage = msg
				break
			}
		}
	}
	return d
}

// Fields returns the non-empty parts of the dump keyed for structured logs.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	for k, v := range map[string]string{
		"sql_state":      d.SQLState,
		"sql_constraint": d.SQLConstraint,
		"sql_table":      d.SQLTable,
		"sql_detail":     d.SQLDetail,
		"sql_message":    d.SQLMessage,
	} {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
