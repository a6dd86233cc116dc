package storage

import (
	"database/sql"
	"strings"

	"ledger/internal/core"
)

// maxBatchIDs keeps IN lists well below SQLite's bound-variable limit.
const maxBatchIDs = 500

// idBatches splits ids, without duplicates, into slices of at most
// maxBatchIDs.
func idBatches(ids []int64) [][]int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var out [][]int64
	for len(unique) > 0 {
		n := min(len(unique), maxBatchIDs)
		out = append(out, unique[:n])
		unique = unique[n:]
	}
	return out
}

// inClause appends "(?, ?, ...)" for ids to prefix.
func inClause(prefix string, ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return prefix + "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func affected(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.NewStorageError(op, err)
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isRowViolation reports a CHECK or NOT NULL failure: the row itself is
// invalid, the database is fine.
func isRowViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "CHECK constraint failed") || strings.Contains(msg, "NOT NULL constraint failed")
}

// constraintDetail trims a driver message down to the failed constraint.
func constraintDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "constraint failed"); i >= 0 {
		if j := strings.LastIndex(msg[:i], ": "); j >= 0 {
			return msg[j+2:]
		}
	}
	return msg
}
