package store

import (
	"context"
)

// Scalar queries the first row, first column into T
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Many uses a custom scanner to map all rows into []T
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	var out []T
	err := Each(ctx, q, func(r Row) error {
		item, err := scan(r)
		if err != nil {
			return err
		}
		out = append(out, item)
		return nil
	}, sql, args...)
	return out, err
}

// Each streams rows to fn without buffering the result set.
// A non-nil error from fn stops the iteration and is returned.
func Each(ctx context.Context, q RowQuerier, fn func(Row) error, sql string, args ...any) error {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	r := &rowFromRows{rows: rows}
	for rows.Next() {
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// rowFromRows gives a Row facade over a current Rows position
type rowFromRows struct{ rows Rows }

func (r *rowFromRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
