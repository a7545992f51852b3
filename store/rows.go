package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/darkermemo/searchpipe/pkg/events"
	"github.com/hashicorp/go-hclog"
)

var ErrUnexpectedColumnType = errors.New("unexpected column type")

// newRowIterator adapts a result set into an events.Iterator, one event per
// row. The iterator owns the rows and closes them at the end of the stream.
func newRowIterator(log hclog.Logger, rows *sql.Rows) (events.Iterator, error) {
	cols, err := rows.Columns()
	if err != nil {
		log.Error("Failed to read result columns", "error", err)
		return nil, err
	}
	if len(cols) == 0 {
		_ = rows.Close()
		return events.FromSlice(nil), nil
	}
	return &rowIterator{cols: cols, rows: rows}, nil
}

type rowIterator struct {
	cols []string
	rows *sql.Rows
	next int
}

func (r *rowIterator) Next() (events.Event, int, error) {
	if !r.rows.Next() {
		_ = r.rows.Close()
		return nil, -1, events.ErrStopIteration
	}
	vals := make([]any, len(r.cols))
	for i := range vals {
		if r.cols[i] == "evt_id" {
			vals[i] = new(int64)
			continue
		}
		vals[i] = &sql.NullString{}
	}
	if err := r.rows.Scan(vals...); err != nil {
		_ = r.rows.Close()
		return nil, -1, err
	}

	event := events.Event{}
	for i, v := range vals {
		switch s := v.(type) {
		case *sql.NullString:
			if s.Valid {
				event[r.cols[i]] = s.String
			}
		case *int64:
			event[r.cols[i]] = *s
		default:
			return nil, -1, fmt.Errorf("%w: %T", ErrUnexpectedColumnType, v)
		}
	}
	cur := r.next
	r.next++
	return event, cur, nil
}

func (r *rowIterator) Iterate(iter func(event events.Event, i int) error) error {
	for {
		event, i, err := r.Next()
		if err != nil {
			if errors.Is(err, events.ErrStopIteration) {
				return nil
			}
			return err
		}
		if err := iter(event, i); err != nil {
			if errors.Is(err, events.ErrStopIteration) {
				return nil
			}
			return err
		}
	}
}
