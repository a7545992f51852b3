// Package store owns the canonical events table that generated search SQL
// targets. It lands ingested events into SQLite, widening the table with a
// column per newly seen field.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/darkermemo/searchpipe/pkg/events"
	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite"
)

const createTable = `
create table if not exists %s (
	evt_id integer primary key
)`

var (
	tablePattern = regexp.MustCompile(`^[\w\d]+(\.[\w\d]+)?$`)
	ErrBadTable  = errors.New("invalid table name")
)

// EventStore is a store for events using SQLite as a storage engine.
type EventStore struct {
	db  *sql.DB
	log hclog.Logger
}

func NewStore(log hclog.Logger, filename string) (*EventStore, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}
	return &EventStore{
		db:  db,
		log: log.Named("event-store"),
	}, nil
}

func (s *EventStore) Close() error {
	return s.db.Close()
}

// QueryEvents reads back every row of an events table as an iterator. It is
// a raw table scan, not an execution path for transpiled SQL.
func (s *EventStore) QueryEvents(ctx context.Context, table string) (events.Iterator, error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %s", ErrBadTable, table)
	}
	rows, err := s.db.QueryContext(ctx, "select * from "+table)
	if err != nil {
		return nil, err
	}
	return newRowIterator(s.log, rows)
}

// Sink lands all events from iter into the named table, creating it and any
// missing columns as needed. On error the iterator is drained so upstream
// producers are not left blocked.
func (s *EventStore) Sink(ctx context.Context, iter events.Iterator, table string) error {
	if !tablePattern.MatchString(table) {
		return fmt.Errorf("%w: %s", ErrBadTable, table)
	}
	s.log.Debug("Establishing connection")
	conn, err := s.db.Conn(ctx)
	if err != nil {
		events.Drain(iter)
		return err
	}
	defer func() {
		_ = conn.Close()
	}()
	s.log.Debug("Ensuring the events table is present", "table", table)
	if err := s.ensureTable(ctx, conn, table); err != nil {
		events.Drain(iter)
		return err
	}
	cols, err := s.tableColumns(ctx, conn, table)
	if err != nil {
		events.Drain(iter)
		return err
	}
	colMap := map[string]bool{}
	for _, c := range cols {
		colMap[c] = true
	}
	s.log.Debug("Starting sink operation", "table", table)
	return s.sink(ctx, conn, table, iter, colMap)
}

func (s *EventStore) ensureTable(ctx context.Context, conn *sql.Conn, table string) error {
	_, err := conn.ExecContext(ctx, fmt.Sprintf(createTable, table))
	return err
}

func (s *EventStore) tableColumns(ctx context.Context, conn *sql.Conn, table string) ([]string, error) {
	rows, err := conn.QueryContext(ctx, "select * from "+table+" limit 0")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	return rows.Columns()
}

func (s *EventStore) sink(ctx context.Context, conn *sql.Conn, table string, iter events.Iterator, colMap map[string]bool) error {
	log := s.log.With("table", table)
	err := iter.Iterate(func(event events.Event, i int) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var intoFields []string
		for k := range event {
			if !colMap[k] {
				log.Debug("New field discovered, adding to table", "field", k)
				if err := s.addColumn(ctx, conn, table, k); err != nil {
					log.Error("Failed to add field to table", "field", k, "error", err)
					return err
				}
				colMap[k] = true
			}
			intoFields = append(intoFields, k)
		}

		var cols strings.Builder
		var params strings.Builder
		for i, f := range intoFields {
			if i > 0 {
				cols.WriteString(",")
				params.WriteString(",")
			}
			cols.WriteString(`"` + f + `"`)
			params.WriteString("?")
		}
		query := fmt.Sprintf("insert into %s (%s) values (%s)", table, cols.String(), params.String())
		args := make([]any, len(intoFields))
		for i, f := range intoFields {
			str, ok := event.AsString(f)
			if !ok {
				log.Warn("Field not able to be coerced to string", "field", f)
			}
			args[i] = str
		}
		if _, err := conn.ExecContext(ctx, query, args...); err != nil {
			log.Error("Failed to insert into table", "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		log.Error("Error sinking to DB, draining iterator", "error", err)
		events.Drain(iter)
		return err
	}
	return nil
}

func (s *EventStore) addColumn(ctx context.Context, conn *sql.Conn, table, colName string) error {
	_, err := conn.ExecContext(ctx, fmt.Sprintf(`alter table %s add column "%s" text null`, table, colName))
	return err
}
