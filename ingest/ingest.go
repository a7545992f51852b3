// Package ingest reads log files into event streams destined for the
// events table. Lines that parse as JSON objects contribute their fields
// directly; anything else lands in the @message field.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/darkermemo/searchpipe/pkg/events"
	"github.com/nxadm/tail"
)

const (
	readTimeField = "@read_timestamp"
	readLineField = "@read_line_number"
)

// Source reads each line of the named file, emitting one event per line.
func Source(ctx context.Context, filename string) (events.Iterator, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	ch := make(chan events.Event)
	go func() {
		defer close(ch)
		defer func() {
			_ = f.Close()
		}()
		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			select {
			case <-ctx.Done():
				return
			default:
			}
			select {
			case <-ctx.Done():
				return
			case ch <- parseLine(scanner.Text(), line, time.Now()):
			}
		}
	}()
	return events.FromChannel(ch), nil
}

// Follow watches the named file for new lines, emitting an event for each
// one until the context is cancelled. The file is reopened if rotated.
func Follow(ctx context.Context, filename string) (events.Iterator, error) {
	t, err := tail.TailFile(filename, tail.Config{
		ReOpen:    true,
		MustExist: true,
		Follow:    true,
	})
	if err != nil {
		return nil, err
	}

	ch := make(chan events.Event)
	go func() {
		defer close(ch)
		defer func() {
			_ = t.Stop()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case l, ok := <-t.Lines:
				if !ok {
					return
				}
				ch <- parseLine(l.Text, l.Num, l.Time)
			}
		}
	}()
	return events.FromChannel(ch), nil
}

func parseLine(text string, line int, read time.Time) events.Event {
	event := events.Event{
		readTimeField: read.Format(time.RFC3339),
		readLineField: line,
	}
	if err := json.Unmarshal([]byte(text), &event); err != nil {
		event[events.StandardMessageField] = text
	}
	return event
}
