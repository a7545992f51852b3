package events

import "errors"

// ErrStopIteration signals the normal end of an event stream.
var ErrStopIteration = errors.New("stop iterating")

// Iterator is a one-shot, ordered stream of events.
type Iterator interface {
	// Next returns the next Event and its offset in the stream.
	// Returns ErrStopIteration when the end of the stream is reached.
	Next() (Event, int, error)
	// Iterate calls iter for every remaining event with its offset.
	// If iter returns ErrStopIteration, iteration stops and nil is returned.
	Iterate(iter func(event Event, i int) error) error
}

type sliceIterator struct {
	events []Event
	next   int
}

func FromSlice(evts []Event) Iterator {
	return &sliceIterator{events: evts}
}

func (s *sliceIterator) Next() (Event, int, error) {
	if s.next >= len(s.events) {
		return nil, -1, ErrStopIteration
	}
	cur := s.next
	s.next++
	return s.events[cur], cur, nil
}

func (s *sliceIterator) Iterate(iter func(event Event, i int) error) error {
	return iterate(s, iter)
}

type channelIterator struct {
	ch   <-chan Event
	next int
}

func FromChannel(ch <-chan Event) Iterator {
	return &channelIterator{ch: ch}
}

func (c *channelIterator) Next() (Event, int, error) {
	event, ok := <-c.ch
	if !ok {
		return nil, -1, ErrStopIteration
	}
	cur := c.next
	c.next++
	return event, cur, nil
}

func (c *channelIterator) Iterate(iter func(event Event, i int) error) error {
	return iterate(c, iter)
}

func iterate(src Iterator, iter func(event Event, i int) error) error {
	for {
		event, i, err := src.Next()
		if err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
		if err := iter(event, i); err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
	}
}

// Drain consumes and discards the rest of an iterator in the background so
// an upstream producer is never left blocked.
func Drain(iter Iterator) {
	go func() {
		_ = iter.Iterate(func(Event, int) error {
			return nil
		})
	}()
}
