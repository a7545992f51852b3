package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_AsString(t *testing.T) {
	e := Event{"user": "admin", "status": 404}
	s, ok := e.AsString("user")
	require.True(t, ok)
	assert.Equal(t, "admin", s)

	s, ok = e.AsString("status")
	require.True(t, ok)
	assert.Equal(t, "404", s)

	_, ok = e.AsString("missing")
	assert.False(t, ok)
}

func TestEvent_AsInt(t *testing.T) {
	e := Event{"a": 7, "b": "12", "c": 3.0, "d": "nope"}
	for field, expected := range map[string]int64{"a": 7, "b": 12, "c": 3} {
		i, ok := e.AsInt(field)
		require.True(t, ok, field)
		assert.Equal(t, expected, i)
	}
	_, ok := e.AsInt("d")
	assert.False(t, ok)
}

func TestFromSlice(t *testing.T) {
	iter := FromSlice([]Event{{"n": 1}, {"n": 2}, {"n": 3}})
	var seen []int
	err := iter.Iterate(func(event Event, i int) error {
		assert.Equal(t, len(seen), i)
		n, _ := event.AsInt("n")
		seen = append(seen, int(n))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)

	_, _, err = iter.Next()
	assert.ErrorIs(t, err, ErrStopIteration)
}

func TestFromChannel_StopEarly(t *testing.T) {
	ch := make(chan Event, 4)
	for i := 0; i < 4; i++ {
		ch <- Event{"n": i}
	}
	close(ch)

	iter := FromChannel(ch)
	count := 0
	err := iter.Iterate(func(Event, int) error {
		count++
		if count == 2 {
			return ErrStopIteration
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
