package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSortByDateIsStable(t *testing.T) {
	type scene struct {
		id   string
		date time.Time
	}
	scenes := []scene{{"c", day(3)}, {"a1", day(1)}, {"b", day(2)}, {"a2", day(1)}}

	SortByDate(scenes, func(s scene) time.Time { return s.date }, true)

	var ids []string
	for _, s := range scenes {
		ids = append(ids, s.id)
	}
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, ids)
}

func TestGetSortedKeys(t *testing.T) {
	m := map[time.Time]int{day(2): 2, day(1): 1, day(3): 3}

	assert.Equal(t, []time.Time{day(3), day(2), day(1)}, GetSortedKeys(m, false))
	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, GetSortedKeys(m, true))
}
