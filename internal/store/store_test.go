package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/livethread/internal/domain"
)

func comment(id string, created int64) domain.Comment {
	return domain.Comment{ID: id, Author: "u" + id, Body: "body " + id, CreatedAt: time.Unix(created, 0).UTC()}
}

func ids(comments []domain.Comment) []string {
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.ID
	}
	return out
}

func TestMergeScenario(t *testing.T) {
	t.Parallel()

	s := New(0)
	assert.Equal(t, 2, s.Merge([]domain.Comment{comment("a", 100), comment("b", 50)}))
	assert.Equal(t, 1, s.Merge([]domain.Comment{comment("b", 50), comment("c", 150)}))
	assert.Equal(t, []string{"b", "a", "c"}, ids(s.All()))
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()

	batch := []domain.Comment{comment("x", 3), comment("y", 1), comment("z", 2)}

	once := New(10)
	once.Merge(batch)

	twice := New(10)
	twice.Merge(batch)
	assert.Equal(t, 0, twice.Merge(batch))

	assert.Equal(t, once.All(), twice.All())
}

func TestMergeKeepsFirstVersion(t *testing.T) {
	t.Parallel()

	s := New(10)
	s.Merge([]domain.Comment{comment("a", 1)})
	edited := comment("a", 1)
	edited.Body = "edited"
	assert.Equal(t, 0, s.Merge([]domain.Comment{edited}))
	assert.Equal(t, "body a", s.All()[0].Body)
}

func TestMergeOrderingStableOnTies(t *testing.T) {
	t.Parallel()

	s := New(10)
	s.Merge([]domain.Comment{comment("p", 5), comment("q", 5), comment("r", 1)})
	s.Merge([]domain.Comment{comment("s", 5)})

	all := s.All()
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.Before(all[i-1].CreatedAt))
	}
	assert.Equal(t, []string{"r", "p", "q", "s"}, ids(all))
}

func TestMergeBound(t *testing.T) {
	t.Parallel()

	s := New(DefaultLimit)
	var batch []domain.Comment
	for i := 0; i < DefaultLimit+250; i++ {
		// Reverse arrival to force a real sort.
		batch = append(batch, comment(fmt.Sprintf("c%d", i), int64(10_000-i)))
	}
	// Only the retained comments count as added.
	require.Equal(t, DefaultLimit, s.Merge(batch))

	all := s.All()
	require.Len(t, all, DefaultLimit)
	// Retained set is the most recent by creation time.
	assert.Equal(t, time.Unix(10_000-DefaultLimit+1, 0).UTC(), all[0].CreatedAt)
	assert.Equal(t, time.Unix(10_000, 0).UTC(), all[len(all)-1].CreatedAt)
}

func TestEvictedNotReadded(t *testing.T) {
	t.Parallel()

	s := New(2)
	s.Merge([]domain.Comment{comment("old", 1), comment("mid", 2), comment("new", 3)})
	assert.Equal(t, []string{"mid", "new"}, ids(s.All()))
	assert.False(t, s.Contains("old"))

	assert.Equal(t, 0, s.Merge([]domain.Comment{comment("old", 1)}))
	assert.Equal(t, []string{"mid", "new"}, ids(s.All()))
}

func TestEvictedAtSameTimeNotReadded(t *testing.T) {
	t.Parallel()

	s := New(2)
	s.Merge([]domain.Comment{comment("a", 5), comment("b", 5), comment("c", 5)})
	assert.Equal(t, []string{"b", "c"}, ids(s.All()))

	assert.Equal(t, 0, s.Merge([]domain.Comment{comment("a", 5)}))
	assert.Equal(t, []string{"b", "c"}, ids(s.All()))

	// An unseen comment at the same time is still new.
	assert.Equal(t, 1, s.Merge([]domain.Comment{comment("d", 5)}))
	assert.Equal(t, []string{"c", "d"}, ids(s.All()))
}

func TestMergeCountsOnlyRetained(t *testing.T) {
	t.Parallel()

	s := New(2)
	s.Merge([]domain.Comment{comment("mid", 2), comment("new", 3)})

	// Older than everything retained: trimmed in the same merge.
	assert.Equal(t, 0, s.Merge([]domain.Comment{comment("late", 1)}))
	assert.Equal(t, 1, s.Merge([]domain.Comment{comment("later", 0), comment("newest", 4)}))
	assert.Equal(t, []string{"new", "newest"}, ids(s.All()))
}

func TestBookkeepingBounded(t *testing.T) {
	t.Parallel()

	s := New(10)
	for i := 0; i < 500; i++ {
		s.Merge([]domain.Comment{comment(fmt.Sprintf("c%d", i), int64(i))})
	}
	assert.Equal(t, 10, s.Len())
	assert.Len(t, s.index, 10)
	assert.Len(t, s.atFloor, 1)
}

func TestMergeSkipsEmptyID(t *testing.T) {
	t.Parallel()

	s := New(5)
	assert.Equal(t, 0, s.Merge([]domain.Comment{{Body: "x"}}))
	assert.False(t, s.Contains(""))
}

func TestAllReturnsSnapshot(t *testing.T) {
	t.Parallel()

	s := New(5)
	s.Merge([]domain.Comment{comment("a", 1)})
	snap := s.All()
	snap[0].Body = "mutated"
	assert.Equal(t, "body a", s.All()[0].Body)
}

func TestConcurrentMergeAndRead(t *testing.T) {
	t.Parallel()

	s := New(100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s.Merge([]domain.Comment{comment(fmt.Sprintf("m%d", i), int64(i))})
		}
	}()
	for i := 0; i < 200; i++ {
		all := s.All()
		assert.LessOrEqual(t, len(all), 100)
	}
	<-done
	assert.Equal(t, 100, s.Len())
}
