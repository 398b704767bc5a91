package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"qms/pkg/platform/sentinel"
)

type widget struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (w *widget) RecordID() string { return w.ID }

// collectionSuite runs the same contract against every Collection
// implementation. newCollection must return an empty collection.
type collectionSuite struct {
	suite.Suite
	ctx           context.Context
	newCollection func() Collection[*widget]
	coll          Collection[*widget]
}

func (s *collectionSuite) SetupTest() {
	s.ctx = context.Background()
	s.coll = s.newCollection()
}

func (s *collectionSuite) TestInsertAndFind() {
	s.Require().NoError(s.coll.Insert(s.ctx, &widget{ID: "w1", Name: "gauge", Tags: []string{"a"}}))

	got, err := s.coll.FindByID(s.ctx, "w1")
	s.Require().NoError(err)
	s.Equal("gauge", got.Name)
	s.Equal([]string{"a"}, got.Tags)

	_, err = s.coll.FindByID(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *collectionSuite) TestInsertDuplicateConflicts() {
	s.Require().NoError(s.coll.Insert(s.ctx, &widget{ID: "w1"}))
	s.ErrorIs(s.coll.Insert(s.ctx, &widget{ID: "w1"}), sentinel.ErrConflict)
}

func (s *collectionSuite) TestUpdate() {
	s.Require().NoError(s.coll.Insert(s.ctx, &widget{ID: "w1", Name: "old"}))
	s.Require().NoError(s.coll.Update(s.ctx, &widget{ID: "w1", Name: "new"}))

	got, err := s.coll.FindByID(s.ctx, "w1")
	s.Require().NoError(err)
	s.Equal("new", got.Name)

	s.ErrorIs(s.coll.Update(s.ctx, &widget{ID: "nope"}), sentinel.ErrNotFound)
}

func (s *collectionSuite) TestReturnedRecordsAreCopies() {
	s.Require().NoError(s.coll.Insert(s.ctx, &widget{ID: "w1", Name: "gauge"}))

	got, err := s.coll.FindByID(s.ctx, "w1")
	s.Require().NoError(err)
	got.Name = "mutated"

	again, err := s.coll.FindByID(s.ctx, "w1")
	s.Require().NoError(err)
	s.Equal("gauge", again.Name)
}

func (s *collectionSuite) TestListIsOrderedByID() {
	for _, id := range []string{"c", "a", "b"} {
		s.Require().NoError(s.coll.Insert(s.ctx, &widget{ID: id}))
	}
	all, err := s.coll.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func (s *collectionSuite) TestListEmpty() {
	all, err := s.coll.List(s.ctx)
	s.Require().NoError(err)
	s.NotNil(all)
	s.Empty(all)
}

func (s *collectionSuite) TestFindManySkipsUnknown() {
	s.Require().NoError(s.coll.Insert(s.ctx, &widget{ID: "a"}))
	s.Require().NoError(s.coll.Insert(s.ctx, &widget{ID: "b"}))

	got, err := s.coll.FindMany(s.ctx, []string{"b", "zz", "a"})
	s.Require().NoError(err)
	s.Len(got, 2)

	none, err := s.coll.FindMany(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *collectionSuite) TestExecute() {
	s.Require().NoError(s.coll.Insert(s.ctx, &widget{ID: "w1", Count: 1}))

	s.Run("applies mutation", func() {
		got, err := s.coll.Execute(s.ctx, "w1", func(w *widget) error {
			w.Count++
			return nil
		})
		s.Require().NoError(err)
		s.Equal(2, got.Count)

		stored, err := s.coll.FindByID(s.ctx, "w1")
		s.Require().NoError(err)
		s.Equal(2, stored.Count)
	})

	s.Run("callback error leaves record untouched", func() {
		boom := errors.New("rejected")
		_, err := s.coll.Execute(s.ctx, "w1", func(w *widget) error {
			w.Count = 100
			return boom
		})
		s.ErrorIs(err, boom)

		stored, err := s.coll.FindByID(s.ctx, "w1")
		s.Require().NoError(err)
		s.Equal(2, stored.Count)
	})

	s.Run("missing record", func() {
		_, err := s.coll.Execute(s.ctx, "nope", func(*widget) error { return nil })
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *collectionSuite) TestExecuteSerializesWriters() {
	s.Require().NoError(s.coll.Insert(s.ctx, &widget{ID: "w1"}))

	const writers = 20
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.coll.Execute(s.ctx, "w1", func(w *widget) error {
				w.Count++
				w.Tags = append(w.Tags, fmt.Sprint(i))
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	stored, err := s.coll.FindByID(s.ctx, "w1")
	s.Require().NoError(err)
	s.Equal(writers, stored.Count)
	s.Len(stored.Tags, writers)
}

func TestMemoryCollection(t *testing.T) {
	suite.Run(t, &collectionSuite{
		newCollection: func() Collection[*widget] { return NewMemory[*widget]() },
	})
}
