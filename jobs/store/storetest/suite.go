// Package storetest provides a reusable test suite for jobs.Store
// implementations.
package storetest

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/mycok/uJobs/jobs"
)

// BaseSuite defines a set of re-usable tests that can be executed against
// any concrete type that implements the jobs.Store interface.
type BaseSuite struct {
	store jobs.Store
}

// SetStore sets the store under test.
func (s *BaseSuite) SetStore(store jobs.Store) {
	s.store = store
}

// TestUpsert verifies the insert and update logic.
func (s *BaseSuite) TestUpsert(c *check.C) {
	firstSeen := time.Now().Add(-12 * time.Hour).UTC().Truncate(time.Second)
	p := &jobs.Posting{
		URL:          "https://acme.com/jobs/1",
		Title:        "Backend Engineer",
		Company:      "Acme",
		Location:     "Berlin, DE",
		DatePosted:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Description:  "Build APIs in Go.",
		Keywords:     []string{"apis", "build"},
		Board:        jobs.BoardOther,
		Salary:       &jobs.Salary{Currency: "EUR", Min: 70000, Max: 90000, Unit: "YEAR"},
		DiscoveredAt: firstSeen,
	}

	err := s.store.Upsert(p)
	c.Assert(err, check.IsNil, check.Commentf("insert: %v", err))
	c.Assert(p.ID, check.Not(check.Equals), uuid.Nil)

	got, err := s.store.FindByID(p.ID)
	c.Assert(err, check.IsNil)
	c.Assert(got, check.DeepEquals, p)

	// A tracking variant of the same URL updates the stored posting.
	updated := &jobs.Posting{
		URL:          "https://www.acme.com/jobs/1?utm_source=google",
		Title:        "Senior Backend Engineer",
		Company:      "Acme",
		Description:  "Build more APIs in Go.",
		Keywords:     []string{"apis"},
		Board:        jobs.BoardOther,
		Remote:       true,
		DiscoveredAt: time.Now().UTC().Truncate(time.Second),
	}

	err = s.store.Upsert(updated)
	c.Assert(err, check.IsNil, check.Commentf("update: %v", err))
	c.Assert(updated.ID, check.Equals, p.ID)
	c.Assert(updated.URL, check.Equals, p.URL)
	c.Assert(updated.DiscoveredAt, check.Equals, firstSeen)

	got, err = s.store.FindByID(p.ID)
	c.Assert(err, check.IsNil)
	c.Assert(got.Title, check.Equals, "Senior Backend Engineer")
	c.Assert(got.Remote, check.Equals, true)
	c.Assert(got.Salary, check.IsNil)
	c.Assert(got.DiscoveredAt, check.Equals, firstSeen)
}

// TestUpsertWithoutURL verifies that postings need a URL.
// TestConcurrentUpsertsOfOneURL verifies that racing upserts of the same
// posting never create a second copy.
func (s *BaseSuite) TestConcurrentUpsertsOfOneURL(c *check.C) {
	const writers = 8

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, writers)
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			p := &jobs.Posting{
				URL:         "https://acme.com/jobs/race?utm_source=w" + fmt.Sprint(i),
				Title:       "Site Reliability Engineer",
				Company:     "Acme",
				Description: "Keep services running.",
			}
			errs[i] = s.store.Upsert(p)
			ids[i] = p.ID
		}(i)
	}

	wg.Wait()

	for i := 0; i < writers; i++ {
		c.Assert(errs[i], check.IsNil)
		c.Assert(ids[i], check.Equals, ids[0], check.Commentf("writer %d", i))
	}

	it, err := s.store.Search(jobs.StoreQuery{Expression: "reliability"})
	c.Assert(err, check.IsNil)
	c.Assert(iterateIDs(c, it), check.HasLen, 1)
}

func (s *BaseSuite) TestUpsertWithoutURL(c *check.C) {
	err := s.store.Upsert(&jobs.Posting{Title: "No URL"})
	c.Assert(errors.Is(err, jobs.ErrMissingURL), check.Equals, true)
}

// TestFind verifies the lookup logic.
func (s *BaseSuite) TestFind(c *check.C) {
	p := &jobs.Posting{
		URL:         "https://jobs.lever.co/acme/42",
		Title:       "Data Engineer",
		Company:     "Acme",
		Description: "Pipelines.",
		Keywords:    []string{"pipelines"},
		Board:       jobs.BoardLever,
	}
	c.Assert(s.store.Upsert(p), check.IsNil)

	got, err := s.store.FindByURL("http://jobs.lever.co/acme/42/#apply")
	c.Assert(err, check.IsNil)
	c.Assert(got.ID, check.Equals, p.ID)
	c.Assert(got.Board, check.Equals, jobs.BoardLever)

	_, err = s.store.FindByURL("https://jobs.lever.co/acme/43")
	c.Assert(errors.Is(err, jobs.ErrNotFound), check.Equals, true)

	_, err = s.store.FindByID(uuid.New())
	c.Assert(errors.Is(err, jobs.ErrNotFound), check.Equals, true)
}

// TestSearchMatches verifies full-text matching.
func (s *BaseSuite) TestSearchMatches(c *check.C) {
	var expIDs []string

	for i := 0; i < 30; i++ {
		p := &jobs.Posting{
			URL:         fmt.Sprintf("https://acme.com/jobs/%d", i),
			Title:       fmt.Sprintf("Engineer %d", i),
			Company:     "Acme",
			Description: "Write services in Go.",
		}

		if i%3 == 0 {
			p.Description = "Operate Kubernetes clusters."
		}

		c.Assert(s.store.Upsert(p), check.IsNil)

		if i%3 == 0 {
			expIDs = append(expIDs, p.ID.String())
		}
	}

	it, err := s.store.Search(jobs.StoreQuery{Expression: "kubernetes"})
	c.Assert(err, check.IsNil)
	c.Assert(it.TotalCount(), check.Equals, uint64(len(expIDs)))

	got := iterateIDs(c, it)
	sort.Strings(got)
	sort.Strings(expIDs)
	c.Assert(got, check.DeepEquals, expIDs)
}

// TestSearchAllWithOffset verifies that an empty expression lists every
// posting, newest first, and that offsets skip results.
func (s *BaseSuite) TestSearchAllWithOffset(c *check.C) {
	var expIDs []string

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		p := &jobs.Posting{
			URL:         fmt.Sprintf("https://globex.com/careers/%d", i),
			Title:       fmt.Sprintf("Analyst %d", i),
			Company:     "Globex",
			Description: "Crunch numbers.",
			DatePosted:  base.Add(time.Duration(i) * time.Hour),
		}
		c.Assert(s.store.Upsert(p), check.IsNil)

		// Newest first.
		expIDs = append([]string{p.ID.String()}, expIDs...)
	}

	it, err := s.store.Search(jobs.StoreQuery{})
	c.Assert(err, check.IsNil)
	c.Assert(iterateIDs(c, it), check.DeepEquals, expIDs)

	it, err = s.store.Search(jobs.StoreQuery{Offset: 20})
	c.Assert(err, check.IsNil)
	c.Assert(iterateIDs(c, it), check.DeepEquals, expIDs[20:])

	it, err = s.store.Search(jobs.StoreQuery{Offset: 200})
	c.Assert(err, check.IsNil)
	c.Assert(iterateIDs(c, it), check.HasLen, 0)
}

func iterateIDs(c *check.C, it jobs.Iterator) []string {
	var ids []string
	for it.Next() {
		ids = append(ids, it.Posting().ID.String())
	}

	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)

	return ids
}
