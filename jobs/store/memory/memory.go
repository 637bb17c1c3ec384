// Package memory provides a jobs.Store that keeps postings in memory and
// searches them through an in-memory bleve index.
package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/search/query"
	"github.com/google/uuid"

	"github.com/mycok/uJobs/jobs"
)

// Size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Static and compile-time check to ensure InMemoryStore implements
// jobs.Store.
var _ jobs.Store = (*InMemoryStore)(nil)

type bleveDoc struct {
	Title       string
	Company     string
	Location    string
	Description string
	Keywords    string
	DatePosted  time.Time
}

// InMemoryStore keeps postings in a map keyed by ID and indexes their text
// with bleve.
type InMemoryStore struct {
	mu       sync.RWMutex
	postings map[uuid.UUID]*jobs.Posting
	urlToID  map[string]uuid.UUID
	idx      bleve.Index
}

// NewInMemoryStore returns an empty store backed by an in-memory bleve
// index.
func NewInMemoryStore() (*InMemoryStore, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}

	return &InMemoryStore{
		postings: make(map[uuid.UUID]*jobs.Posting),
		urlToID:  make(map[string]uuid.UUID),
		idx:      idx,
	}, nil
}

// Close releases the bleve index.
func (s *InMemoryStore) Close() error {
	return s.idx.Close()
}

// Upsert implements jobs.Store. Updating an existing posting keeps its ID
// and the time it was first discovered.
func (s *InMemoryStore) Upsert(p *jobs.Posting) error {
	url := jobs.CanonicalURL(p.URL)
	if url == "" {
		return fmt.Errorf("upsert: %w", jobs.ErrMissingURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pCopy := p.Clone()
	pCopy.URL = url

	if id, exists := s.urlToID[url]; exists {
		existing := s.postings[id]
		pCopy.ID = id

		if !existing.DiscoveredAt.IsZero() &&
			(pCopy.DiscoveredAt.IsZero() || existing.DiscoveredAt.Before(pCopy.DiscoveredAt)) {
			pCopy.DiscoveredAt = existing.DiscoveredAt
		}
	} else {
		pCopy.ID = uuid.New()
	}

	if err := s.idx.Index(pCopy.ID.String(), makeBleveDoc(&pCopy)); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	s.postings[pCopy.ID] = &pCopy
	s.urlToID[url] = pCopy.ID

	p.ID = pCopy.ID
	p.URL = url
	p.DiscoveredAt = pCopy.DiscoveredAt

	return nil
}

// FindByID implements jobs.Store.
func (s *InMemoryStore) FindByID(id uuid.UUID) (*jobs.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.postings[id]
	if !exists {
		return nil, fmt.Errorf("find by ID: %w", jobs.ErrNotFound)
	}

	pCopy := p.Clone()

	return &pCopy, nil
}

// FindByURL implements jobs.Store.
func (s *InMemoryStore) FindByURL(url string) (*jobs.Posting, error) {
	s.mu.RLock()
	id, exists := s.urlToID[jobs.CanonicalURL(url)]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("find by URL: %w", jobs.ErrNotFound)
	}

	return s.FindByID(id)
}

// Search implements jobs.Store. An empty expression matches every posting.
// Results are ordered by relevance, then by posting date, newest first.
func (s *InMemoryStore) Search(q jobs.StoreQuery) (jobs.Iterator, error) {
	var bleveQuery query.Query = bleve.NewMatchAllQuery()
	if expr := strings.TrimSpace(q.Expression); expr != "" {
		bleveQuery = bleve.NewMatchQuery(expr)
	}

	searchReq := bleve.NewSearchRequest(bleveQuery)
	searchReq.SortBy([]string{"-_score", "-DatePosted", "_id"})
	searchReq.Size = batchSize
	searchReq.From = int(q.Offset)

	sr, err := s.idx.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return &postingIterator{
		store:     s,
		searchReq: searchReq,
		searchRes: sr,
		cumIdx:    q.Offset,
	}, nil
}

func makeBleveDoc(p *jobs.Posting) bleveDoc {
	return bleveDoc{
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		Description: p.Description,
		Keywords:    strings.Join(p.Keywords, " "),
		DatePosted:  p.DatePosted,
	}
}
