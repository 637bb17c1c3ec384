// Package es provides a jobs.Store backed by elasticsearch.
package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/mycok/uJobs/jobs"
)

// Static and compile-time check to ensure ElasticsearchStore implements
// jobs.Store.
var _ jobs.Store = (*ElasticsearchStore)(nil)

// Size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Racing updates of one document are retried this many times.
const conflictRetries = 5

// The name of the elasticsearch index to use.
const indexName = "jobs"

var esMappings = `
{
  "mappings" : {
    "properties": {
      "ID": {"type": "keyword"},
      "URL": {"type": "keyword"},
      "Title": {"type": "text"},
      "Company": {"type": "text"},
      "Location": {"type": "text"},
      "Description": {"type": "text"},
      "Keywords": {"type": "text"},
      "Board": {"type": "keyword"},
      "Remote": {"type": "boolean"},
      "Salary": {"type": "object", "enabled": false},
      "DatePosted": {"type": "date"},
      "ValidThrough": {"type": "date"},
      "DiscoveredAt": {"type": "date"}
    }
  }
}`

type esSearchRes struct {
	Hits esSearchResHits `json:"hits"`
}

type esSearchResHits struct {
	Total   esTotal        `json:"total"`
	HitList []esHitWrapper `json:"hits"`
}

type esTotal struct {
	Count uint64 `json:"value"`
}

type esHitWrapper struct {
	DocSource esDoc `json:"_source"`
}

type esDoc struct {
	ID           string       `json:"ID"`
	URL          string       `json:"URL"`
	Title        string       `json:"Title"`
	Company      string       `json:"Company"`
	Location     string       `json:"Location"`
	Description  string       `json:"Description"`
	Keywords     []string     `json:"Keywords"`
	Board        string       `json:"Board"`
	Remote       bool         `json:"Remote"`
	Salary       *jobs.Salary `json:"Salary"`
	DatePosted   time.Time    `json:"DatePosted"`
	ValidThrough time.Time    `json:"ValidThrough"`
	DiscoveredAt time.Time    `json:"DiscoveredAt"`
}

type esUpdateRes struct {
	Result string `json:"result"`
}

type esErrorRes struct {
	Error esError `json:"error"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// ElasticsearchStore persists postings as elasticsearch documents keyed by
// posting ID.
type ElasticsearchStore struct {
	client      *elasticsearch.Client
	refreshOpts func(*esapi.UpdateRequest)
}

// NewElasticsearchStore connects to esNodes and makes sure the jobs index
// exists. When shouldSyncUpdates is set, every write refreshes the index so
// it is visible to the next search.
func NewElasticsearchStore(
	esNodes []string, shouldSyncUpdates bool,
) (*ElasticsearchStore, error) {

	c, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: esNodes})
	if err != nil {
		return nil, err
	}

	if err = initIndex(c); err != nil {
		return nil, err
	}

	refreshOpts := c.Update.WithRefresh("false")
	if shouldSyncUpdates {
		refreshOpts = c.Update.WithRefresh("true")
	}

	return &ElasticsearchStore{
		client:      c,
		refreshOpts: refreshOpts,
	}, nil
}

// Upsert implements jobs.Store. Updating an existing posting keeps its ID
// and the time it was first discovered.
func (s *ElasticsearchStore) Upsert(p *jobs.Posting) error {
	url := jobs.CanonicalURL(p.URL)
	if url == "" {
		return fmt.Errorf("upsert: %w", jobs.ErrMissingURL)
	}

	pCopy := p.Clone()
	pCopy.URL = url
	pCopy.ID = postingID(url)

	existing, err := s.findOne("URL", url)
	if err != nil && err != jobs.ErrNotFound {
		return fmt.Errorf("upsert: %w", err)
	}

	if existing != nil {
		pCopy.ID = existing.ID

		if !existing.DiscoveredAt.IsZero() &&
			(pCopy.DiscoveredAt.IsZero() || existing.DiscoveredAt.Before(pCopy.DiscoveredAt)) {
			pCopy.DiscoveredAt = existing.DiscoveredAt
		}
	}

	var (
		buf bytes.Buffer
		doc = makeEsDoc(&pCopy)
	)

	forUpdate := map[string]interface{}{
		"doc":           doc,
		"doc_as_upsert": true,
	}

	if err := json.NewEncoder(&buf).Encode(forUpdate); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	res, err := s.client.Update(
		indexName, doc.ID, &buf, s.refreshOpts, s.client.Update.WithRetryOnConflict(conflictRetries),
	)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	var updateRes esUpdateRes
	if err = unmarshalResponse(res, &updateRes); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	p.ID = pCopy.ID
	p.URL = url
	p.DiscoveredAt = pCopy.DiscoveredAt

	return nil
}

// postingID derives the document ID from the canonical URL so concurrent
// upserts of one URL always address the same document.
func postingID(canonicalURL string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(canonicalURL))
}

// FindByID implements jobs.Store.
func (s *ElasticsearchStore) FindByID(id uuid.UUID) (*jobs.Posting, error) {
	p, err := s.findOne("ID", id.String())
	if err != nil {
		return nil, fmt.Errorf("find by ID: %w", err)
	}

	return p, nil
}

// FindByURL implements jobs.Store.
func (s *ElasticsearchStore) FindByURL(url string) (*jobs.Posting, error) {
	p, err := s.findOne("URL", jobs.CanonicalURL(url))
	if err != nil {
		return nil, fmt.Errorf("find by URL: %w", err)
	}

	return p, nil
}

// Search implements jobs.Store. An empty expression matches every posting.
// Results are ordered by relevance, then by posting date, newest first.
func (s *ElasticsearchStore) Search(q jobs.StoreQuery) (jobs.Iterator, error) {
	var match interface{} = map[string]interface{}{"match_all": map[string]interface{}{}}

	if expr := strings.TrimSpace(q.Expression); expr != "" {
		match = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"type":   "best_fields",
				"query":  expr,
				"fields": []string{"Title^3", "Company^2", "Location", "Description", "Keywords"},
			},
		}
	}

	query := map[string]interface{}{
		"query": match,
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"DatePosted": map[string]string{"order": "desc"}},
			map[string]interface{}{"ID": map[string]string{"order": "asc"}},
		},
		"from": q.Offset,
		"size": batchSize,
	}

	searchRes, err := performSearch(s.client, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return &esIterator{
		client:    s.client,
		searchReq: query,
		searchRes: searchRes,
		cumIdx:    q.Offset,
	}, nil
}

// findOne returns the single posting whose keyword field equals value, or
// jobs.ErrNotFound.
func (s *ElasticsearchStore) findOne(field, value string) (*jobs.Posting, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				field: value,
			},
		},
		"from": 0,
		"size": 1,
	}

	searchRes, err := performSearch(s.client, query)
	if err != nil {
		return nil, err
	}

	if len(searchRes.Hits.HitList) == 0 {
		return nil, jobs.ErrNotFound
	}

	return esDocToPosting(&searchRes.Hits.HitList[0].DocSource)
}

func performSearch(
	client *elasticsearch.Client, query map[string]interface{},
) (*esSearchRes, error) {
	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := client.Search(
		client.Search.WithContext(context.Background()),
		client.Search.WithIndex(indexName),
		client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}

	var esRes esSearchRes
	if err = unmarshalResponse(res, &esRes); err != nil {
		return nil, err
	}

	return &esRes, nil
}

func initIndex(client *elasticsearch.Client) error {
	res, err := client.Indices.Create(
		indexName,
		client.Indices.Create.WithBody(strings.NewReader(esMappings)),
	)
	if err != nil {
		return fmt.Errorf("failed to create ES index: %w", err)
	}

	if res.IsError() {
		err = unmarshalResponse(res, nil)

		if esErr, ok := err.(esError); ok && esErr.Type == "resource_already_exists_exception" {
			return nil
		}

		return fmt.Errorf("failed to create ES index: %w", err)
	}

	return res.Body.Close()
}

func unmarshalResponse(res *esapi.Response, into interface{}) error {
	defer res.Body.Close()

	if res.IsError() {
		var errRes esErrorRes
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return err
		}

		return errRes.Error
	}

	return json.NewDecoder(res.Body).Decode(into)
}

func esDocToPosting(doc *esDoc) (*jobs.Posting, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, err
	}

	return &jobs.Posting{
		ID:           id,
		URL:          doc.URL,
		Title:        doc.Title,
		Company:      doc.Company,
		Location:     doc.Location,
		DatePosted:   doc.DatePosted.UTC(),
		ValidThrough: doc.ValidThrough.UTC(),
		Description:  doc.Description,
		Keywords:     doc.Keywords,
		Board:        jobs.Board(doc.Board),
		Remote:       doc.Remote,
		Salary:       doc.Salary,
		DiscoveredAt: doc.DiscoveredAt.UTC(),
	}, nil
}

func makeEsDoc(p *jobs.Posting) esDoc {
	return esDoc{
		ID:           p.ID.String(),
		URL:          p.URL,
		Title:        p.Title,
		Company:      p.Company,
		Location:     p.Location,
		Description:  p.Description,
		Keywords:     p.Keywords,
		Board:        string(p.Board),
		Remote:       p.Remote,
		Salary:       p.Salary,
		DatePosted:   p.DatePosted.UTC(),
		ValidThrough: p.ValidThrough.UTC(),
		DiscoveredAt: p.DiscoveredAt.UTC(),
	}
}
