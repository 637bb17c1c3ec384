// Package api exposes job searches and stored postings over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uJobs/cache"
	"github.com/mycok/uJobs/jobs"
)

const (
	healthEndpoint = "/health"
	searchEndpoint = "/jobs/search"
	listEndpoint   = "/jobs"
	jobEndpoint    = "/jobs/{id}"

	// Request bodies above this size are rejected.
	maxBodyBytes = 1 << 16
)

// Service serves the uJobs HTTP API. It satisfies the service.Service
// interface.
type Service struct {
	config Config
	router *chi.Mux
}

// New creates and returns a fully configured API service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("api service: config validation failed: %w", err)
	}

	svc := &Service{
		config: config,
		router: chi.NewRouter(),
	}

	svc.router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	svc.router.Get(healthEndpoint, svc.health)
	svc.router.Post(searchEndpoint, svc.searchJobs)
	svc.router.Get(listEndpoint, svc.listJobs)
	svc.router.Get(jobEndpoint, svc.getJob)

	svc.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return svc, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "api" }

// ServeHTTP lets the service be mounted or tested without a listener.
func (svc *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svc.router.ServeHTTP(w, r)
}

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.config.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{
		Addr:              svc.config.ListenAddr,
		Handler:           svc.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	svc.config.Logger.WithField("addr", svc.config.ListenAddr).Info("started service")

	if err = srv.Serve(l); err == http.ErrServerClosed {
		err = nil
	}

	return err
}

func (svc *Service) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchBody struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Recency  string `json:"recency"`
}

func (svc *Service) searchJobs(w http.ResponseWriter, r *http.Request) {
	var body searchBody

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")

		return
	}

	recency, err := jobs.ParseRecency(body.Recency)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	req := jobs.SearchRequest{Role: body.Query, Location: body.Location, Recency: recency}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	logger := svc.config.Logger.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"query":      req.Role,
		"location":   req.Location,
	})

	key := cache.Key(req)
	if results, hit := svc.cachedResults(r.Context(), key, logger); hit {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, jobList{Jobs: toJobViews(results)})

		return
	}

	results, err := svc.config.Searcher.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, jobs.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())

			return
		}

		logger.WithField("err", err).Error("search failed")
		writeError(w, http.StatusInternalServerError, "search failed")

		return
	}

	for i := range results {
		if err := svc.config.Store.Upsert(&results[i].Posting); err != nil {
			logger.WithFields(logrus.Fields{
				"url": results[i].Posting.URL,
				"err": err,
			}).Warn("could not store posting")
		}
	}

	if svc.config.Cache != nil {
		if err := svc.config.Cache.Set(r.Context(), key, results); err != nil {
			logger.WithField("err", err).Warn("could not cache results")
		}
	}

	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, jobList{Jobs: toJobViews(results)})
}

func (svc *Service) cachedResults(
	ctx context.Context, key string, logger *logrus.Entry,
) ([]jobs.RankedResult, bool) {

	if svc.config.Cache == nil {
		return nil, false
	}

	results, hit, err := svc.config.Cache.Get(ctx, key)
	if err != nil {
		logger.WithField("err", err).Warn("cache lookup failed")

		return nil, false
	}

	return results, hit
}

func (svc *Service) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var offset uint64
	if raw := r.URL.Query().Get("offset"); raw != "" {
		var err error
		if offset, err = strconv.ParseUint(raw, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid offset")

			return
		}
	}

	it, err := svc.config.Store.Search(jobs.StoreQuery{Expression: q, Offset: offset})
	if err != nil {
		svc.config.Logger.WithField("err", err).Error("stored posting search failed")
		writeError(w, http.StatusInternalServerError, "search failed")

		return
	}
	defer func() { _ = it.Close() }()

	var (
		summarizer = newSummarizer(q, svc.config.MaxSummaryLength)
		views      = make([]jobView, 0, svc.config.NumOfResultsPerPage)
	)

	for len(views) < svc.config.NumOfResultsPerPage && it.Next() {
		p := it.Posting()
		view := newJobView(p)
		view.Summary = summarizer.Summary(p.Description)
		view.Description = ""
		views = append(views, view)
	}

	if err := it.Error(); err != nil {
		svc.config.Logger.WithField("err", err).Error("stored posting search failed")
		writeError(w, http.StatusInternalServerError, "search failed")

		return
	}

	list := jobList{
		Jobs:   views,
		Total:  it.TotalCount(),
		Offset: offset,
	}

	if next := offset + uint64(len(views)); next < list.Total {
		list.NextOffset = &next
	}

	writeJSON(w, http.StatusOK, list)
}

func (svc *Service) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "posting not found")

		return
	}

	p, err := svc.config.Store.FindByID(id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "posting not found")

			return
		}

		svc.config.Logger.WithField("err", err).Error("posting lookup failed")
		writeError(w, http.StatusInternalServerError, "lookup failed")

		return
	}

	writeJSON(w, http.StatusOK, newJobView(p))
}
