package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mycok/uJobs/cache"
	"github.com/mycok/uJobs/discovery"
	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/jobs/store/cdb"
	"github.com/mycok/uJobs/jobs/store/es"
	"github.com/mycok/uJobs/jobs/store/memory"
	"github.com/mycok/uJobs/monolith/service"
	"github.com/mycok/uJobs/monolith/service/api"
	"github.com/mycok/uJobs/monolith/service/watcher"
	"github.com/mycok/uJobs/parser"
	"github.com/mycok/uJobs/parser/privnet"
	"github.com/mycok/uJobs/search"
	"github.com/mycok/uJobs/search/cse"
)

const (
	appName = "uJobs-monolith"
	appSHA  = "compiled-and-deployed-at"
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"SHA":  appSHA,
		"host": host,
	})

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	svcGroup, err := configureServices(ctx, rootLogger, logger)
	if err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")

		return
	}

	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to os signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	if err := svcGroup.Execute(ctx); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")

		return
	}

	logger.Info("shutdown complete")
}

func configureServices(
	ctx context.Context, rootLogger *logrus.Logger, logger *logrus.Entry,
) (service.Group, error) {

	var (
		fetcherConfig search.Config
		collyConfig   parser.CollyConfig
		parserConfig  parser.Config
		engineConfig  discovery.Config
		apiConfig     api.Config
		watcherConfig watcher.Config
		savedSearches searchList
	)

	flag.StringVar(&apiConfig.ListenAddr, "api-listen-addr", ":8080", "Address to listen on for incoming API requests")
	flag.IntVar(&apiConfig.NumOfResultsPerPage, "api-results-per-page", 10, "Number of stored postings returned per page")
	flag.IntVar(&apiConfig.MaxSummaryLength, "api-max-summary-length", 256, "The maximum length of the description summary for stored postings")

	flag.IntVar(&fetcherConfig.PagesPerQuery, "search-pages-per-query", 3, "Result pages requested per search query (max 4)")
	flag.DurationVar(&fetcherConfig.MinRequestInterval, "search-min-request-interval", 500*time.Millisecond, "Minimum delay between two search API calls")
	flag.IntVar(&fetcherConfig.MaxCandidates, "search-max-candidates", 100, "Maximum number of candidate links per search")

	flag.DurationVar(&collyConfig.Timeout, "fetch-timeout", 15*time.Second, "Time allowed for downloading one posting page")
	flag.DurationVar(&collyConfig.Delay, "fetch-domain-delay", 0, "Delay between two page downloads from the same domain")
	flag.IntVar(&collyConfig.Parallelism, "fetch-domain-parallelism", 2, "Concurrent page downloads allowed per domain")

	flag.IntVar(&engineConfig.NumOfParseWorkers, "engine-num-workers", runtime.NumCPU(), "Number of workers for fetching and parsing posting pages [defaults to number of CPU's]")
	flag.DurationVar(&engineConfig.Timeout, "engine-timeout", 30*time.Second, "Upper bound on the duration of a single search")
	flag.IntVar(&engineConfig.MaxResults, "engine-max-results", 50, "Maximum number of ranked results per search")

	flag.Var(&savedSearches, "watch-search", "Saved search as 'role|location|recency'; repeat for more. The watcher runs only when at least one is given")
	flag.DurationVar(&watcherConfig.Interval, "watch-interval", time.Hour, "Time between subsequent saved-search passes")

	cseKey := flag.String("cse-key", os.Getenv("GOOGLE_CSE_KEY"), "Google custom search API key [env GOOGLE_CSE_KEY]")
	cseCX := flag.String("cse-cx", os.Getenv("GOOGLE_CSE_CX"), "Google custom search engine ID [env GOOGLE_CSE_CX]")

	storeURI := flag.String(
		"store-uri", "in-memory://",
		"URI for connecting to a posting store."+
			" [supported URI's: in-memory://, es://node1:9200,...,nodeN:9200, postgresql://user@host:26257/ujobs?sslmode=disable]",
	)
	cacheURI := flag.String(
		"cache-uri", "in-memory://",
		"URI for connecting to a result cache. [supported URI's: in-memory://, redis://host:6379/0, none://]",
	)
	cacheTTL := flag.Duration("cache-ttl", cache.DefaultTTL, "Time search results stay cached")

	kafkaBrokers := flag.String("kafka-brokers", "", "Comma separated list of kafka brokers that receive newly watched postings")
	kafkaTopic := flag.String("kafka-topic", "ujobs.postings", "Kafka topic for newly watched postings")

	logLevel := flag.String("log-level", "info", "Log level [debug, info, warn, error]")

	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		return nil, err
	}
	rootLogger.SetLevel(level)

	store, err := getStore(*storeURI, logger)
	if err != nil {
		return nil, err
	}

	resultCache, err := getCache(ctx, *cacheURI, *cacheTTL, logger)
	if err != nil {
		return nil, err
	}

	provider, err := cse.New(ctx, *cseKey, *cseCX)
	if err != nil {
		return nil, err
	}

	fetcherConfig.Provider = provider
	fetcherConfig.Logger = logger.WithField("component", "result-fetcher")
	candidateFetcher, err := search.NewFetcher(fetcherConfig)
	if err != nil {
		return nil, err
	}

	pageFetcher, err := parser.NewCollyFetcher(collyConfig)
	if err != nil {
		return nil, err
	}

	netDetector, err := privnet.NewDetector()
	if err != nil {
		return nil, err
	}

	parserConfig.Fetcher = pageFetcher
	parserConfig.NetDetector = netDetector
	parserConfig.Logger = logger.WithField("component", "posting-parser")
	postingParser, err := parser.New(parserConfig)
	if err != nil {
		return nil, err
	}

	engineConfig.Fetcher = candidateFetcher
	engineConfig.Parser = postingParser
	engineConfig.Logger = logger.WithField("component", "discovery-engine")
	engine, err := discovery.New(engineConfig)
	if err != nil {
		return nil, err
	}

	var (
		svc    service.Service
		svcGrp service.Group
	)

	apiConfig.Searcher = engine
	apiConfig.Store = store
	apiConfig.Cache = resultCache
	apiConfig.Logger = logger.WithField("service", "api")
	if svc, err = api.New(apiConfig); err != nil {
		return nil, err
	}
	svcGrp = append(svcGrp, svc)

	if len(savedSearches) == 0 {
		return svcGrp, nil
	}

	watcherConfig.Searcher = engine
	watcherConfig.Store = store
	watcherConfig.Searches = savedSearches
	watcherConfig.Logger = logger.WithField("service", "watcher")

	if *kafkaBrokers != "" {
		publisher, err := watcher.NewKafkaPublisher(strings.Split(*kafkaBrokers, ","), *kafkaTopic)
		if err != nil {
			return nil, err
		}

		watcherConfig.Publisher = publisher
	}

	if svc, err = watcher.New(watcherConfig); err != nil {
		return nil, err
	}
	svcGrp = append(svcGrp, svc)

	return svcGrp, nil
}

// searchList collects repeated -watch-search flags.
type searchList []jobs.SearchRequest

func (l *searchList) String() string {
	parts := make([]string, 0, len(*l))
	for _, req := range *l {
		parts = append(parts, strings.Join([]string{req.Role, req.Location, string(req.Recency)}, "|"))
	}

	return strings.Join(parts, ",")
}

func (l *searchList) Set(value string) error {
	fields := strings.SplitN(value, "|", 3)
	for len(fields) < 3 {
		fields = append(fields, "")
	}

	recency, err := jobs.ParseRecency(fields[2])
	if err != nil {
		return err
	}

	req := jobs.SearchRequest{Role: fields[0], Location: fields[1], Recency: recency}
	if err := req.Validate(); err != nil {
		return err
	}

	*l = append(*l, req)

	return nil
}

func getStore(storeURI string, logger *logrus.Entry) (jobs.Store, error) {
	if storeURI == "" {
		return nil, fmt.Errorf("posting store URI must be specified with --store-uri")
	}

	uri, err := url.Parse(storeURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse posting store URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory posting store")

		return memory.NewInMemoryStore()
	case "es":
		nodes := strings.Split(uri.Host, ",")
		for i := range nodes {
			nodes[i] = "http://" + nodes[i]
		}
		logger.Info("using ES posting store")

		return es.NewElasticsearchStore(nodes, false)
	case "postgresql":
		logger.Info("using CDB posting store")

		return cdb.NewCockroachDBStore(storeURI)
	default:
		return nil, fmt.Errorf("unsupported posting store URI scheme: %q", uri.Scheme)
	}
}

func getCache(
	ctx context.Context, cacheURI string, ttl time.Duration, logger *logrus.Entry,
) (cache.Cache, error) {

	uri, err := url.Parse(cacheURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cache URI: %w", err)
	}

	switch uri.Scheme {
	case "none":
		logger.Info("result cache disabled")

		return nil, nil
	case "in-memory":
		logger.Info("using in-memory result cache")

		return cache.NewInMemoryCache(ttl, 0, nil), nil
	case "redis", "rediss":
		logger.Info("using redis result cache")

		return cache.NewRedisCache(ctx, cacheURI, ttl)
	default:
		return nil, fmt.Errorf("unsupported cache URI scheme: %q", uri.Scheme)
	}
}
