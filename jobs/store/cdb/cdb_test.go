package cdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/uJobs/jobs/store/storetest"
)

var _ = check.Suite(new(cockroachDBStoreTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type cockroachDBStoreTestSuite struct {
	// Kept so tables can be truncated between tests.
	db *sql.DB
	storetest.BaseSuite
}

func (s *cockroachDBStoreTestSuite) SetUpSuite(c *check.C) {
	dsn := os.Getenv("CDB_DSN")
	if dsn == "" {
		c.Skip("Missing CDB_DSN envvar: skipping cockroachDB backed test suite")
	}

	store, err := NewCockroachDBStore(dsn)
	if err != nil {
		c.Fatalf("Failed to make a database connection: %v", err)
	}

	s.SetStore(store)
	s.db = store.db
}

func (s *cockroachDBStoreTestSuite) TearDownSuite(c *check.C) {
	if s.db != nil {
		s.flushDB(c)
		c.Assert(s.db.Close(), check.IsNil)
	}
}

func (s *cockroachDBStoreTestSuite) SetUpTest(c *check.C) {
	s.flushDB(c)
}

func (s *cockroachDBStoreTestSuite) flushDB(c *check.C) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, "TRUNCATE postings")
	c.Assert(err, check.IsNil)
}

// searchClauses is pure, so it is covered without a database.
type searchClausesTestSuite struct{}

var _ = check.Suite(new(searchClausesTestSuite))

func (s *searchClausesTestSuite) TestEmptyExpression(c *check.C) {
	where, score, args := searchClauses("   ")
	c.Assert(where, check.Equals, "")
	c.Assert(score, check.Equals, "0")
	c.Assert(args, check.HasLen, 0)
}

func (s *searchClausesTestSuite) TestTermsAreEscaped(c *check.C) {
	where, _, args := searchClauses("Go 100%_remote")
	c.Assert(args, check.DeepEquals, []interface{}{"%go%", `%100\%\_remote%`})
	c.Assert(where, check.Matches, `^ WHERE \(.*\$1.*\$2.*\) > 0$`)
}
