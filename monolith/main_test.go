package main

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	check "gopkg.in/check.v1"

	"github.com/mycok/uJobs/cache"
	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/jobs/store/memory"
)

var _ = check.Suite(new(MainTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type MainTestSuite struct {
	logger *logrus.Entry
}

func (s *MainTestSuite) SetUpTest(c *check.C) {
	s.logger = logrus.NewEntry(logrus.New())
	s.logger.Logger.SetLevel(logrus.PanicLevel)
}

func (s *MainTestSuite) TestSearchListFlag(c *check.C) {
	var l searchList

	c.Assert(l.Set("backend engineer|Chicago, IL|d7"), check.IsNil)
	c.Assert(l.Set("nurse"), check.IsNil)
	c.Assert(l, check.DeepEquals, searchList{
		{Role: "backend engineer", Location: "Chicago, IL", Recency: jobs.Last7Days},
		{Role: "nurse", Recency: jobs.DefaultRecency},
	})
	c.Assert(l.String(), check.Equals, "backend engineer|Chicago, IL|d7,nurse||w2")

	c.Assert(l.Set("|Berlin"), check.ErrorMatches, ".*role not provided")
	c.Assert(l.Set("nurse||yesterday"), check.ErrorMatches, ".*unknown recency.*")
}

func (s *MainTestSuite) TestGetStore(c *check.C) {
	store, err := getStore("in-memory://", s.logger)
	c.Assert(err, check.IsNil)
	c.Assert(store, check.FitsTypeOf, &memory.InMemoryStore{})

	_, err = getStore("", s.logger)
	c.Assert(err, check.ErrorMatches, ".*must be specified.*")

	_, err = getStore("mongodb://localhost", s.logger)
	c.Assert(err, check.ErrorMatches, `unsupported posting store URI scheme: "mongodb"`)
}

func (s *MainTestSuite) TestGetCache(c *check.C) {
	rc, err := getCache(context.TODO(), "in-memory://", time.Minute, s.logger)
	c.Assert(err, check.IsNil)
	c.Assert(rc, check.FitsTypeOf, &cache.InMemoryCache{})

	rc, err = getCache(context.TODO(), "none://", time.Minute, s.logger)
	c.Assert(err, check.IsNil)
	c.Assert(rc, check.IsNil)

	_, err = getCache(context.TODO(), "memcached://localhost", time.Minute, s.logger)
	c.Assert(err, check.ErrorMatches, `unsupported cache URI scheme: "memcached"`)
}
