package parser

import (
	"time"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(textTestSuite))

type textTestSuite struct{}

func (s *textTestSuite) TestPlainText(c *check.C) {
	specs := []struct {
		in  string
		exp string
	}{
		{in: `<div>Some<span> content</span> rock &amp; roll</div>`, exp: "Some content rock & roll"},
		{in: `<p>First</p><p>Second<br>Third</p>`, exp: "First Second Third"},
		{in: "  spaced \t\n out  ", exp: "spaced out"},
		{in: "", exp: ""},
	}

	for index, spec := range specs {
		c.Logf("spec %d", index)
		c.Assert(plainText(spec.in), check.Equals, spec.exp)
	}
}

func (s *textTestSuite) TestTextLines(c *check.C) {
	lines := textLines(`<ul><li>Go</li><li>  SQL </li></ul><p></p>`)
	c.Assert(lines, check.DeepEquals, []string{"Go", "SQL"})
}

func (s *textTestSuite) TestTruncate(c *check.C) {
	c.Assert(truncate("hello world", 5), check.Equals, "hello")
	c.Assert(truncate("hello", 10), check.Equals, "hello")
	c.Assert(truncate("hello", 0), check.Equals, "hello")
	// "é" is two bytes; the cut must not split it.
	c.Assert(truncate("café", 4), check.Equals, "caf")
}

func (s *textTestSuite) TestExtractKeywords(c *check.C) {
	text := "Go go GO developer; Kubernetes, kubernetes and C++ in 2024. 10+ years https://example.com/apply"

	c.Assert(ExtractKeywords(text, 3, 2), check.DeepEquals, []string{"go", "kubernetes", "c++"})
	c.Assert(ExtractKeywords(text, 0, 3), check.DeepEquals, []string{"kubernetes", "c++", "developer"})
	c.Assert(ExtractKeywords("the and of", 10, 2), check.IsNil)
}

func (s *textTestSuite) TestExtractKeywordsIsDeterministic(c *check.C) {
	text := "zeta alpha gamma beta alpha gamma"

	for i := 0; i < 10; i++ {
		c.Assert(ExtractKeywords(text, 3, 3), check.DeepEquals, []string{"alpha", "gamma", "beta"})
	}
}

func (s *textTestSuite) TestParseDate(c *check.C) {
	specs := []struct {
		in  string
		exp time.Time
	}{
		{in: "2024-05-01", exp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2024-05-01T10:00:00+02:00", exp: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		{in: "2024-05-01T10:00:00", exp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{in: "May 1, 2024", exp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2024-05-01 at noon", exp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{in: "sometime soon", exp: time.Time{}},
		{in: "", exp: time.Time{}},
	}

	for index, spec := range specs {
		c.Logf("spec %d: %q", index, spec.in)
		c.Assert(parseDate(spec.in).Equal(spec.exp), check.Equals, true)
	}
}

func (s *textTestSuite) TestParseRelativeDate(c *check.C) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	c.Assert(parseRelativeDate("Posted today", now), check.Equals, now)
	c.Assert(parseRelativeDate("posted yesterday", now), check.Equals, now.AddDate(0, 0, -1))
	c.Assert(parseRelativeDate("Posted 5 hours ago", now), check.Equals, now.Add(-5*time.Hour))
	c.Assert(parseRelativeDate("Active 2 weeks ago", now), check.Equals, now.AddDate(0, 0, -14))
	c.Assert(parseRelativeDate("30+ days ago", now), check.Equals, now.AddDate(0, 0, -30))
	c.Assert(parseRelativeDate("1 month ago", now), check.Equals, now.AddDate(0, -1, 0))
	c.Assert(parseRelativeDate("no date here", now).IsZero(), check.Equals, true)
}

func (s *textTestSuite) TestIsNonJobURL(c *check.C) {
	specs := []struct {
		url string
		exp bool
	}{
		{url: "https://www.linkedin.com/jobs/view/123", exp: false},
		{url: "https://www.linkedin.com/company/acme", exp: true},
		{url: "https://www.linkedin.com/in/jane-doe", exp: true},
		{url: "https://boards.greenhouse.io/acme/jobs/1", exp: false},
		{url: "https://acme.wd5.myworkdayjobs.com/en-US/External/job/123", exp: false},
		{url: "https://careers.acme.com/openings/42", exp: false},
		{url: "https://acme.com/jobs/backend-engineer", exp: false},
		{url: "https://www.netflix.com/role/123", exp: false},
		{url: "https://www.facebook.com/acme", exp: true},
		{url: "https://en.wikipedia.org/wiki/Software_engineer", exp: true},
		{url: "https://techcrunch.com/news/acme-raises", exp: true},
		{url: "https://acme.com/blog/hiring-update", exp: true},
		{url: "https://www.stanford.edu/", exp: true},
		{url: "https://www.irs.gov", exp: true},
		{url: "https://acme.com/about/", exp: true},
		{url: "https://acme.com/404", exp: true},
		{url: "https://acme.com/error.html", exp: true},
		{url: "https://acme.com/brochure.pdf", exp: true},
		{url: "ftp://acme.com/jobs/1", exp: true},
		{url: "not a url", exp: true},
	}

	for index, spec := range specs {
		c.Logf("spec %d: %s", index, spec.url)
		c.Assert(IsNonJobURL(spec.url), check.Equals, spec.exp)
	}
}
