package parser

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"

	"github.com/mycok/uJobs/jobs"
)

var _ = check.Suite(new(extractTestSuite))

type extractTestSuite struct{}

func (s *extractTestSuite) TestStructuredDataInGraph(c *check.C) {
	doc := mustParse(c, `<html><head><script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
  {"@type": "WebPage", "name": "Careers"},
  {"@type": ["JobPosting"],
   "title": "Site Reliability Engineer",
   "hiringOrganization": "Initech",
   "jobLocation": [
     {"address": {"addressLocality": "Austin", "addressRegion": "TX"}},
     {"address": {"addressLocality": "austin", "addressRegion": "tx"}}
   ],
   "jobLocationType": "TELECOMMUTE",
   "validThrough": "2024-06-01T00:00:00Z",
   "description": "Keep   things running &amp; observable.",
   "baseSalary": {"currency": "USD", "value": {"minValue": "120,000", "maxValue": 150000, "unitText": "YEAR"}}}
]}
</script></head><body></body></html>`)

	d := StructuredData{}.Extract(doc)
	c.Assert(d.Title, check.Equals, "Site Reliability Engineer")
	c.Assert(d.Company, check.Equals, "Initech")
	c.Assert(d.Location, check.Equals, "Austin, TX")
	c.Assert(d.Remote, check.Equals, true)
	c.Assert(d.Description, check.Equals, "Keep things running & observable.")
	c.Assert(d.ValidThrough, check.Equals, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	c.Assert(d.DatePosted.IsZero(), check.Equals, true)
	c.Assert(d.Salary, check.DeepEquals, &jobs.Salary{Currency: "USD", Min: 120000, Max: 150000, Unit: "YEAR"})
}

func (s *extractTestSuite) TestStructuredDataTopLevelArray(c *check.C) {
	doc := mustParse(c, `<script type="application/ld+json">not json</script>
<script type="application/ld+json">[{"@type": "Organization"}, {"@type": "JobPosting", "name": "Data Analyst",
"hiringOrganization": {"name": "Globex"}, "jobLocationType": "TELECOMMUTE", "description": "Crunch numbers."}]</script>`)

	d := StructuredData{}.Extract(doc)
	c.Assert(d.Title, check.Equals, "Data Analyst")
	c.Assert(d.Company, check.Equals, "Globex")
	c.Assert(d.Location, check.Equals, "Remote")
	c.Assert(d.Remote, check.Equals, true)
	c.Assert(d.Salary, check.IsNil)
}

func (s *extractTestSuite) TestStructuredDataWithoutPosting(c *check.C) {
	doc := mustParse(c, `<script type="application/ld+json">{"@type": "Organization", "name": "Acme"}</script>`)

	c.Assert(StructuredData{}.Extract(doc), check.DeepEquals, Draft{})
}

func (s *extractTestSuite) TestHeuristicSelectors(c *check.C) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	doc := mustParse(c, `<html><head>
<title>Backend Developer | Globex Careers</title>
<meta property="og:site_name" content="Globex">
</head><body>
<nav>Home Jobs About</nav>
<h1> Backend
    Developer </h1>
<div class="location">Remote - US</div>
<p>Posted 3 days ago</p>
<div class="job-description"><p>We are looking for a backend developer to build APIs in Go and Postgres.
You will own services end to end and mentor other engineers.</p></div>
<footer>Copyright Globex</footer>
</body></html>`)

	d := (&Heuristic{Clock: testclock.NewClock(now)}).Extract(doc)
	c.Assert(d.Title, check.Equals, "Backend Developer")
	c.Assert(d.Company, check.Equals, "Globex")
	c.Assert(d.Location, check.Equals, "Remote - US")
	c.Assert(d.Remote, check.Equals, true)
	c.Assert(d.DatePosted, check.Equals, now.AddDate(0, 0, -3))
	c.Assert(strings.HasPrefix(d.Description, "We are looking for a backend developer"), check.Equals, true)
	c.Assert(strings.Contains(d.Description, "Copyright"), check.Equals, false)
}

func (s *extractTestSuite) TestHeuristicLabelsAndFallbacks(c *check.C) {
	body := strings.Repeat("Design and ship payment flows for merchants. ", 4)
	doc := mustParse(c, `<html><head>
<title>Payments Engineer - Initech</title>
<meta itemprop="datePosted" content="2024-04-28">
</head><body>
<section>
<p>Company: Initech</p>
<p>Location: Lisbon, Portugal</p>
<div><p>`+body+`</p></div>
</section>
<script>var tracking = "ignore me";</script>
</body></html>`)

	d := (&Heuristic{}).Extract(doc)
	c.Assert(d.Title, check.Equals, "Payments Engineer")
	c.Assert(d.Company, check.Equals, "Initech")
	c.Assert(d.Location, check.Equals, "Lisbon, Portugal")
	c.Assert(d.Remote, check.Equals, false)
	c.Assert(d.DatePosted, check.Equals, time.Date(2024, 4, 28, 0, 0, 0, 0, time.UTC))
	c.Assert(strings.Contains(d.Description, "Design and ship payment flows"), check.Equals, true)
	c.Assert(strings.Contains(d.Description, "tracking"), check.Equals, false)
}

func (s *extractTestSuite) TestHeuristicShortPageHasNoDescription(c *check.C) {
	doc := mustParse(c, `<html><body><h1>Oops</h1><div>Nothing to see here.</div></body></html>`)

	d := (&Heuristic{}).Extract(doc)
	c.Assert(d.Title, check.Equals, "Oops")
	c.Assert(d.Description, check.Equals, "")
}

func (s *extractTestSuite) TestDraftMergeKeepsEarlierFields(c *check.C) {
	d := Draft{Title: "First", Salary: &jobs.Salary{Min: 1}}
	d.merge(Draft{Title: "Second", Company: "Acme", Remote: true, Salary: &jobs.Salary{Min: 2}})

	c.Assert(d.Title, check.Equals, "First")
	c.Assert(d.Company, check.Equals, "Acme")
	c.Assert(d.Remote, check.Equals, true)
	c.Assert(d.Salary.Min, check.Equals, 1.0)
	c.Assert(d.Complete(), check.Equals, false)

	d.Description = "text"
	c.Assert(d.Complete(), check.Equals, true)
}

func mustParse(c *check.C, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	c.Assert(err, check.IsNil)

	return doc
}
