package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/clock"
)

// Static and compile-time check to ensure Heuristic implements Strategy
// interface.
var _ Strategy = (*Heuristic)(nil)

const minDescriptionLen = 100

var (
	titleSelectors = []string{
		"h1", ".job-title", "[class*=job-title]", "[class*=jobTitle]",
		"[data-testid*=title]", "[data-automation*=title]",
	}
	companySelectors = []string{
		".company-name", "[class*=company-name]", "[class*=companyName]",
		"[data-testid*=company]", "[data-automation*=company]", `a[href*="/company/"]`,
	}
	locationSelectors = []string{
		".location", ".job-location", "[class*=job-location]", "[class*=jobLocation]",
		"[data-testid*=location]", "[data-automation*=location]",
	}
	descriptionSelectors = []string{
		"#job-description", ".job-description", "[class*=job-description]",
		"[class*=jobDescription]", "[class*=description]", "[data-testid*=description]",
		"[data-automation*=description]", "article", "main",
	}
	dateMetaSelectors = []string{
		`meta[itemprop="datePosted"]`, `meta[property="article:published_time"]`,
		`meta[name="date"]`,
	}
	chromeSelectors = "script, style, noscript, nav, header, footer, iframe, svg, form"

	companyLabelRegex  = regexp.MustCompile(`(?im)^\s*(?:company|employer|organization)\s*:\s*(.+)$`)
	locationLabelRegex = regexp.MustCompile(`(?im)^\s*(?:location|job location)\s*:\s*(.+)$`)
	remoteRegex        = regexp.MustCompile(`(?i)\b(?:fully remote|100% remote|remote[- ]first|work from home|remote position|remote role)\b`)
	titleSplitRegex    = regexp.MustCompile(`\s+[|\-–—]\s+`)
)

// Heuristic extracts posting fields from the visible markup of a page using
// CSS selectors common to job boards and applicant tracking systems.
type Heuristic struct {
	// Clock resolves relative dates such as "Posted 3 days ago". If not
	// specified, a default wall-clock implementation will be used.
	Clock clock.Clock
}

// Name implements Strategy.
func (*Heuristic) Name() string { return "heuristic" }

// Extract implements Strategy.
func (h *Heuristic) Extract(doc *goquery.Document) Draft {
	var d Draft

	// Page metadata is read from the full document; everything else from
	// the body with its chrome removed.
	ogTitle := metaContent(doc.Selection, `meta[property="og:title"]`)
	ogSite := metaContent(doc.Selection, `meta[property="og:site_name"]`)
	pageTitle := cleanInline(doc.Find("title").First().Text())

	for _, sel := range dateMetaSelectors {
		if d.DatePosted = parseDate(metaContent(doc.Selection, sel)); !d.DatePosted.IsZero() {
			break
		}
	}

	if d.DatePosted.IsZero() {
		if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
			d.DatePosted = parseDate(dt)
		}
	}

	body := doc.Selection.Clone()
	body.Find(chromeSelectors).Remove()
	bodyText := strings.Join(textLines(outerHTML(body)), "\n")

	d.Title = firstText(body, titleSelectors)
	if d.Title == "" {
		d.Title = ogTitle
	}

	if d.Title == "" && pageTitle != "" {
		d.Title = strings.TrimSpace(titleSplitRegex.Split(pageTitle, 2)[0])
	}

	d.Company = firstText(body, companySelectors)
	if d.Company == "" {
		d.Company = ogSite
	}

	if d.Company == "" {
		d.Company = labelValue(companyLabelRegex, bodyText)
	}

	d.Location = firstText(body, locationSelectors)
	if d.Location == "" {
		d.Location = labelValue(locationLabelRegex, bodyText)
	}

	d.Description = description(body)

	if d.DatePosted.IsZero() {
		d.DatePosted = parseRelativeDate(bodyText, h.clk().Now())
	}

	d.Remote = strings.Contains(strings.ToLower(d.Title+" "+d.Location), "remote") ||
		remoteRegex.MatchString(bodyText)

	return d
}

func (h *Heuristic) clk() clock.Clock {
	if h.Clock == nil {
		return clock.WallClock
	}

	return h.Clock
}

// description returns the text of the first description container holding
// enough text; failing that, the text of the largest block on the page.
func description(body *goquery.Selection) string {
	for _, selector := range descriptionSelectors {
		var text string

		body.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if t := plainText(outerHTML(sel)); len(t) > minDescriptionLen {
				text = t

				return false
			}

			return true
		})

		if text != "" {
			return text
		}
	}

	var best string
	body.Find("div, section, td").Each(func(_ int, sel *goquery.Selection) {
		if t := plainText(outerHTML(sel)); len(t) > len(best) {
			best = t
		}
	})

	if len(best) > minDescriptionLen {
		return best
	}

	return ""
}

func firstText(root *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := cleanInline(root.Find(selector).First().Text()); text != "" {
			return text
		}
	}

	return ""
}

func metaContent(root *goquery.Selection, selector string) string {
	content, _ := root.Find(selector).First().Attr("content")

	return cleanInline(content)
}

func labelValue(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return cleanInline(m[1])
}

func outerHTML(sel *goquery.Selection) string {
	var sb strings.Builder

	sel.Each(func(_ int, s *goquery.Selection) {
		markup, err := goquery.OuterHtml(s)
		if err == nil {
			sb.WriteString(markup)
		}
	})

	return sb.String()
}
