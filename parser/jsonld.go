package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mycok/uJobs/jobs"
)

// Static and compile-time check to ensure StructuredData implements
// Strategy interface.
var _ Strategy = StructuredData{}

var jsonControlReplacer = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")

// StructuredData reads the schema.org JobPosting object embedded in a page
// as JSON-LD.
type StructuredData struct{}

// Name implements Strategy.
func (StructuredData) Name() string { return "structured_data" }

// Extract implements Strategy.
func (StructuredData) Extract(doc *goquery.Document) Draft {
	var d Draft

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		var v interface{}
		if err := json.Unmarshal([]byte(jsonControlReplacer.Replace(raw)), &v); err != nil {
			return true
		}

		posting := findJobPosting(v)
		if posting == nil {
			return true
		}

		d = draftFromJobPosting(posting)

		return false
	})

	return d
}

// findJobPosting locates a JobPosting object in a decoded JSON-LD value.
// The object may appear at the top level, inside an array or inside an
// @graph container.
func findJobPosting(v interface{}) map[string]interface{} {
	switch val := v.(type) {
	case []interface{}:
		for _, item := range val {
			if p := findJobPosting(item); p != nil {
				return p
			}
		}
	case map[string]interface{}:
		if hasType(val, "JobPosting") {
			return val
		}

		if graph, ok := val["@graph"]; ok {
			return findJobPosting(graph)
		}
	}

	return nil
}

func hasType(obj map[string]interface{}, want string) bool {
	switch t := obj["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}

	return false
}

func draftFromJobPosting(p map[string]interface{}) Draft {
	d := Draft{
		Title:        cleanInline(plainText(stringValue(p["title"]))),
		Company:      cleanInline(nameValue(p["hiringOrganization"])),
		Description:  plainText(stringValue(p["description"])),
		DatePosted:   parseDate(stringValue(p["datePosted"])),
		ValidThrough: parseDate(stringValue(p["validThrough"])),
		Salary:       salaryValue(p["baseSalary"]),
	}

	if d.Title == "" {
		d.Title = cleanInline(stringValue(p["name"]))
	}

	d.Location = locationValue(p["jobLocation"])

	if strings.EqualFold(stringValue(p["jobLocationType"]), "TELECOMMUTE") {
		d.Remote = true
	}

	if d.Location == "" && d.Remote {
		d.Location = "Remote"
	}

	if strings.Contains(strings.ToLower(d.Location), "remote") {
		d.Remote = true
	}

	return d
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []interface{}:
		if len(val) > 0 {
			return stringValue(val[0])
		}
	case map[string]interface{}:
		if s := stringValue(val["@value"]); s != "" {
			return s
		}

		return stringValue(val["name"])
	}

	return ""
}

// nameValue handles properties given either as plain text or as an object
// with a name, such as hiringOrganization.
func nameValue(v interface{}) string {
	switch val := v.(type) {
	case map[string]interface{}:
		return stringValue(val["name"])
	default:
		return stringValue(val)
	}
}

func locationValue(v interface{}) string {
	var parts []string

	switch val := v.(type) {
	case []interface{}:
		for _, item := range val {
			if loc := locationValue(item); loc != "" {
				parts = append(parts, loc)
			}
		}

		return strings.Join(dedupe(parts), "; ")
	case map[string]interface{}:
		addr, ok := val["address"].(map[string]interface{})
		if !ok {
			if s := stringValue(val["address"]); s != "" {
				return cleanInline(s)
			}

			return cleanInline(stringValue(val["name"]))
		}

		for _, key := range []string{"addressLocality", "addressRegion", "addressCountry"} {
			if s := cleanInline(nameValue(addr[key])); s != "" {
				parts = append(parts, s)
			}
		}

		return strings.Join(dedupe(parts), ", ")
	default:
		return cleanInline(stringValue(val))
	}
}

func salaryValue(v interface{}) *jobs.Salary {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}

	s := &jobs.Salary{Currency: stringValue(obj["currency"])}

	switch value := obj["value"].(type) {
	case map[string]interface{}:
		s.Min = numberValue(value["minValue"])
		s.Max = numberValue(value["maxValue"])
		s.Unit = stringValue(value["unitText"])

		if s.Min == 0 && s.Max == 0 {
			s.Min = numberValue(value["value"])
			s.Max = s.Min
		}
	default:
		s.Min = numberValue(value)
		s.Max = s.Min
	}

	if s.Min == 0 && s.Max == 0 {
		return nil
	}

	return s
}

func numberValue(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(val), ",", ""), 64)

		return f
	}

	return 0
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]

	for _, item := range items {
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, item)
	}

	return out
}
