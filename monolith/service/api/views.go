package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/mycok/uJobs/jobs"
)

const dateLayout = "2006-01-02"

type jobList struct {
	Jobs       []jobView `json:"jobs"`
	Total      uint64    `json:"total,omitempty"`
	Offset     uint64    `json:"offset,omitempty"`
	NextOffset *uint64   `json:"next_offset,omitempty"`
}

type salaryView struct {
	Currency string  `json:"currency,omitempty"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Unit     string  `json:"unit,omitempty"`
}

// jobView is the wire form of a posting.
type jobView struct {
	ID           string      `json:"id,omitempty"`
	Company      string      `json:"company"`
	Title        string      `json:"title"`
	Location     string      `json:"location"`
	DatePosted   string      `json:"datePosted,omitempty"`
	ValidThrough string      `json:"validThrough,omitempty"`
	URL          string      `json:"url"`
	Source       string      `json:"source"`
	Remote       bool        `json:"remote"`
	Salary       *salaryView `json:"salary,omitempty"`
	Keywords     []string    `json:"jd_keywords"`
	Description  string      `json:"jd_text,omitempty"`
	Summary      string      `json:"summary,omitempty"`
	Score        float64     `json:"score,omitempty"`
	Rank         int         `json:"rank,omitempty"`
}

func newJobView(p *jobs.Posting) jobView {
	v := jobView{
		Company:     p.Company,
		Title:       p.Title,
		Location:    p.Location,
		URL:         p.URL,
		Source:      string(p.Board),
		Remote:      p.Remote,
		Keywords:    p.Keywords,
		Description: p.Description,
	}

	if v.Keywords == nil {
		v.Keywords = []string{}
	}

	if p.ID != uuid.Nil {
		v.ID = p.ID.String()
	}

	if p.HasDate() {
		v.DatePosted = p.DatePosted.UTC().Format(dateLayout)
	}

	if !p.ValidThrough.IsZero() {
		v.ValidThrough = p.ValidThrough.UTC().Format(dateLayout)
	}

	if p.Salary != nil {
		v.Salary = &salaryView{
			Currency: p.Salary.Currency,
			Min:      p.Salary.Min,
			Max:      p.Salary.Max,
			Unit:     p.Salary.Unit,
		}
	}

	return v
}

func toJobViews(results []jobs.RankedResult) []jobView {
	views := make([]jobView, 0, len(results))
	for i := range results {
		v := newJobView(&results[i].Posting)
		v.Score = results[i].Score
		v.Rank = results[i].Rank
		views = append(views, v)
	}

	return views
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
