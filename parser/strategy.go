package parser

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mycok/uJobs/jobs"
)

// Draft accumulates posting fields while strategies run.
type Draft struct {
	Title        string
	Company      string
	Location     string
	Description  string
	DatePosted   time.Time
	ValidThrough time.Time
	Remote       bool
	Salary       *jobs.Salary
}

// Complete returns true once the fields a posting is identified and
// validated by are all present.
func (d *Draft) Complete() bool {
	return d.Title != "" && d.Company != "" && d.Description != ""
}

// merge copies the fields of other into the still-empty fields of d.
func (d *Draft) merge(other Draft) {
	if d.Title == "" {
		d.Title = other.Title
	}

	if d.Company == "" {
		d.Company = other.Company
	}

	if d.Location == "" {
		d.Location = other.Location
	}

	if d.Description == "" {
		d.Description = other.Description
	}

	if d.DatePosted.IsZero() {
		d.DatePosted = other.DatePosted
	}

	if d.ValidThrough.IsZero() {
		d.ValidThrough = other.ValidThrough
	}

	if d.Salary == nil {
		d.Salary = other.Salary
	}

	d.Remote = d.Remote || other.Remote
}

// Strategy extracts posting fields from a parsed page. Strategies run in
// order; each one only fills the fields earlier strategies left empty.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Extract returns whatever fields the strategy found in doc.
	Extract(doc *goquery.Document) Draft
}
