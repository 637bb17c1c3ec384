package jobs

import (
	"net/url"
	"strings"
)

// Board identifies the job board that hosts a posting.
type Board string

// Supported job boards.
const (
	BoardLinkedIn     Board = "linkedin"
	BoardIndeed       Board = "indeed"
	BoardGlassdoor    Board = "glassdoor"
	BoardGreenhouse   Board = "greenhouse"
	BoardLever        Board = "lever"
	BoardMonster      Board = "monster"
	BoardZipRecruiter Board = "ziprecruiter"
	BoardWorkday      Board = "workday"
	BoardOther        Board = "other"
)

// BoardInfo describes how a job board is recognised and searched.
type BoardInfo struct {
	Board Board

	// Value used in site-restricted search queries.
	Site string

	// Host suffix and optional path prefix identifying posting URLs.
	Host string
	Path string
}

// KnownBoards is the allow-list of boards targeted by site-restricted
// queries, in query order.
var KnownBoards = []BoardInfo{
	{Board: BoardLinkedIn, Site: "linkedin.com/jobs", Host: "linkedin.com", Path: "/jobs"},
	{Board: BoardIndeed, Site: "indeed.com", Host: "indeed.com"},
	{Board: BoardGlassdoor, Site: "glassdoor.com", Host: "glassdoor.com"},
	{Board: BoardGreenhouse, Site: "greenhouse.io", Host: "greenhouse.io"},
	{Board: BoardLever, Site: "lever.co", Host: "lever.co"},
	{Board: BoardMonster, Site: "monster.com", Host: "monster.com"},
	{Board: BoardZipRecruiter, Site: "ziprecruiter.com", Host: "ziprecruiter.com"},
}

// workday hosts postings on per-tenant sub-domains and is recognised but not
// targeted by site-restricted queries.
var extraBoards = []BoardInfo{
	{Board: BoardWorkday, Host: "myworkdayjobs.com"},
}

// BoardFromURL maps a posting URL to the board hosting it. Unknown hosts map
// to BoardOther.
func BoardFromURL(rawURL string) Board {
	if info, ok := lookupBoard(rawURL); ok {
		return info.Board
	}

	return BoardOther
}

// IsJobBoardURL returns true if rawURL points at a known job board listing.
func IsJobBoardURL(rawURL string) bool {
	_, ok := lookupBoard(rawURL)

	return ok
}

func lookupBoard(rawURL string) (BoardInfo, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return BoardInfo{}, false
	}

	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.EscapedPath())

	for _, list := range [][]BoardInfo{KnownBoards, extraBoards} {
		for _, info := range list {
			if host != info.Host && !strings.HasSuffix(host, "."+info.Host) {
				continue
			}

			if info.Path != "" && !strings.HasPrefix(path, info.Path) {
				continue
			}

			return info, true
		}
	}

	return BoardInfo{}, false
}
