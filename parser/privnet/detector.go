// Package privnet rejects hosts that resolve to loopback, link-local or
// RFC1918 addresses before the parser fetches them.
package privnet

import (
	"fmt"
	"net"

	"github.com/mycok/uJobs/parser"
)

// Static and compile-time check to ensure Detector implements
// parser.PrivateNetworkDetector interface.
var _ parser.PrivateNetworkDetector = (*Detector)(nil)

var reservedCIDRs = []string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10", // carrier-grade NAT
	"127.0.0.0/8",
	"169.254.0.0/16", // includes cloud metadata endpoints
	"172.16.0.0/12",
	"192.168.0.0/16",
	"255.255.255.255/32",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

// Detector checks host names against a list of reserved network blocks.
type Detector struct {
	blocks []*net.IPNet

	// lookup resolves host names; replaced in tests.
	lookup func(host string) ([]net.IP, error)
}

// NewDetector returns a Detector covering the loopback, link-local and
// private address ranges.
func NewDetector() (*Detector, error) {
	return NewDetectorFromCIDRs(reservedCIDRs...)
}

// NewDetectorFromCIDRs returns a Detector covering only the given blocks.
func NewDetectorFromCIDRs(cidrs ...string) (*Detector, error) {
	blocks := make([]*net.IPNet, 0, len(cidrs))

	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("privnet: %w", err)
		}

		blocks = append(blocks, block)
	}

	return &Detector{blocks: blocks, lookup: net.LookupIP}, nil
}

// IsNetworkPrivate returns true if host is, or resolves to, an address in
// one of the detector's blocks. A host with several addresses is private if
// any of them is.
func (d *Detector) IsNetworkPrivate(host string) (bool, error) {
	ips := []net.IP{net.ParseIP(host)}

	if ips[0] == nil {
		var err error
		if ips, err = d.lookup(host); err != nil {
			return false, err
		}
	}

	for _, ip := range ips {
		for _, block := range d.blocks {
			if block.Contains(ip) {
				return true, nil
			}
		}
	}

	return false, nil
}
