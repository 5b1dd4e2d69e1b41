package model

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	RecordTypeSRV = "SRV"

	DefaultPort = 25565
	SRVPrefix   = "_minecraft._tcp."
)

// Labels are the parent labels a subdomain can be registered under, selected by index.
var Labels = []string{"join", "a", "mc", "gg", "minecraft", "smp", "now"}

var dnsLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// LabelAt returns the parent label for index, falling back to index 0 when it is out of range.
func LabelAt(index int) (int, string) {
	if index < 0 || index >= len(Labels) {
		return 0, Labels[0]
	}
	return index, Labels[index]
}

type RegisterRequest struct {
	Target      string
	Port        int
	Word        string
	DomainIndex int
}

// ParseRegisterRequest reads ply, port, word and domain from the query string.
// Parse failures fall back to defaults; Validate reports anything unusable.
func ParseRegisterRequest(q url.Values) RegisterRequest {
	req := RegisterRequest{
		Target: strings.TrimSpace(q.Get("ply")),
		Port:   DefaultPort,
		Word:   strings.ToLower(strings.TrimSpace(q.Get("word"))),
	}

	if p, err := strconv.Atoi(q.Get("port")); err == nil {
		req.Port = p
	}
	if d, err := strconv.Atoi(q.Get("domain")); err == nil {
		req.DomainIndex, _ = LabelAt(d)
	}

	return req
}

func (r RegisterRequest) Label() string {
	_, l := LabelAt(r.DomainIndex)
	return l
}

// Host is the subdomain relative to the provider zone, e.g. "abc.join".
func (r RegisterRequest) Host() string {
	return r.Word + "." + r.Label()
}

// FQDN is the full hostname players connect to, e.g. "abc.join.tectrix.dev".
func (r RegisterRequest) FQDN(baseDomain string) string {
	return r.Host() + "." + baseDomain
}

// SRVName is the SRV record name relative to the provider zone.
func (r RegisterRequest) SRVName() string {
	return SRVPrefix + r.Host()
}

func (r RegisterRequest) Validate() error {
	if !dnsLabel.MatchString(r.Word) {
		return fmt.Errorf("subdomain %q is not a valid DNS label", r.Word)
	}
	if r.Target == "" {
		return fmt.Errorf("a target address must be provided")
	}
	if r.Port < 1 || r.Port > 65535 {
		return fmt.Errorf("port %d is out of range", r.Port)
	}
	return nil
}

type Players struct {
	Online int `json:"online"`
	Max    int `json:"max"`
}

// ServerStatus is the subset of the status API response that gets rendered.
type ServerStatus struct {
	Online   bool    `json:"online"`
	IP       string  `json:"ip,omitempty"`
	Port     int     `json:"port,omitempty"`
	Hostname string  `json:"hostname,omitempty"`
	Version  string  `json:"version,omitempty"`
	Players  Players `json:"players"`
}

type ErrorResponse struct {
	Status  int         `json:"status,omitempty"`
	Message string      `json:"msg,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
