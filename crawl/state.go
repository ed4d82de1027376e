package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/webcrawl"
)

// state accumulates the outcome of one crawl. Writes come from download
// workers; the orchestrator reads it once the crawl has drained.
type state struct {
	mu         sync.Mutex
	downloaded []string
	errors     map[string]error
}

func newState() *state {
	return &state{errors: make(map[string]error)}
}

func (s *state) succeed(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloaded = append(s.downloaded, url)
}

func (s *state) fail(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[url] = err
}

// result copies the accumulated state into a Result the caller owns.
func (s *state) result() *webcrawl.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &webcrawl.Result{
		Downloaded: make([]string, len(s.downloaded)),
		Errors:     make(map[string]error, len(s.errors)),
	}
	copy(result.Downloaded, s.downloaded)
	for url, err := range s.errors {
		result.Errors[url] = err
	}
	return result
}

// scope restricts a crawl to a set of hosts. A nil scope allows every URL.
type scope map[string]struct{}

func newScope(hosts []string) scope {
	if hosts == nil {
		return nil
	}
	s := make(scope, len(hosts))
	for _, h := range hosts {
		key, err := webcrawl.NormalizeHost(h)
		if err != nil {
			key = strings.ToLower(h)
		}
		s[key] = struct{}{}
	}
	return s
}

// allows reports whether rawURL may enter the frontier. Hosts match with or
// without an explicit port. URLs whose host cannot be resolved are let
// through so the crawl records them as malformed.
func (s scope) allows(rawURL string) bool {
	if s == nil {
		return true
	}
	host, err := webcrawl.ResolveHost(rawURL)
	if err != nil {
		return true
	}
	if _, ok := s[host]; ok {
		return true
	}
	_, ok := s[webcrawl.SplitHostKey(host)]
	return ok
}
