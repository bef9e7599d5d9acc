package identity

import (
	"regexp"
	"strings"
)

// DefaultForges returns the forge domains every resolver knows about.
func DefaultForges() []string {
	return []string{"github.com"}
}

// matcher is one host-path pattern. Matchers are pure: they either yield an
// identity or they don't.
type matcher struct {
	re *regexp.Regexp
}

func (m matcher) match(locator string) *PackageID {
	groups := m.re.FindStringSubmatch(locator)
	if groups == nil {
		return nil
	}
	return &PackageID{Owner: groups[1], Repo: groups[2]}
}

// Resolver maps repository locators (https URLs, scp-style ssh remotes) to
// package identities. Matchers are tried in order; the first match wins.
type Resolver struct {
	matchers []matcher
}

// NewResolver builds a resolver for the given forge domains. Each domain
// contributes two patterns, host/owner/repo and host:owner/repo, in that
// order. With no domains the default forges are used.
func NewResolver(forges ...string) *Resolver {
	if len(forges) == 0 {
		forges = DefaultForges()
	}

	seen := make(map[string]bool, len(forges))
	matchers := make([]matcher, 0, len(forges)*2)
	for _, forge := range forges {
		forge = strings.TrimSpace(forge)
		if forge == "" || seen[forge] {
			continue
		}
		seen[forge] = true

		host := regexp.QuoteMeta(forge)
		matchers = append(matchers,
			matcher{re: regexp.MustCompile(host + `/([^/:]+)/([^/:]+)`)},
			matcher{re: regexp.MustCompile(host + `:([^/:]+)/([^/:]+)`)},
		)
	}

	return &Resolver{matchers: matchers}
}

// Resolve returns the package identity for a repository locator, or nil when
// no known forge pattern matches. Callers exclude nil results from graph
// edges; the declaration itself stays counted.
func (r *Resolver) Resolve(locator string) *PackageID {
	locator = Normalize(locator)
	if locator == "" {
		return nil
	}

	for _, m := range r.matchers {
		if id := m.match(locator); id != nil {
			return id
		}
	}
	return nil
}

// Normalize strips the parts of a locator that never distinguish packages:
// surrounding whitespace, a trailing slash, and a trailing .git suffix.
func Normalize(locator string) string {
	locator = strings.TrimSpace(locator)
	locator = strings.TrimSuffix(locator, "/")
	locator = strings.TrimSuffix(locator, ".git")
	return locator
}
