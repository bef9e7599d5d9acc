// Package manifest extracts dependency declarations from Package.swift
// text. It never executes Swift: manifests are normalized with tolerant
// text transforms and declarations are matched with ordered patterns. A
// malformed manifest degrades to fewer declarations, never to an error.
package manifest

import (
	"regexp"
	"strings"

	"spat/internal/identity"
	"spat/internal/logging"
)

var (
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	whitespaceRe   = regexp.MustCompile(`\s+`)

	// First bracketed sequence introduced by a dependencies: key. Matching
	// is non-greedy; target-level dependency arrays never contain .package
	// calls, so a premature close bracket only costs declarations that the
	// per-call scan would have skipped anyway.
	dependenciesRe = regexp.MustCompile(`(?is)dependencies\s*:\s*\[(.*?)\]`)

	urlArgRe  = regexp.MustCompile(`url\s*:\s*["']([^"']+)["']`)
	nameArgRe = regexp.MustCompile(`name\s*:\s*["']([^"']+)["']`)

	toolsVersionRe = regexp.MustCompile(`//\s*swift-tools-version\s*:\s*([0-9]+(?:\.[0-9]+)*)`)
)

// constraintPatterns are tried in priority order; the first match wins.
// The captured group is always the quoted argument.
var constraintPatterns = []*regexp.Regexp{
	regexp.MustCompile(`from\s*:\s*["']([^"']+)["']`),
	regexp.MustCompile(`\.upToNextMajor\s*\(\s*from\s*:\s*["']([^"']+)["']`),
	regexp.MustCompile(`\.upToNextMinor\s*\(\s*from\s*:\s*["']([^"']+)["']`),
	regexp.MustCompile(`exact\s*:\s*["']([^"']+)["']`),
	regexp.MustCompile(`branch\s*:\s*["']([^"']+)["']`),
	regexp.MustCompile(`revision\s*:\s*["']([^"']+)["']`),
}

// Parser extracts dependency declarations from manifest text. Identities
// are resolved through the injected resolver as each declaration is built.
type Parser struct {
	resolver *identity.Resolver
	logger   *logging.Logger
}

// NewParser creates a parser that resolves locators with the given resolver.
func NewParser(resolver *identity.Resolver, logger *logging.Logger) *Parser {
	return &Parser{
		resolver: resolver,
		logger:   logger,
	}
}

// Parse extracts the dependency declarations from manifest content. It
// always returns a (possibly empty) list: per-call problems are logged and
// skipped, a missing dependencies section means no declarations.
func (p *Parser) Parse(content string) []Declaration {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	cleaned := cleanContent(content)
	section, ok := dependenciesSection(cleaned)
	if !ok {
		p.logger.Debug("manifest has no dependencies section", nil)
		return nil
	}

	calls := findPackageCalls(section)
	decls := make([]Declaration, 0, len(calls))
	for _, call := range calls {
		decl, ok := p.parseCall(call)
		if !ok {
			continue
		}
		decls = append(decls, decl)
	}
	return decls
}

// cleanContent strips line and block comments and collapses whitespace so
// the pattern matchers see one predictable token stream.
func cleanContent(content string) string {
	content = lineCommentRe.ReplaceAllString(content, "")
	content = blockCommentRe.ReplaceAllString(content, "")
	return whitespaceRe.ReplaceAllString(content, " ")
}

// dependenciesSection returns the contents of the first dependencies array.
func dependenciesSection(cleaned string) (string, bool) {
	groups := dependenciesRe.FindStringSubmatch(cleaned)
	if groups == nil {
		return "", false
	}
	return groups[1], true
}

// findPackageCalls scans for `.package(` and walks each call to its
// balanced closing paren, so nested helper calls like
// `.upToNextMajor(from: "1.0.0")` never terminate the declaration early.
func findPackageCalls(section string) []string {
	var calls []string
	i := 0
	for i < len(section) {
		idx := strings.Index(section[i:], ".package")
		if idx < 0 {
			break
		}
		start := i + idx

		open := start + len(".package")
		for open < len(section) && section[open] == ' ' {
			open++
		}
		if open >= len(section) || section[open] != '(' {
			// .packages(...) or a trailing fragment
			i = start + len(".package")
			continue
		}

		depth := 0
		end := -1
		for j := open; j < len(section); j++ {
			switch section[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				end = j
				break
			}
		}
		if end < 0 {
			// Unbalanced call runs to the end of the section; nothing
			// usable follows.
			break
		}

		calls = append(calls, section[start:end+1])
		i = end + 1
	}
	return calls
}

// parseCall extracts one declaration from a `.package(...)` call. A call
// without a url argument is unusable and reports ok=false.
func (p *Parser) parseCall(call string) (Declaration, bool) {
	urlGroups := urlArgRe.FindStringSubmatch(call)
	if urlGroups == nil {
		p.logger.Warn("skipping package declaration without url", map[string]interface{}{
			"declaration": truncate(call, 120),
		})
		return Declaration{}, false
	}
	url := urlGroups[1]

	name := ""
	if groups := nameArgRe.FindStringSubmatch(call); groups != nil {
		name = groups[1]
	}
	if name == "" {
		name = nameFromURL(url)
	}

	constraint := ""
	for _, re := range constraintPatterns {
		if groups := re.FindStringSubmatch(call); groups != nil {
			constraint = groups[1]
			break
		}
	}

	kind := KindRuntime
	if strings.Contains(call, "testTarget") || strings.Contains(strings.ToLower(call), "test") {
		kind = KindTest
	}

	return Declaration{
		Name:       name,
		URL:        url,
		Constraint: constraint,
		Kind:       kind,
		Resolved:   p.resolver.Resolve(url),
	}, true
}

// nameFromURL derives a display name from the last path segment of a
// locator, with any .git suffix stripped.
func nameFromURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")
	if i := strings.LastIndex(url, "/"); i >= 0 {
		url = url[i+1:]
	}
	return url
}

// ExtractToolsVersion reads the swift-tools-version header comment from raw
// manifest text. Returns "" when the header is missing.
func ExtractToolsVersion(content string) string {
	groups := toolsVersionRe.FindStringSubmatch(content)
	if groups == nil {
		return ""
	}
	return groups[1]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
