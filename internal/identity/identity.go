// Package identity resolves repository locator strings to canonical package
// identities. Resolution is an ordered list of pure pattern matchers; a
// locator that matches no pattern resolves to nil rather than an error.
package identity

import (
	"fmt"
	"strings"
)

// PackageID identifies a package by its forge owner and repository name.
// Two identities are equal iff owner and repo compare case-sensitively
// equal after locator normalization.
type PackageID struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// String formats the identity as "owner/repo".
func (id PackageID) String() string {
	return id.Owner + "/" + id.Repo
}

// IsZero reports whether the identity is empty.
func (id PackageID) IsZero() bool {
	return id.Owner == "" && id.Repo == ""
}

// Parse splits an "owner/repo" reference into a PackageID. Used for CLI
// arguments; full repository URLs go through the Resolver instead.
func Parse(ref string) (PackageID, error) {
	ref = strings.TrimSpace(ref)
	parts := strings.Split(ref, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PackageID{}, fmt.Errorf("not an owner/repo reference: %q", ref)
	}
	return PackageID{Owner: parts[0], Repo: strings.TrimSuffix(parts[1], ".git")}, nil
}
