package model

import (
	"fmt"
	"strings"

	ioutils "github.com/exaile/exaile-test-files/internal/io"
)

// NameRegistry issues unique, sanitized directory names per parent path.
//
// Names are compared case-insensitively so collections stay distinct on
// case-folding filesystems. The registry draws nothing from the random
// source; the names it issues depend only on the order of requests.
type NameRegistry struct {
	allowed string
	issued  map[string]map[string]struct{}
}

// NewNameRegistry creates a registry sanitizing against allowed.
func NewNameRegistry(allowed string) *NameRegistry {
	return &NameRegistry{
		allowed: allowed,
		issued:  make(map[string]map[string]struct{}),
	}
}

// Allowed returns the allow-list used for sanitizing.
func (r *NameRegistry) Allowed() string {
	return r.allowed
}

// DirName returns the directory name for raw under parent.
//
// The name is sanitized first. Empty, "." and ".." results are prefixed
// with "_" so they stay inside parent. A name already issued under parent
// gets a " (n)" suffix with the smallest free n starting at 2.
func (r *NameRegistry) DirName(parent, raw string) string {
	name := ioutils.SanitizeFileName(raw, r.allowed)
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}

	used, ok := r.issued[parent]
	if !ok {
		used = make(map[string]struct{})
		r.issued[parent] = used
	}

	candidate := name
	for n := 2; ; n++ {
		key := strings.ToLower(candidate)
		if _, taken := used[key]; !taken {
			used[key] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
}
