package acl

import "strings"

// AccessLevel represents a permission bit flag on a folder
type AccessLevel uint8

const (
	AccessRead AccessLevel = 1 << iota
	AccessWrite
	AccessAdmin
)

// AccessNone grants nothing
const AccessNone AccessLevel = 0

// AccessAll is what the owner of a folder holds
const AccessAll = AccessRead | AccessWrite | AccessAdmin

func (a AccessLevel) Has(level AccessLevel) bool {
	return a&level == level
}

func (a AccessLevel) String() string {
	if a == AccessNone {
		return "None"
	}

	var parts []string
	if a.Has(AccessRead) {
		parts = append(parts, "Read")
	}
	if a.Has(AccessWrite) {
		parts = append(parts, "Write")
	}
	if a.Has(AccessAdmin) {
		parts = append(parts, "Admin")
	}

	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, "+")
}
