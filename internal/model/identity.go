package model

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Identity constants
const (
	IdentitySeparator   = " "
	DefaultSortID       = 0
	NameIdentityPrefix  = "name:"
	TempIdentityPrefix  = "tmp:"
	MaxNameIdentityRune = 32
)

// IdentityResolutionError reports a record without canonical identity
// fields. The identity attached to it is a best-effort fallback.
type IdentityResolutionError struct {
	Fallback string
	Reason   string
}

func (e *IdentityResolutionError) Error() string {
	return fmt.Sprintf("identity resolution: %s (using fallback %q)", e.Reason, e.Fallback)
}

// IdentityOf returns the stable key of a template. Records lacking the
// canonical sort/author pair fall back to the combined key, then to the
// name or a time-ordered placeholder; those paths log a warning.
func IdentityOf(record TemplateRecord) string {
	id, err := ResolveIdentity(record)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	return id
}

// ResolveIdentity is IdentityOf without logging. A non-nil error means the
// returned identity came from a fallback that may not be stable.
func ResolveIdentity(record TemplateRecord) (string, error) {
	author := strings.TrimSpace(record.AuthorID)
	if record.SortID != nil && author != "" {
		return strconv.Itoa(*record.SortID) + IdentitySeparator + author, nil
	}

	if key := strings.TrimSpace(record.Key); key != "" {
		if sort, rest, ok := strings.Cut(key, IdentitySeparator); ok && rest != "" {
			return sort + IdentitySeparator + strings.TrimSpace(rest), nil
		}
		return strconv.Itoa(DefaultSortID) + IdentitySeparator + key, nil
	}

	if name := sanitizeName(record.Name); name != "" {
		id := NameIdentityPrefix + name
		return id, &IdentityResolutionError{Fallback: id, Reason: "record has no sort/author or key"}
	}

	id := TempIdentityPrefix + placeholderID()
	return id, &IdentityResolutionError{Fallback: id, Reason: "record has no identifier fields and no name"}
}

// sanitizeName keeps letters, digits, '-' and '_', lowercased, truncated.
func sanitizeName(name string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if n >= MaxNameIdentityRune {
			break
		}
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			continue
		}
		n++
	}
	return strings.Trim(b.String(), "-")
}

func placeholderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
