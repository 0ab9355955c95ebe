package model

import (
	"errors"
	"strings"
	"testing"
)

func TestIdentityOf(t *testing.T) {
	tests := []struct {
		name     string
		record   TemplateRecord
		expected string
	}{
		{"canonical", TemplateRecord{SortID: IntPtr(3), AuthorID: "abc"}, "3 abc"},
		{"canonical zero sort", TemplateRecord{SortID: IntPtr(0), AuthorID: "abc"}, "0 abc"},
		{"canonical wins over key", TemplateRecord{SortID: IntPtr(1), AuthorID: "x", Key: "9 y"}, "1 x"},
		{"combined key", TemplateRecord{Key: "7 owner"}, "7 owner"},
		{"key without separator", TemplateRecord{Key: "owner"}, "0 owner"},
		{"sort without author uses key", TemplateRecord{SortID: IntPtr(5), Key: "2 z"}, "2 z"},
		{"name fallback", TemplateRecord{Name: "My Castle!"}, "name:my-castle"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IdentityOf(test.record); got != test.expected {
				t.Errorf("IdentityOf() = %q, expected %q", got, test.expected)
			}
		})
	}
}

func TestIdentityOf_Stable(t *testing.T) {
	record := TemplateRecord{SortID: IntPtr(4), AuthorID: "owner"}
	if IdentityOf(record) != IdentityOf(record) {
		t.Error("identity should be identical across calls")
	}
}

func TestResolveIdentity_FallbackErrors(t *testing.T) {
	_, err := ResolveIdentity(TemplateRecord{SortID: IntPtr(1), AuthorID: "a"})
	if err != nil {
		t.Errorf("canonical record should resolve without error, got %v", err)
	}

	id, err := ResolveIdentity(TemplateRecord{Name: "castle"})
	var resErr *IdentityResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected IdentityResolutionError, got %v", err)
	}
	if resErr.Fallback != id {
		t.Errorf("error fallback %q does not match identity %q", resErr.Fallback, id)
	}

	id, err = ResolveIdentity(TemplateRecord{})
	if err == nil {
		t.Fatal("expected error for record without any identifier")
	}
	if !strings.HasPrefix(id, TempIdentityPrefix) {
		t.Errorf("expected placeholder identity with prefix %q, got %q", TempIdentityPrefix, id)
	}
}

func TestSanitizeName_Truncates(t *testing.T) {
	long := strings.Repeat("a", 100)
	if got := sanitizeName(long); len(got) != MaxNameIdentityRune {
		t.Errorf("expected length %d, got %d", MaxNameIdentityRune, len(got))
	}
}
