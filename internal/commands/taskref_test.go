package commands

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/task"
)

func TestParseTaskRef_Numeric(t *testing.T) {
	ref, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Num != 5 {
		t.Errorf("expected Num 5, got %d", ref.Num)
	}
	if ref.Prefix != "5" {
		t.Errorf("expected Prefix %q, got %q", "5", ref.Prefix)
	}
}

func TestParseTaskRef_IDPrefix(t *testing.T) {
	ref, err := ParseTaskRef([]string{"  a1b2 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Num != 0 {
		t.Errorf("expected Num 0, got %d", ref.Num)
	}
	if ref.Prefix != "a1b2" {
		t.Errorf("expected Prefix %q, got %q", "a1b2", ref.Prefix)
	}
	if ref.String() != "a1b2" {
		t.Errorf("expected String %q, got %q", "a1b2", ref.String())
	}
}

func TestParseTaskRef_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no args", nil, ErrTaskRefRequired},
		{"blank", []string{" "}, ErrTaskRefRequired},
		{"zero", []string{"0"}, ErrInvalidRef},
		{"too many", []string{"1", "2"}, ErrInvalidRef},
		{"overflow", []string{"99999999999999999999999"}, ErrInvalidRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTaskRef(tt.args)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"123", true},
		{"12a", false},
		{"١٢", false}, // non-ASCII digits
	}
	for _, tt := range tests {
		if got := isAllDigits(tt.in); got != tt.want {
			t.Errorf("isAllDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func lookupFixture() []task.Task {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []task.Task{
		{ID: "abc123", Title: "one", CreatedAt: base},
		{ID: "abd456", Title: "two", CreatedAt: base},
		{ID: "12ff00", Title: "three", CreatedAt: base},
	}
}

func TestLookupTask(t *testing.T) {
	tasks := lookupFixture()

	tests := []struct {
		ref    string
		wantID string
	}{
		{"1", "abc123"},
		{"3", "12ff00"},
		{"abd", "abd456"},
		{"abc123", "abc123"},
		// Out of range numbers fall back to id prefixes.
		{"12", "12ff00"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			ref, err := ParseTaskRef([]string{tt.ref})
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			got, err := lookupTask(tasks, ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("expected %q, got %q", tt.wantID, got.ID)
			}
		})
	}
}

func TestLookupTask_Errors(t *testing.T) {
	tasks := lookupFixture()

	tests := []struct {
		ref     string
		want    error
		wantMsg string
	}{
		{"4", ErrOutOfRange, "task number out of range: 4"},
		{"ab", ErrAmbiguousRef, "ambiguous task reference: ab (matches 2 tasks)"},
		{"zz", ErrTaskNotFound, "task not found: zz"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			ref, err := ParseTaskRef([]string{tt.ref})
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			_, err = lookupTask(tasks, ref)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestLookupTask_Empty(t *testing.T) {
	ref, _ := ParseTaskRef([]string{"1"})
	if _, err := lookupTask(nil, ref); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestStdinPrompter(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"y\n", true, false},
		{"YES\n", true, false},
		{"n\n", false, false},
		{"\n", false, false},
		{"", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out strings.Builder
			prompt := StdinPrompter(bufio.NewReader(strings.NewReader(tt.input)), &out)

			got, err := prompt(context.Background(), "Allow?")
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if out.String() != "Allow? [y/N] " {
				t.Errorf("unexpected prompt %q", out.String())
			}
		})
	}
}
