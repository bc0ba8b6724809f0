package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplitBounded(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "go", []string{"go"}},
		{"exactly three", "go, sql, redis", []string{"go", "sql", "redis"}},
		{"overflow keeps first three in order", "go,sql,redis,docker,k8s", []string{"go", "sql", "redis"}},
		{"blank items are skipped", " ,go,, sql ,", []string{"go", "sql"}},
		{"blank items do not count toward the cap", ",,a,,b,,c,d", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBounded(tt.in, MaxBoundedItems)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitBounded(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCapSequence(t *testing.T) {
	got := CapSequence([]string{"a.png", "", "b.png", "c.png", "d.png"}, MaxPortfolioImages)
	want := []string{"a.png", "b.png", "c.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CapSequence = %#v, want %#v", got, want)
	}
}

func TestDenyError_UnwrapsToForbidden(t *testing.T) {
	err := Deny(ResourceJob, "not the poster")
	var deny *DenyError
	if !errors.As(err, &deny) {
		t.Fatal("expected *DenyError")
	}
	if deny.Resource != ResourceJob {
		t.Errorf("resource = %q, want %q", deny.Resource, ResourceJob)
	}
	if !errors.Is(err, ErrForbidden) {
		t.Error("DenyError should unwrap to ErrForbidden")
	}
}

func TestProfile_ScanValueRoundTrip(t *testing.T) {
	in := Profile{Bio: "hi", Purpose: "hire", Skills: []string{"go"}, ProfileAuthor: 7}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var out Profile
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if out.Bio != "hi" || out.ProfileAuthor != 7 || len(out.Skills) != 1 {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if err := out.Scan(42); err == nil {
		t.Error("expected error scanning an int")
	}
}
