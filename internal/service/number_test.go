package service

import (
	"strconv"
	"strings"
	"testing"
)

func TestPrefixForService(t *testing.T) {
	cases := map[string]string{
		"consultation": "C",
		"admission":    "A",
		"contest":      "G",
		"online":       "O",
		"walkin":       "T",
		"":             "T",
	}
	for service, want := range cases {
		if got := PrefixForService(service); got != want {
			t.Fatalf("prefix for %q: expected %s, got %s", service, want, got)
		}
	}
}

func TestNextNumberStartsAt101(t *testing.T) {
	if got := NextNumber("C", ""); got != "C-101" {
		t.Fatalf("expected C-101, got %s", got)
	}
}

func TestNextNumberIncrements(t *testing.T) {
	if got := NextNumber("C", "C-101"); got != "C-102" {
		t.Fatalf("expected C-102, got %s", got)
	}
	if got := NextNumber("A", "A-999"); got != "A-1000" {
		t.Fatalf("expected A-1000, got %s", got)
	}
}

func TestNextNumberUnparseableSuffixRestarts(t *testing.T) {
	for _, last := range []string{"C-", "C-abc", "garbage"} {
		if got := NextNumber("C", last); got != "C-101" {
			t.Fatalf("last=%q: expected restart at C-101, got %s", last, got)
		}
	}
}

func TestNextNumberMonotonic(t *testing.T) {
	last := ""
	prev := 100
	for i := 0; i < 500; i++ {
		last = NextNumber("G", last)
		n, err := strconv.Atoi(strings.TrimPrefix(last, "G-"))
		if err != nil {
			t.Fatalf("unparseable number %s: %v", last, err)
		}
		if n != prev+1 {
			t.Fatalf("expected %d, got %d", prev+1, n)
		}
		prev = n
	}
}
