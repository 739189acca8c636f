package service

import (
	"errors"
	"testing"
)

func memorySlugCounter(taken map[string]bool) slugCounter {
	return func(slug string, _ *uint) (int64, error) {
		if taken[slug] {
			return 1, nil
		}
		return 0, nil
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":           "hello-world",
		"  Release 2.0 -- Now ": "release-2-0-now",
		"Q&A":                   "q-and-a",
		"It's live!":            "its-live",
		"公告":                    "",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) want %q got %q", input, want, got)
		}
	}
}

func TestResolveSlugAppendsMonotonicSuffix(t *testing.T) {
	taken := map[string]bool{}
	counter := memorySlugCounter(taken)

	first, err := resolveSlug("", "Hello World", slugFallbackPrefix, nil, counter)
	if err != nil {
		t.Fatalf("resolve first slug failed: %v", err)
	}
	taken[first] = true
	second, err := resolveSlug("", "Hello World", slugFallbackPrefix, nil, counter)
	if err != nil {
		t.Fatalf("resolve second slug failed: %v", err)
	}
	taken[second] = true
	third, _ := resolveSlug("", "Hello World", slugFallbackPrefix, nil, counter)

	if first != "hello-world" || second != "hello-world-1" || third != "hello-world-2" {
		t.Fatalf("unexpected slugs: %s %s %s", first, second, third)
	}
}

func TestResolveSlugExplicit(t *testing.T) {
	counter := memorySlugCounter(map[string]bool{"taken": true})

	if _, err := resolveSlug("Bad Slug", "x", slugFallbackPrefix, nil, counter); !errors.Is(err, ErrSlugInvalid) {
		t.Fatalf("want ErrSlugInvalid got %v", err)
	}
	if _, err := resolveSlug("taken", "x", slugFallbackPrefix, nil, counter); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("want ErrSlugExists got %v", err)
	}
	if got, err := resolveSlug("", "公告", slugFallbackPrefix, nil, counter); err != nil || got != slugFallbackPrefix {
		t.Fatalf("want fallback slug got %q err %v", got, err)
	}
}
