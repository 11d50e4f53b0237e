package diagram

import (
	"bytes"
	"testing"
)

func TestCache_ExactMatch(t *testing.T) {
	c := NewCache()
	c.Put("Right triangle ABC with angle C = 90 degrees", []byte("png-1"))

	got, ok := c.Resolve("right  triangle ABC with angle C = 90 degrees")
	if !ok {
		t.Fatal("case and whitespace variants should hit the same entry")
	}
	if !bytes.Equal(got, []byte("png-1")) {
		t.Errorf("got %q", got)
	}
}

func TestCache_FuzzyMatchNeedsTwoWords(t *testing.T) {
	c := NewCache()
	c.Put("right triangle ABC with hypotenuse AB", []byte("tri"))

	if _, ok := c.Resolve("the right triangle from question 4"); !ok {
		t.Error("two shared words should match")
	}
	if _, ok := c.Resolve("an equilateral triangle"); ok {
		t.Error("one shared word must not match")
	}
}

func TestCache_BestOverlapWins(t *testing.T) {
	c := NewCache()
	c.Put("circle with centre O and tangent PQ", []byte("circle"))
	c.Put("right triangle with angle markings", []byte("triangle"))

	got, ok := c.Resolve("tangent PQ drawn to the circle")
	if !ok {
		t.Fatal("expected a fuzzy hit")
	}
	if !bytes.Equal(got, []byte("circle")) {
		t.Errorf("got %q, want the circle entry", got)
	}
}

func TestCache_Misses(t *testing.T) {
	c := NewCache()
	if _, ok := c.Resolve("anything"); ok {
		t.Error("empty cache resolved something")
	}

	c.Put("water cycle with labelled stages", []byte("wc"))
	if _, ok := c.Resolve("digestive system of humans"); ok {
		t.Error("unrelated description resolved")
	}
	if _, ok := c.Resolve(""); ok {
		t.Error("empty description resolved")
	}
}

func TestCache_IgnoresEmptyEntries(t *testing.T) {
	c := NewCache()
	c.Put("", []byte("x"))
	c.Put("valid description here", nil)
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}
