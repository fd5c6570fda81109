package corpus

import (
	"reflect"
	"testing"
)

// runeTokenizer maps every rune to its code point.
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	ids := make([]int, 0, len(text))
	for _, r := range text {
		ids = append(ids, int(r))
	}
	return ids
}

func TestItemID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/set/utt-0007.flac", "utt-0007"},
		{"relative/19-198-0001.wav", "19-198-0001"},
		{"/data/set/utt.v2.flac", "utt.v2"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := (Item{Path: tt.path}).ID(); got != tt.want {
			t.Fatalf("ID(%q): got %q want %q", tt.path, got, tt.want)
		}
	}
}

func TestRawBatchShapes(t *testing.T) {
	items := []Item{{Path: "a.wav"}, {Path: "b.wav"}}

	flat := Flat(items...)
	bucket := Bucket(items)
	if flat.IsBucket() {
		t.Fatalf("Flat batch reports IsBucket")
	}
	if !bucket.IsBucket() {
		t.Fatalf("Bucket batch does not report IsBucket")
	}
	if !reflect.DeepEqual(flat.Items(), bucket.Items()) {
		t.Fatalf("normalized items differ: flat=%v bucket=%v", flat.Items(), bucket.Items())
	}

	var zero RawBatch
	if zero.Len() != 0 || zero.IsBucket() {
		t.Fatalf("zero RawBatch should be an empty flat batch")
	}
}

func TestGroup(t *testing.T) {
	items := []Item{{Path: "a"}, {Path: "b"}, {Path: "c"}, {Path: "d"}, {Path: "e"}}
	lengths := []int64{10, 50, 30, 50, 20}

	t.Run("size one keeps order", func(t *testing.T) {
		groups := Group(items, lengths, 1)
		if len(groups) != len(items) {
			t.Fatalf("expected %d groups, got %d", len(items), len(groups))
		}
		for i, g := range groups {
			if len(g) != 1 || g[0].Path != items[i].Path {
				t.Fatalf("group %d: got %v want [%v]", i, g, items[i])
			}
		}
	})

	t.Run("buckets sorted longest first", func(t *testing.T) {
		groups := Group(items, lengths, 2)
		var got [][]string
		for _, g := range groups {
			var paths []string
			for _, it := range g {
				paths = append(paths, it.Path)
			}
			got = append(got, paths)
		}
		// b and d tie at 50 and keep their relative order.
		want := [][]string{{"b", "d"}, {"c", "e"}, {"a"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("unexpected buckets: got %v want %v", got, want)
		}
	})

	t.Run("does not reorder input", func(t *testing.T) {
		Group(items, lengths, 3)
		if items[0].Path != "a" || items[1].Path != "b" {
			t.Fatalf("Group modified its input: %v", items)
		}
	})
}
