package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveLoad_roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	c := New()
	c.Replace(
		[]ShowCandidate{{Key: "show name", Title: "Show Name", Episodes: []EpisodeRef{{Season: 1, Episode: 1, URL: "http://h/1", Name: "e1.mkv", Path: "Show/e1.mkv"}}}},
		[]MovieCandidate{{Key: "movie|2020", Title: "Movie", Year: "2020", Entries: []MovieEntry{{URL: "http://h/m", Name: "m.mp4", Path: "m.mp4"}}}},
	)
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	c2 := New()
	if err := c2.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	shows, movies := c2.Snapshot()
	if len(shows) != 1 || shows[0].Key != "show name" || len(shows[0].Episodes) != 1 {
		t.Errorf("shows: %+v", shows)
	}
	if len(movies) != 1 || movies[0].Year != "2020" {
		t.Errorf("movies: %+v", movies)
	}
}

func TestSave_atomic_noPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	c := New()
	c.Replace([]ShowCandidate{{Key: "x", Title: "X"}}, nil)
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "catalog.json" && strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
