package terrain

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Garsondee/hexsight/internal/hexgrid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "boards.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := Build(5, 4,
		WithHill(hexgrid.Coord{Col: 3, Row: 2}, 1, 2),
		WithWoods(hexgrid.Coord{Col: 1, Row: 4}, 2),
		WithWater(hexgrid.Coord{Col: 5, Row: 4}, 1),
		WithUnit(hexgrid.Coord{Col: 2, Row: 2}, "Hunchback"),
	)
	if err := s.Save(ctx, "hills", b); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, "hills")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Width != 5 || got.Height != 4 || got.Name != "hills" {
		t.Fatalf("unexpected board header %dx%d %q", got.Width, got.Height, got.Name)
	}
	for _, hex := range b.Hexes() {
		if g := got.Get(hex.Coord); *g != hex {
			t.Fatalf("%v: saved %+v, loaded %+v", hex.Coord, hex, *g)
		}
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	c := hexgrid.Coord{Col: 1, Row: 1}

	if err := s.Save(ctx, "b", Build(2, 2, WithWoods(c, 2))); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "b", Build(3, 3)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 3 {
		t.Fatalf("expected replaced board width 3, got %d", got.Width)
	}
	if lvl, _ := got.FeatureLevel(c, Woods); lvl != 0 {
		t.Fatalf("expected old woods gone, got %d", lvl)
	}
	names, err := s.Names(ctx)
	if err != nil || len(names) != 1 || names[0] != "b" {
		t.Fatalf("expected [b], got %v (%v)", names, err)
	}
}

func TestStore_UnknownBoard(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, ErrUnknownBoard) {
		t.Fatalf("expected ErrUnknownBoard, got %v", err)
	}
}
