package material_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starquake/kioskquiz/internal/jsonfile"
	"github.com/starquake/kioskquiz/internal/logging"
	"github.com/starquake/kioskquiz/internal/material"
	"github.com/starquake/kioskquiz/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newStore(t *testing.T) (*material.FileStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "materials.json")
	s := material.NewFileStore(path, logging.NewLogger(testutil.NewTestWriter(t))).
		WithClock(func() time.Time { return fixedNow })

	return s, path
}

func seed(t *testing.T, path string, materials []*material.Material) {
	t.Helper()

	if err := jsonfile.Write(path, materials); err != nil {
		t.Fatalf("seeding materials: %v", err)
	}
}

func TestFileStore_List(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		s, _ := newStore(t)
		got, err := s.List(t.Context())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want an empty slice", got)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		t.Parallel()

		s, path := newStore(t)
		if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
			t.Fatalf("writing materials: %v", err)
		}
		if _, err := s.List(t.Context()); !errors.Is(err, jsonfile.ErrCorrupt) {
			t.Errorf("got error %v, want %v", err, jsonfile.ErrCorrupt)
		}
	})
}

func TestFileStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("id from the clock", func(t *testing.T) {
		t.Parallel()

		s, _ := newStore(t)
		got, err := s.Create(t.Context(), material.Patch{
			ID:       ptr(int64(5)),
			Title:    ptr("Marble"),
			Category: ptr("stone"),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		want := &material.Material{ID: fixedNow.UnixMilli(), Title: "Marble", Category: "stone"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("material mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("same millisecond", func(t *testing.T) {
		t.Parallel()

		s, _ := newStore(t)
		first, err := s.Create(t.Context(), material.Patch{Title: ptr("Marble")})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		second, err := s.Create(t.Context(), material.Patch{Title: ptr("Bronze")})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if got, want := second.ID, first.ID+1; got != want {
			t.Errorf("got id %d, want %d", got, want)
		}

		all, err := s.List(t.Context())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if got, want := len(all), 2; got != want {
			t.Errorf("got %d materials, want %d", got, want)
		}
	})
}

func TestFileStore_Get(t *testing.T) {
	t.Parallel()

	s, path := newStore(t)
	seed(t, path, []*material.Material{{ID: 1, Title: "Marble"}, {ID: 2, Title: "Bronze"}})

	got, err := s.Get(t.Context(), 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(&material.Material{ID: 2, Title: "Bronze"}, got); diff != "" {
		t.Errorf("material mismatch (-want +got):\n%s", diff)
	}

	if _, err = s.Get(t.Context(), 3); !errors.Is(err, material.ErrMaterialNotFound) {
		t.Errorf("got error %v, want %v", err, material.ErrMaterialNotFound)
	}
}

func TestFileStore_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      int64
		patch   material.Patch
		want    []*material.Material
		wantErr error
	}{
		{
			name:  "merge keeps id",
			id:    1,
			patch: material.Patch{ID: ptr(int64(1)), Description: ptr("White stone")},
			want: []*material.Material{
				{ID: 1, Title: "Marble", Description: "White stone"},
				{ID: 2, Title: "Bronze"},
			},
		},
		{
			name:  "zero id is ignored",
			id:    2,
			patch: material.Patch{ID: ptr(int64(0)), Title: ptr("Cast bronze")},
			want: []*material.Material{
				{ID: 1, Title: "Marble"},
				{ID: 2, Title: "Cast bronze"},
			},
		},
		{
			name:  "rename to a free id",
			id:    2,
			patch: material.Patch{ID: ptr(int64(7))},
			want: []*material.Material{
				{ID: 1, Title: "Marble"},
				{ID: 7, Title: "Bronze"},
			},
		},
		{
			name:    "rename to a used id",
			id:      2,
			patch:   material.Patch{ID: ptr(int64(1)), Title: ptr("Clay")},
			wantErr: material.ErrIDConflict,
			want: []*material.Material{
				{ID: 1, Title: "Marble"},
				{ID: 2, Title: "Bronze"},
			},
		},
		{
			name:    "missing material",
			id:      9,
			patch:   material.Patch{Title: ptr("Clay")},
			wantErr: material.ErrMaterialNotFound,
			want: []*material.Material{
				{ID: 1, Title: "Marble"},
				{ID: 2, Title: "Bronze"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, path := newStore(t)
			seed(t, path, []*material.Material{{ID: 1, Title: "Marble"}, {ID: 2, Title: "Bronze"}})

			_, err := s.Update(t.Context(), tt.id, tt.patch)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}

			got, err := s.List(t.Context())
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("materials mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileStore_Delete(t *testing.T) {
	t.Parallel()

	s, path := newStore(t)
	seed(t, path, []*material.Material{{ID: 1, Title: "Marble"}, {ID: 2, Title: "Bronze"}})

	if err := s.Delete(t.Context(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(t.Context(), 1); !errors.Is(err, material.ErrMaterialNotFound) {
		t.Errorf("got error %v, want %v", err, material.ErrMaterialNotFound)
	}

	got, err := s.List(t.Context())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]*material.Material{{ID: 2, Title: "Bronze"}}, got); diff != "" {
		t.Errorf("materials mismatch (-want +got):\n%s", diff)
	}
}
