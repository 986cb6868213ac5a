package blog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/store"
)

func newServices(t *testing.T) map[string]*Service {
	dir := t.TempDir()
	return map[string]*Service{
		"json": NewService(store.NewJSONCollection(filepath.Join(dir, "blogs.json"), store.ArrayLayout,
			store.WithWriteLock[models.Blog]())),
		"markdown": NewService(store.NewMarkdownCollection[models.Blog](filepath.Join(dir, "blogs"), Codec{},
			store.WithWriteLock[models.Blog]())),
	}
}

func TestCreateAndGet(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			in := models.Blog{
				Slug:        "hello-world",
				Title:       "Hello",
				Description: "first post",
				Content:     "# Hi\n\nbody",
				Author:      "Meet",
				PublishDate: "2024-03-01",
				Tags:        models.StringList{"go"},
				Extra:       models.Extra{"readingTime": float64(3)},
			}
			created, err := s.Create(in)
			require.NoError(t, err)
			assert.False(t, created.CreatedAt.IsZero())
			assert.Equal(t, created.CreatedAt, created.UpdatedAt)

			got, err := s.Get("hello-world")
			require.NoError(t, err)
			assert.Equal(t, created, got)

			in.CreatedAt, in.UpdatedAt = got.CreatedAt, got.UpdatedAt
			assert.Equal(t, in, got)
		})
	}
}

func TestCreateDuplicateSlug(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(models.Blog{Slug: "x", Title: "One"})
			require.NoError(t, err)

			_, err = s.Create(models.Blog{Slug: "x", Title: "Two"})
			assert.ErrorIs(t, err, errs.ErrConflict)
			assert.Equal(t, "A blog post with this slug already exists", errs.Message(err))

			all, err := s.List()
			require.NoError(t, err)
			assert.Len(t, all, 1)
			assert.Equal(t, "One", all[0].Title)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(models.Blog{Slug: "x"})
			assert.ErrorIs(t, err, errs.ErrValidation)

			_, err = s.Create(models.Blog{Title: "No slug"})
			assert.ErrorIs(t, err, errs.ErrValidation)

			_, err = s.Create(models.Blog{Title: "T", Slug: "../escape"})
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestUpdateRenamesSlug(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			s.SetClock(func() time.Time { return clock })

			created, err := s.Create(models.Blog{Slug: "a", Title: "A", Content: "same body"})
			require.NoError(t, err)

			clock = clock.Add(time.Hour)
			updated, err := s.Update("a", func(b *models.Blog) error {
				return json.Unmarshal([]byte(`{"slug":"b","createdAt":"1999-01-01T00:00:00Z"}`), b)
			})
			require.NoError(t, err)
			assert.Equal(t, "b", updated.Slug)
			assert.Equal(t, created.CreatedAt, updated.CreatedAt)
			assert.Equal(t, clock, updated.UpdatedAt)

			_, err = s.Get("a")
			assert.ErrorIs(t, err, errs.ErrNotFound)
			assert.Equal(t, "Blog post not found", errs.Message(err))

			got, err := s.Get("b")
			require.NoError(t, err)
			assert.Equal(t, "same body", got.Content)
			assert.Equal(t, "A", got.Title)
		})
	}
}

func TestUpdateKeepsSlugWhenOmitted(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(models.Blog{Slug: "a", Title: "A"})
			require.NoError(t, err)

			updated, err := s.Update("a", func(b *models.Blog) error {
				b.Slug = ""
				b.Title = "A2"
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, "a", updated.Slug)
			assert.Equal(t, "A2", updated.Title)
		})
	}
}

func TestUpdateConflictsAndMissing(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			for _, slug := range []string{"a", "b"} {
				_, err := s.Create(models.Blog{Slug: slug, Title: slug})
				require.NoError(t, err)
			}

			_, err := s.Update("a", func(b *models.Blog) error { b.Slug = "b"; return nil })
			assert.ErrorIs(t, err, errs.ErrConflict)

			_, err = s.Update("zzz", func(b *models.Blog) error { return nil })
			assert.ErrorIs(t, err, errs.ErrNotFound)

			got, err := s.Get("a")
			require.NoError(t, err)
			assert.Equal(t, "a", got.Title)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(models.Blog{Slug: "a", Title: "A"})
			require.NoError(t, err)

			require.NoError(t, s.Delete("a"))
			assert.ErrorIs(t, s.Delete("a"), errs.ErrNotFound)
		})
	}
}

func TestPublished(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(models.Blog{Slug: "live", Title: "Live"})
			require.NoError(t, err)
			_, err = s.Create(models.Blog{Slug: "wip", Title: "WIP", Draft: true})
			require.NoError(t, err)

			pub, err := s.Published()
			require.NoError(t, err)
			require.Len(t, pub, 1)
			assert.Equal(t, "live", pub[0].Slug)
		})
	}
}

func TestMarkdownFileLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blogs")
	s := NewService(store.NewMarkdownCollection[models.Blog](dir, Codec{}))
	s.SetClock(func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) })

	_, err := s.Create(models.Blog{
		Slug:        "post",
		Title:       "Post",
		Description: "  padded  ",
		Content:     "Body text\n",
		Tags:        models.StringList{"a", "b"},
		Featured:    true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "post.md"))
	require.NoError(t, err)
	want := "---\n" +
		"title: Post\n" +
		"description: \"  padded  \"\n" +
		"author: \n" +
		"publishDate: \n" +
		"tags: [\"a\",\"b\"]\n" +
		"draft: false\n" +
		"featured: true\n" +
		"createdAt: 2024-02-03T04:05:06Z\n" +
		"updatedAt: 2024-02-03T04:05:06Z\n" +
		"---\n\n" +
		"Body text\n"
	assert.Equal(t, want, string(data))
}

func TestCodecRoundTrip(t *testing.T) {
	b := models.Blog{
		Slug:        "rt",
		Title:       `"Quoted" title: with colon`,
		Description: "multi\nline",
		Content:     "\n---\nbody with delimiter\n",
		Author:      "A",
		PublishDate: "2024-01-01",
		Image:       "/img.png",
		Tags:        models.StringList{"x, y", "z"},
		Draft:       true,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 5_000_000, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Extra:       models.Extra{"series": "intro", "weights": []any{float64(1), float64(2)}},
	}

	for _, content := range []string{"\n---\nbody with delimiter\n", "line1\r\nline2\r\n"} {
		b.Content = content
		text, err := Codec{}.Render(b)
		require.NoError(t, err)
		got, err := Codec{}.Parse("rt", text)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
}
