package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/log"
)

type note struct {
	Slug  string            `json:"slug"`
	Title string            `json:"title"`
	Tags  []string          `json:"tags"`
	Done  bool              `json:"done"`
	Meta  map[string]string `json:"meta,omitempty"`
}

func (n note) Key() string        { return n.Slug }
func (n *note) SetKey(key string) { n.Slug = key }

var noteSchema = Schema{
	Order:  []string{"title", "tags", "done", "meta"},
	Arrays: map[string]bool{"tags": true},
	Bools:  map[string]bool{"done": true},
	JSON:   map[string]bool{"meta": true},
}

type noteCodec struct{}

func (noteCodec) Render(n note) (string, error) {
	meta := Metadata{"title": n.Title, "tags": n.Tags, "done": n.Done}
	if n.Meta != nil {
		raw, err := json.Marshal(n.Meta)
		if err != nil {
			return "", err
		}
		meta["meta"] = json.RawMessage(raw)
	}
	return noteSchema.Render(meta, "body of "+n.Slug)
}

func (noteCodec) Parse(key, text string) (note, error) {
	meta, _, err := noteSchema.Parse(text)
	if err != nil {
		return note{}, err
	}
	n := note{Slug: key}
	n.Title, _ = meta["title"].(string)
	n.Tags, _ = meta["tags"].([]string)
	n.Done, _ = meta["done"].(bool)
	if raw, ok := meta["meta"].(json.RawMessage); ok {
		if err := json.Unmarshal(raw, &n.Meta); err != nil {
			return note{}, err
		}
	}
	return n, nil
}

// collections 返回两种实现，同一组契约测试对二者都要成立
func collections(t *testing.T, opts ...Option[note]) map[string]Collection[note] {
	dir := t.TempDir()
	return map[string]Collection[note]{
		"json":     NewJSONCollection(filepath.Join(dir, "notes.json"), ArrayLayout, opts...),
		"markdown": NewMarkdownCollection[note](filepath.Join(dir, "notes"), noteCodec{}, opts...),
	}
}

func TestCollectionContract(t *testing.T) {
	for name, c := range collections(t) {
		t.Run(name, func(t *testing.T) {
			items, err := c.List()
			require.NoError(t, err)
			assert.Empty(t, items)

			a := note{Slug: "a", Title: "A", Tags: []string{"x", "y"}, Done: true}
			require.NoError(t, c.Insert(a))

			got, err := c.Get("a")
			require.NoError(t, err)
			assert.Equal(t, a, got)

			err = c.Insert(note{Slug: "a", Title: "dup"})
			assert.ErrorIs(t, err, errs.ErrConflict)

			items, err = c.List()
			require.NoError(t, err)
			assert.Len(t, items, 1)

			_, err = c.Get("missing")
			assert.ErrorIs(t, err, errs.ErrNotFound)

			assert.ErrorIs(t, c.Remove("missing"), errs.ErrNotFound)
			require.NoError(t, c.Remove("a"))
			_, err = c.Get("a")
			assert.ErrorIs(t, err, errs.ErrNotFound)
		})
	}
}

func TestCollectionReplaceRenames(t *testing.T) {
	for name, c := range collections(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Insert(note{Slug: "a", Title: "A", Tags: []string{}}))
			require.NoError(t, c.Insert(note{Slug: "c", Title: "C", Tags: []string{}}))

			renamed := note{Slug: "b", Title: "A", Tags: []string{}}
			require.NoError(t, c.Replace("a", renamed))

			_, err := c.Get("a")
			assert.ErrorIs(t, err, errs.ErrNotFound)
			got, err := c.Get("b")
			require.NoError(t, err)
			assert.Equal(t, renamed, got)

			err = c.Replace("b", note{Slug: "c", Title: "taken"})
			assert.ErrorIs(t, err, errs.ErrConflict)

			err = c.Replace("nope", note{Slug: "nope"})
			assert.ErrorIs(t, err, errs.ErrNotFound)
		})
	}
}

func TestMarkdownRenameKeepsOrphanWhenRemoveFails(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := log.SetLogger(zap.New(core))
	t.Cleanup(func() { log.SetLogger(prev) })

	dir := filepath.Join(t.TempDir(), "notes")
	c := NewMarkdownCollection[note](dir, noteCodec{})
	_, err := c.List()
	require.NoError(t, err)

	// 旧路径是非空目录，os.Remove 必然失败
	oldPath := filepath.Join(dir, "a.md")
	require.NoError(t, os.Mkdir(oldPath, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(oldPath, "keep"), []byte("x"), 0644))

	renamed := note{Slug: "b", Title: "B", Tags: []string{}}
	require.NoError(t, c.Replace("a", renamed))

	got, err := c.Get("b")
	require.NoError(t, err)
	assert.Equal(t, renamed, got)
	assert.DirExists(t, oldPath)

	entries := logs.FilterMessage("改名后旧文件删除失败，已成为孤立文件").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "a", entries[0].ContextMap()["old"])
	assert.Equal(t, "b", entries[0].ContextMap()["new"])
}

func TestCollectionUpsert(t *testing.T) {
	for name, c := range collections(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Upsert(note{Slug: "a", Title: "one", Tags: []string{}}))
			require.NoError(t, c.Upsert(note{Slug: "a", Title: "two", Tags: []string{}}))

			items, err := c.List()
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "two", items[0].Title)
		})
	}
}

func TestCollectionRejectsInvalidKeys(t *testing.T) {
	for name, c := range collections(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../etc", "Has Caps", "a--b", "-a", "a/b"} {
				assert.ErrorIs(t, c.Insert(note{Slug: key}), errs.ErrValidation, key)
			}
		})
	}
}

func TestCollectionSeed(t *testing.T) {
	seed := []note{{Slug: "hello", Title: "Hello", Tags: []string{}}}
	for name, c := range collections(t, WithSeed(seed...)) {
		t.Run(name, func(t *testing.T) {
			items, err := c.List()
			require.NoError(t, err)
			assert.Equal(t, seed, items)
		})
	}
}

func TestCollectionConcurrentInsertsWithWriteLock(t *testing.T) {
	for name, c := range collections(t, WithWriteLock[note]()) {
		t.Run(name, func(t *testing.T) {
			keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
			var wg sync.WaitGroup
			for _, k := range keys {
				wg.Add(1)
				go func(k string) {
					defer wg.Done()
					assert.NoError(t, c.Insert(note{Slug: k, Tags: []string{}}))
				}(k)
			}
			wg.Wait()

			items, err := c.List()
			require.NoError(t, err)
			assert.Len(t, items, len(keys))
		})
	}
}

func TestJSONFirstReadDoesNotOverwriteInsert(t *testing.T) {
	for i := 0; i < 20; i++ {
		path := filepath.Join(t.TempDir(), "notes.json")
		c := NewJSONCollection(path, ArrayLayout,
			WithSeed(note{Slug: "seed", Tags: []string{}}), WithWriteLock[note]())

		var wg sync.WaitGroup
		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.List()
				assert.NoError(t, err)
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Insert(note{Slug: "new", Tags: []string{}}))
		}()
		wg.Wait()

		items, err := c.List()
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "seed", items[0].Slug)
		assert.Equal(t, "new", items[1].Slug)
	}
}

func TestJSONCollectionCorruptFileIsNotReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	c := NewJSONCollection[note](path, ArrayLayout)
	_, err := c.List()
	assert.ErrorIs(t, err, errs.ErrStorage)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestJSONCollectionCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "notes.json")

	c := NewJSONCollection[note](path, ArrayLayout)
	_, err := c.List()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestJSONCollectionObjectLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "zeta": {"title": "Z", "tags": []},
  "alpha": {"title": "A", "tags": ["t"]}
}`), 0644))

	c := NewJSONCollection[note](path, ObjectLayout)
	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "zeta", items[0].Slug)
	assert.Equal(t, "alpha", items[1].Slug)

	items[1].Title = "A2"
	require.NoError(t, c.Upsert(items[1]))

	var raw map[string]map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "A2", raw["alpha"]["title"])
	assert.Equal(t, "Z", raw["zeta"]["title"])
}

func TestMarkdownListSkipsCorruptFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notes")
	c := NewMarkdownCollection[note](dir, noteCodec{})
	require.NoError(t, c.Insert(note{Slug: "good", Title: "Good", Tags: []string{}}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"), []byte("no front matter here"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0644))

	items, err := c.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "good", items[0].Slug)

	_, err = c.Get("broken")
	assert.ErrorIs(t, err, errs.ErrCorruptEntity)
}

func TestMarkdownGetRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.md"), []byte("---\ntitle: s\n---\n\n"), 0644))

	c := NewMarkdownCollection[note](filepath.Join(root, "notes"), noteCodec{})
	_, err := c.Get("../secret")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
