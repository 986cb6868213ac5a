package sitecontent

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
		"json": NewService(store.NewJSONCollection(filepath.Join(dir, "site-content.json"), store.ObjectLayout,
			store.WithSeed(Defaults()...))),
		"markdown": NewService(store.NewMarkdownCollection[models.Section](filepath.Join(dir, "site-content"), Codec{},
			store.WithSeed(Defaults()...))),
	}
}

func TestDefaultsSeededOnFirstRead(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			sections, err := s.List()
			require.NoError(t, err)
			require.Len(t, sections, 4)

			hero, err := s.Get("hero")
			require.NoError(t, err)
			assert.Equal(t, "Hi, I'm Meet Joshi", hero.Title)
			assert.Equal(t, "View My Work", hero.Metadata.CTAText)

			skills, err := s.Get("skills")
			require.NoError(t, err)
			assert.Equal(t, []any{}, skills.Metadata.Extra["skillGroups"])
		})
	}
}

func TestJSONSeedKeepsSectionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site-content.json")
	s := NewService(store.NewJSONCollection(path, store.ObjectLayout, store.WithSeed(Defaults()...)))

	sections, err := s.List()
	require.NoError(t, err)
	keys := make([]string, 0, len(sections))
	for _, sec := range sections {
		keys = append(keys, sec.Section)
	}
	assert.Equal(t, []string{"hero", "about", "skills", "contact"}, keys)

	var raw map[string]map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "About Me", raw["about"]["title"])
}

func TestUpdateSection(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
			s.now = func() time.Time { return now }

			updated, err := s.Update("contact", func(sec *models.Section) error {
				return json.Unmarshal([]byte(`{"title":"Say hi","section":"hacked","metadata":"{\"email\":\"me@x.dev\"}"}`), sec)
			})
			require.NoError(t, err)
			assert.Equal(t, "contact", updated.Section)
			assert.Equal(t, "Say hi", updated.Title)
			assert.Equal(t, models.SectionMetadata{Email: "me@x.dev"}, updated.Metadata)
			assert.Equal(t, now, updated.UpdatedAt)

			got, err := s.Get("contact")
			require.NoError(t, err)
			assert.Equal(t, updated, got)
		})
	}
}

func TestUnknownSection(t *testing.T) {
	for name, s := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("footer")
			assert.ErrorIs(t, err, errs.ErrNotFound)
			assert.Equal(t, "Content section not found", errs.Message(err))

			_, err = s.Update("footer", func(*models.Section) error { return nil })
			assert.ErrorIs(t, err, errs.ErrNotFound)
		})
	}
}
