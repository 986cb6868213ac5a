package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioCMS/internal/errs"
)

func TestParseStringList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want StringList
	}{
		{"json array", `["go","web"]`, StringList{"go", "web"}},
		{"comma separated", "go, web ,, astro", StringList{"go", "web", "astro"}},
		{"empty", "  ", StringList{}},
		{"json null", "null", StringList{}},
		{"single word", "go", StringList{"go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStringList(tt.in))
		})
	}
}

func TestStringListUnmarshal(t *testing.T) {
	var v struct {
		Tags StringList `json:"tags"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"tags":["a","b"]}`), &v))
	assert.Equal(t, StringList{"a", "b"}, v.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"tags":"[\"x\"]"}`), &v))
	assert.Equal(t, StringList{"x"}, v.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"tags":"a, b"}`), &v))
	assert.Equal(t, StringList{"a", "b"}, v.Tags)

	err := json.Unmarshal([]byte(`{"tags":42}`), &v)
	assert.ErrorIs(t, err, errs.ErrValidation)

	out, err := json.Marshal(struct {
		Tags StringList `json:"tags"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":[]}`, string(out))
}

func TestFlexBool(t *testing.T) {
	tests := []struct {
		in   string
		want FlexBool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"yes"`, false},
		{`"TRUE"`, false},
	}
	for _, tt := range tests {
		var b FlexBool
		require.NoError(t, json.Unmarshal([]byte(tt.in), &b), tt.in)
		assert.Equal(t, tt.want, b, tt.in)
	}

	var b FlexBool
	assert.ErrorIs(t, json.Unmarshal([]byte(`1`), &b), errs.ErrValidation)
}

func TestBlogExtensionFieldsRoundTrip(t *testing.T) {
	in := `{"slug":"hello","title":"Hello","tags":"go,web","readingTime":5,"series":"intro"}`

	var b Blog
	require.NoError(t, json.Unmarshal([]byte(in), &b))
	assert.Equal(t, "hello", b.Slug)
	assert.Equal(t, StringList{"go", "web"}, b.Tags)
	assert.Equal(t, Extra{"readingTime": float64(5), "series": "intro"}, b.Extra)

	out, err := json.Marshal(b)
	require.NoError(t, err)

	var back Blog
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, b, back)
}

func TestExtraCannotShadowKnownFields(t *testing.T) {
	b := Blog{Slug: "real", Extra: Extra{"slug": "fake", "mood": "happy"}}

	out, err := json.Marshal(b)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "real", m["slug"])
	assert.Equal(t, "happy", m["mood"])
}

func TestUnmarshalMergesIntoExisting(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := Project{
		Slug:         "x",
		Title:        "Old",
		Description:  "keep me",
		Technologies: StringList{"go"},
		CreatedAt:    created,
	}

	require.NoError(t, json.Unmarshal([]byte(`{"title":"New","featured":"true"}`), &p))

	assert.Equal(t, "New", p.Title)
	assert.Equal(t, "keep me", p.Description)
	assert.Equal(t, StringList{"go"}, p.Technologies)
	assert.True(t, bool(p.Featured))
	assert.Equal(t, created, p.CreatedAt)
}

func TestSectionMetadataFromString(t *testing.T) {
	var s Section
	require.NoError(t, json.Unmarshal([]byte(`{"metadata":"{\"subtitle\":\"Dev\",\"skillGroups\":[]}"}`), &s))
	assert.Equal(t, "Dev", s.Metadata.Subtitle)
	assert.Equal(t, Extra{"skillGroups": []any{}}, s.Metadata.Extra)

	require.NoError(t, json.Unmarshal([]byte(`{"metadata":"not json"}`), &s))
	assert.Equal(t, SectionMetadata{}, s.Metadata)
}

func TestSectionMetadataReplacedWholesale(t *testing.T) {
	s := Section{Metadata: SectionMetadata{Subtitle: "old", Email: "a@b.c"}}

	require.NoError(t, json.Unmarshal([]byte(`{"metadata":{"subtitle":"new"}}`), &s))
	assert.Equal(t, SectionMetadata{Subtitle: "new"}, s.Metadata)
}

func TestSectionOmitsZeroUpdatedAt(t *testing.T) {
	out, err := json.Marshal(Section{Section: "hero", Title: "Hi"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "updatedAt")
}

func TestContentStrategyValid(t *testing.T) {
	assert.True(t, StrategyJSON.Valid())
	assert.True(t, StrategyMarkdown.Valid())
	assert.False(t, ContentStrategy("sqlite").Valid())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		title string
		slug  string
		ok    bool
	}{
		{"ok", "Hello", "hello-world", true},
		{"missing title", " ", "x", false},
		{"missing slug", "T", "", false},
		{"bad slug", "T", "Hello World", false},
		{"double hyphen", "T", "a--b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Blog{Title: tt.title, Slug: tt.slug}.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, errs.ErrValidation)
			assert.ErrorIs(t, Project{Title: tt.title, Slug: tt.slug}.Validate(), errs.ErrValidation)
		})
	}
}

func TestTimestamp(t *testing.T) {
	in := time.Date(2024, 1, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	got := Timestamp(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123000000, got.Nanosecond())
	assert.True(t, in.Truncate(time.Millisecond).Equal(got))
}
