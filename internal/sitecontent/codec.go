package sitecontent

import (
	"encoding/json"
	"fmt"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/store"
)

var frontMatter = store.Schema{
	Order: []string{"title", "metadata", "updatedAt"},
	JSON:  map[string]bool{"metadata": true},
}

// Codec 区块与 markdown 文件之间的转换，文件名为区块名
type Codec struct{}

func (Codec) Render(s models.Section) (string, error) {
	meta := store.Metadata{}
	for k, v := range s.Extra {
		meta[k] = v
	}
	raw, err := json.Marshal(s.Metadata)
	if err != nil {
		return "", err
	}
	meta["title"] = s.Title
	meta["metadata"] = json.RawMessage(raw)
	if !s.UpdatedAt.IsZero() {
		meta["updatedAt"] = store.FormatTime(s.UpdatedAt)
	}
	return frontMatter.Render(meta, s.Content)
}

func (Codec) Parse(section, text string) (models.Section, error) {
	meta, body, err := frontMatter.Parse(text)
	if err != nil {
		return models.Section{}, err
	}
	s := models.Section{
		Section: section,
		Title:   meta.String("title"),
		Content: body,
		Extra:   models.Extra(frontMatter.Extra(meta)),
	}
	if raw := meta.Raw("metadata"); raw != nil {
		if err := json.Unmarshal(raw, &s.Metadata); err != nil {
			return models.Section{}, fmt.Errorf("%w: metadata: %w", errs.ErrCorruptEntity, err)
		}
	}
	if s.UpdatedAt, err = meta.Time("updatedAt"); err != nil {
		return models.Section{}, err
	}
	return s, nil
}
