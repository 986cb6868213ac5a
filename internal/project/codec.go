package project

import (
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/store"
)

// frontMatter 项目 markdown 文件的 front matter 键
var frontMatter = store.Schema{
	Order: []string{
		"title", "description", "publishDate", "image", "github", "liveUrl",
		"technologies", "tags", "featured", "createdAt", "updatedAt",
	},
	Arrays: map[string]bool{"technologies": true, "tags": true},
	Bools:  map[string]bool{"featured": true},
}

// Codec 项目与 markdown 文件之间的转换
type Codec struct{}

func (Codec) Render(p models.Project) (string, error) {
	meta := store.Metadata{}
	for k, v := range p.Extra {
		meta[k] = v
	}
	meta["title"] = p.Title
	meta["description"] = p.Description
	meta["publishDate"] = p.PublishDate
	for k, v := range map[string]string{"image": p.Image, "github": p.GitHub, "liveUrl": p.LiveURL} {
		if v != "" {
			meta[k] = v
		}
	}
	meta["technologies"] = []string(p.Technologies)
	meta["tags"] = []string(p.Tags)
	meta["featured"] = bool(p.Featured)
	meta["createdAt"] = store.FormatTime(p.CreatedAt)
	meta["updatedAt"] = store.FormatTime(p.UpdatedAt)
	return frontMatter.Render(meta, p.Content)
}

func (Codec) Parse(slug, text string) (models.Project, error) {
	meta, body, err := frontMatter.Parse(text)
	if err != nil {
		return models.Project{}, err
	}
	p := models.Project{
		Slug:         slug,
		Title:        meta.String("title"),
		Description:  meta.String("description"),
		Content:      body,
		PublishDate:  meta.String("publishDate"),
		Image:        meta.String("image"),
		GitHub:       meta.String("github"),
		LiveURL:      meta.String("liveUrl"),
		Technologies: models.StringList(meta.Strings("technologies")),
		Tags:         models.StringList(meta.Strings("tags")),
		Featured:     models.FlexBool(meta.Bool("featured")),
		Extra:        models.Extra(frontMatter.Extra(meta)),
	}
	if p.CreatedAt, err = meta.Time("createdAt"); err != nil {
		return models.Project{}, err
	}
	if p.UpdatedAt, err = meta.Time("updatedAt"); err != nil {
		return models.Project{}, err
	}
	return p, nil
}
