package blog

import (
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/store"
)

// frontMatter 博客 markdown 文件的 front matter 键
var frontMatter = store.Schema{
	Order: []string{
		"title", "description", "author", "publishDate", "image",
		"tags", "draft", "featured", "createdAt", "updatedAt",
	},
	Arrays: map[string]bool{"tags": true},
	Bools:  map[string]bool{"draft": true, "featured": true},
}

// Codec 博客与 markdown 文件之间的转换，正文为 content，slug 为文件名
type Codec struct{}

func (Codec) Render(b models.Blog) (string, error) {
	meta := store.Metadata{}
	for k, v := range b.Extra {
		meta[k] = v
	}
	meta["title"] = b.Title
	meta["description"] = b.Description
	meta["author"] = b.Author
	meta["publishDate"] = b.PublishDate
	if b.Image != "" {
		meta["image"] = b.Image
	}
	meta["tags"] = []string(b.Tags)
	meta["draft"] = bool(b.Draft)
	meta["featured"] = bool(b.Featured)
	meta["createdAt"] = store.FormatTime(b.CreatedAt)
	meta["updatedAt"] = store.FormatTime(b.UpdatedAt)
	return frontMatter.Render(meta, b.Content)
}

func (Codec) Parse(slug, text string) (models.Blog, error) {
	meta, body, err := frontMatter.Parse(text)
	if err != nil {
		return models.Blog{}, err
	}
	b := models.Blog{
		Slug:        slug,
		Title:       meta.String("title"),
		Description: meta.String("description"),
		Content:     body,
		Author:      meta.String("author"),
		PublishDate: meta.String("publishDate"),
		Image:       meta.String("image"),
		Tags:        models.StringList(meta.Strings("tags")),
		Draft:       models.FlexBool(meta.Bool("draft")),
		Featured:    models.FlexBool(meta.Bool("featured")),
		Extra:       models.Extra(frontMatter.Extra(meta)),
	}
	if b.CreatedAt, err = meta.Time("createdAt"); err != nil {
		return models.Blog{}, err
	}
	if b.UpdatedAt, err = meta.Time("updatedAt"); err != nil {
		return models.Blog{}, err
	}
	return b, nil
}
