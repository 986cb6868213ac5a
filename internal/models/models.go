package models

import (
	"encoding/json"
	"time"
)

// Blog 博客文章
type Blog struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	PublishDate string     `json:"publishDate"`
	Image       string     `json:"image,omitempty"`
	Tags        StringList `json:"tags"`
	Draft       FlexBool   `json:"draft"`
	Featured    FlexBool   `json:"featured"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Extra Extra `json:"-"`
}

func (b Blog) Key() string        { return b.Slug }
func (b *Blog) SetKey(key string) { b.Slug = key }

// Normalize 补齐空切片，保证 JSON 输出稳定
func (b *Blog) Normalize() {
	if b.Tags == nil {
		b.Tags = StringList{}
	}
}

// Validate 校验必填字段
func (b Blog) Validate() error { return validateRequired(b.Title, b.Slug) }

// Stamp 写入服务端时间戳
func (b *Blog) Stamp(created, updated time.Time) {
	b.CreatedAt, b.UpdatedAt = created, updated
}

func (b Blog) Created() time.Time { return b.CreatedAt }

func (b Blog) MarshalJSON() ([]byte, error) {
	type alias Blog
	return marshalInline(alias(b), b.Extra)
}

func (b *Blog) UnmarshalJSON(data []byte) error {
	type alias Blog
	return unmarshalInline(data, (*alias)(b), &b.Extra)
}

// Project 项目
type Project struct {
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Content      string     `json:"content"`
	PublishDate  string     `json:"publishDate"`
	Image        string     `json:"image,omitempty"`
	GitHub       string     `json:"github,omitempty"`
	LiveURL      string     `json:"liveUrl,omitempty"`
	Technologies StringList `json:"technologies"`
	Tags         StringList `json:"tags"`
	Featured     FlexBool   `json:"featured"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Extra Extra `json:"-"`
}

func (p Project) Key() string        { return p.Slug }
func (p *Project) SetKey(key string) { p.Slug = key }

// Normalize 补齐空切片，保证 JSON 输出稳定
func (p *Project) Normalize() {
	if p.Technologies == nil {
		p.Technologies = StringList{}
	}
	if p.Tags == nil {
		p.Tags = StringList{}
	}
}

// Validate 校验必填字段
func (p Project) Validate() error { return validateRequired(p.Title, p.Slug) }

// Stamp 写入服务端时间戳
func (p *Project) Stamp(created, updated time.Time) {
	p.CreatedAt, p.UpdatedAt = created, updated
}

func (p Project) Created() time.Time { return p.CreatedAt }

func (p Project) MarshalJSON() ([]byte, error) {
	type alias Project
	return marshalInline(alias(p), p.Extra)
}

func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	return unmarshalInline(data, (*alias)(p), &p.Extra)
}

// SectionMetadata 站点内容区块的元数据，常用字段显式建模，其余进入 Extra
type SectionMetadata struct {
	Subtitle string `json:"subtitle,omitempty"`
	CTAText  string `json:"ctaText,omitempty"`
	CTAURL   string `json:"ctaUrl,omitempty"`
	Image    string `json:"image,omitempty"`
	Email    string `json:"email,omitempty"`
	LinkedIn string `json:"linkedIn,omitempty"`
	GitHub   string `json:"github,omitempty"`

	Extra Extra `json:"-"`
}

func (m SectionMetadata) MarshalJSON() ([]byte, error) {
	type alias SectionMetadata
	return marshalInline(alias(m), m.Extra)
}

// UnmarshalJSON 整体替换而非合并；兼容以 JSON 字符串提交的 metadata，解析失败时视为空对象
func (m *SectionMetadata) UnmarshalJSON(data []byte) error {
	type alias SectionMetadata
	var fresh SectionMetadata
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if err := unmarshalInline([]byte(s), (*alias)(&fresh), &fresh.Extra); err != nil {
			fresh = SectionMetadata{}
		}
		*m = fresh
		return nil
	}
	if err := unmarshalInline(data, (*alias)(&fresh), &fresh.Extra); err != nil {
		return err
	}
	*m = fresh
	return nil
}

// Section 站点内容区块（hero / about / skills / contact ...）
type Section struct {
	Section   string          `json:"section"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Metadata  SectionMetadata `json:"metadata"`
	UpdatedAt time.Time       `json:"updatedAt,omitzero"`

	Extra Extra `json:"-"`
}

func (s Section) Key() string        { return s.Section }
func (s *Section) SetKey(key string) { s.Section = key }

func (s Section) MarshalJSON() ([]byte, error) {
	type alias Section
	return marshalInline(alias(s), s.Extra)
}

func (s *Section) UnmarshalJSON(data []byte) error {
	type alias Section
	return unmarshalInline(data, (*alias)(s), &s.Extra)
}
