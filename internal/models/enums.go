package models

// ContentStrategy 内容持久化方式
type ContentStrategy string

const (
	// StrategyJSON 每种实体一个 JSON 文件（数组或对象）
	StrategyJSON ContentStrategy = "json"
	// StrategyMarkdown 每个实体一个带 front matter 的 markdown 文件
	StrategyMarkdown ContentStrategy = "markdown"
)

// Valid 判断持久化方式是否受支持
func (s ContentStrategy) Valid() bool {
	return s == StrategyJSON || s == StrategyMarkdown
}

// 集合名称，同时作为文件名 / 目录名
const (
	CollectionBlogs       = "blogs"
	CollectionProjects    = "projects"
	CollectionSiteContent = "site-content"
)
