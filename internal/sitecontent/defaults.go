package sitecontent

import "PortfolioCMS/internal/models"

// Defaults 站点内容首次读取时写入的默认区块
func Defaults() []models.Section {
	return []models.Section{
		{
			Section: "hero",
			Title:   "Hi, I'm Meet Joshi",
			Content: "# Hi, I'm Meet Joshi\n\nA passionate web developer focused on building modern and efficient web applications.",
			Metadata: models.SectionMetadata{
				Subtitle: "Web Developer & Designer",
				CTAText:  "View My Work",
				CTAURL:   "#projects",
			},
		},
		{
			Section:  "about",
			Title:    "About Me",
			Content:  "# About Me\n\nI'm a web developer with expertise in modern JavaScript frameworks and libraries.",
			Metadata: models.SectionMetadata{Image: "/about.jpg"},
		},
		{
			Section: "skills",
			Title:   "Skills & Expertise",
			Content: "# Skills & Expertise\n\nHere are some of the technologies I work with regularly.",
			Metadata: models.SectionMetadata{
				Extra: models.Extra{"skillGroups": []any{}},
			},
		},
		{
			Section: "contact",
			Title:   "Let's Connect",
			Content: "# Let's Connect\n\nHave a project in mind? Reach out to me.",
			Metadata: models.SectionMetadata{
				Email: "contact@example.com",
			},
		},
	}
}
