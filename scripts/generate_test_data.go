package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/config"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/logging"
	"github.com/slugblog/internal/service"
)

type seedPost struct {
	title     string
	subtitle  string
	content   string
	revisions []string
	draft     bool
}

var seedPosts = []seedPost{
	{
		title:    "Hello, world",
		subtitle: "The first entry",
		content:  "Welcome to the blog.",
	},
	{
		title:     "Working notes",
		content:   "Draft notes on slug chains.",
		revisions: []string{"Notes on slug chains", "Slug chains, revisited"},
	},
	{
		title:   "Unfinished thoughts",
		content: "Not ready yet.",
		draft:   true,
	},
	{
		title:   "Hello, world",
		content: "A second post with the same title gets a numbered slug.",
	},
}

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log, err := logging.New(cfg.LogLevel, nil)
	if err != nil {
		logrus.Fatalf("invalid log level: %v", err)
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	blog := service.NewBlog(db.DB, service.Options{Logger: log})
	fmt.Println("开始生成测试数据...")
	slugs, err := generate(context.Background(), blog)
	if err != nil {
		log.Fatalf("failed to generate test data: %v", err)
	}
	for _, slug := range slugs {
		fmt.Println("  /" + slug)
	}
	fmt.Println("测试数据生成完成！")
}

// generate publishes the seed posts and replays their revisions, leaving
// at least one redirect chain behind. It returns the final slug of each post.
func generate(ctx context.Context, blog *service.Blog) ([]string, error) {
	var count int64
	if err := db.DB.Model(&db.Post{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		fmt.Println("文章已存在，跳过创建")
		return nil, nil
	}

	slugs := make([]string, 0, len(seedPosts))
	for _, seed := range seedPosts {
		input := service.PublishInput{
			Title:   seed.title,
			Content: seed.content,
			Draft:   seed.draft,
		}
		if seed.subtitle != "" {
			input.Subtitle = &seed.subtitle
		}

		result, err := blog.Publisher.Publish(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("publish %q: %w", seed.title, err)
		}

		for i, title := range seed.revisions {
			result, err = blog.Publisher.Revise(ctx, result.Post.ID, service.RevisionInput{
				Title:   title,
				Content: fmt.Sprintf("%s (revision %d)", seed.content, i+1),
			})
			if err != nil {
				return nil, fmt.Errorf("revise %q: %w", title, err)
			}
		}
		slugs = append(slugs, result.Slug)
	}
	return slugs, nil
}
