package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"contactbox/backend/internal/config"
	"contactbox/backend/internal/service"
	sqlstore "contactbox/backend/internal/storage/sql"
)

// 示例数据写入工具
//
// 向配置的数据库写入演示用的示例留言，仅在留言表为空时生效。
// 用于本地开发和演示环境的初始化。
func main() {
	force := flag.Bool("force", false, "seed even when messages already exist")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Database.Type == "" {
		fmt.Fprintln(os.Stderr, "database type is required (set CONTACTBOX_DATABASE_TYPE)")
		os.Exit(1)
	}

	store, err := sqlstore.NewStore(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	logger := zap.NewNop()
	messages := service.NewMessageService(store, cfg.Admin.ListLimit, logger)

	if *force {
		// 强制模式下直接追加一批示例留言
		total, _, err := store.CountMessages()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to count messages: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("seeding on top of %d existing messages\n", total)
	}

	if err := seed(messages, *force); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}

	total, unread, err := store.CountMessages()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to count messages: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("done: %d messages stored (%d unread)\n", total, unread)
}

func seed(messages *service.MessageService, force bool) error {
	if !force {
		return messages.SeedSampleData()
	}

	samples := []service.CreateMessageInput{
		{Name: "John Doe", Email: "john@example.com", Subject: "Website Inquiry", Body: "Hello, I am interested in your services."},
		{Name: "Jane Smith", Email: "jane@example.com", Subject: "Partnership Proposal", Body: "We would like to discuss a potential partnership."},
		{Name: "Bob Wilson", Email: "bob@example.com", Subject: "Support Request", Body: "I need help with my recent order."},
	}
	for _, input := range samples {
		if _, err := messages.Create(input); err != nil {
			return err
		}
	}
	return nil
}
