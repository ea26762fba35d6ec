package main

import (
	"flag"
	"fmt"
	"os"

	"contactbox/backend/internal/config"
	sqlstore "contactbox/backend/internal/storage/sql"
)

// 数据库迁移工具
//
// 用法:
//
//	migrate [-type mysql|postgres] [-dsn <连接串>]
//
// 未指定参数时使用环境变量配置（CONTACTBOX_DATABASE_TYPE 等）。
// 打开连接时会自动执行表结构迁移。
func main() {
	dbType := flag.String("type", "", "database type: mysql or postgres")
	dsn := flag.String("dsn", "", "database connection string")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *dbType != "" {
		cfg.Database.Type = *dbType
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}

	if cfg.Database.Type == "" {
		fmt.Fprintln(os.Stderr, "database type is required (use -type or CONTACTBOX_DATABASE_TYPE)")
		os.Exit(1)
	}

	fmt.Printf("migrating %s database...\n", cfg.Database.Type)

	store, err := sqlstore.NewStore(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fmt.Println("migration completed successfully")
	fmt.Println("tables: messages, users")
}
