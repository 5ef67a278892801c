package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := logsvc.NewRollbarLogger(os.Stderr, conf).Named("admin")
	ctx := context.Background()

	cli := commandLine{conf: conf, out: os.Stdout}

	// createdb must run before the database can be opened
	if len(os.Args) > 1 && os.Args[1] != "createdb" {
		if conf.Database.InMemory() {
			cli.usrSvc = user.NewService(inmemdb.NewUserRepository(inmemdb.Open()))
		} else {
			db, err := database.Open(ctx, conf)
			if err != nil {
				logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
			}
			defer func() { _ = db.Close() }()
			cli.db = db.DB
			cli.usrSvc = user.NewService(sqlxrepos.NewUserRepository(db))
		}
	}

	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("%s failed: %v", os.Args[1], err), err)
		}
		os.Exit(1)
	}
}
