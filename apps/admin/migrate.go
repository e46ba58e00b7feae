package main

import (
	"context"
	"errors"

	"github.com/stephenschool/schoolconnect/storage/database"
)

var (
	gooseRunFunc = database.RunMigration // mockable

	errNoSQLDatabase = errors.New("migrations need a postgres or sqlite3 database engine")
)

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if cli.db == nil {
		return errNoSQLDatabase
	}
	return gooseRunFunc(ctx, cli.db, args[0], args[1:]...)
}
