package main

import "context"

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if cli.db == nil {
		return errNoSQL
	}
	return gooseRunFunc(ctx, cli.db, args[0], args[1:]...)
}

func (cli *commandLine) createDB(ctx context.Context) error {
	if cli.conf.Database.InMemory() {
		return errNoSQL
	}
	return createDBFunc(ctx, cli.conf)
}
