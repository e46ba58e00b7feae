package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) seed(ctx context.Context) error {
	n, err := cli.siteSvc.SeedDefaults(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d default settings added\n", n)
	return nil
}

func (cli *commandLine) pruneSessions(ctx context.Context) error {
	n, err := cli.sessions.Prune(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d expired sessions deleted\n", n)
	return nil
}
