// cmd/strategies.go

package main

import (
	"ArraySum/pkg/sum"
	"fmt"

	"github.com/urfave/cli/v2"
)

func strategiesFlags() *cli.Command {
	return &cli.Command{
		Name:   "strategies",
		Usage:  "list the summing strategies",
		Action: strategies,
	}
}

func strategies(c *cli.Context) error {
	for _, name := range sum.Names() {
		fmt.Fprintln(c.App.Writer, name)
	}
	return nil
}
