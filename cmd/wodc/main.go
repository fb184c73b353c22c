package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/wodc/internal/app"
	"github.com/vk/wodc/internal/cli"
)

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run holds the program logic so errors and exit codes stay testable.
func run(out, errOut io.Writer, args []string) error {
	invoke, done, err := cli.Parse(args, out)
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	return app.New(out, errOut, invoke).Run(context.Background())
}
