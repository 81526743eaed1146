// Command shoplist runs the shopping list bot and its operator commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/shoplist/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "shoplist:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
