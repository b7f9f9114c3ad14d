// Command newsdeskctl runs newsdesk pipeline tasks on demand.
package main

import (
	"fmt"
	"os"

	"github.com/Saul-Punybz/newsdesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
