package cli

import (
	"context"
	"os"
)

// Execute runs the chartkit CLI with ctx and returns an error if any
// command fails. Logs go to stderr at info level, or debug with --verbose.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return New(os.Stderr, LogInfo).RootCommand().ExecuteContext(ctx)
}
