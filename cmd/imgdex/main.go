// imgdex catalogs the images of a directory tree and queries the catalog.
//
// The catalog is kept as a snapshot in the configured blob store, so every
// command after "scan" works without touching the image files:
//
//	imgdex scan ./vault
//	imgdex query --search sunset --tag beach --sort size --order desc
//	imgdex query --where 'iso>=800' --where 'make=Canon' --json
//	imgdex tag attachments/sunset.jpg favorite
//	imgdex tags
//	imgdex exif ./vault/attachments/sunset.jpg
//	imgdex purge
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is shared by all commands.
type env struct {
	configPath string
	logLevel   string
	stdout     io.Writer
	stderr     io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"scan":  {"scan ROOT and save the catalog", runScan},
	"query": {"filter and sort the catalog", runQuery},
	"tags":  {"list tag names with usage counts", runTags},
	"tag":   {"add tags to an image: tag PATH NAME...", runTag},
	"untag": {"remove a tag from an image: untag PATH ID", runUntag},
	"exif":  {"print the EXIF attributes of a file", runExif},
	"purge": {"drop expired cached analyses", runPurge},
}

var commandOrder = []string{"scan", "query", "tags", "tag", "untag", "exif", "purge"}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	e := &env{stdout: stdout, stderr: stderr}

	flagSet := pflag.NewFlagSet("imgdex", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVarP(&e.configPath, "config", "c", "", "path to imgdex.yaml (defaults apply when empty)")
	flagSet.StringVar(&e.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return errors.New("missing command")
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		printUsage(stderr, flagSet)
		return fmt.Errorf("unknown command %q", rest[0])
	}
	return cmd.run(ctx, e, rest[1:])
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: imgdex [global flags] COMMAND [flags]\n\nCommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-6s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nGlobal flags:\n%s", flagSet.FlagUsages())
}

// parseFlags parses a command's flags and checks the positional argument
// count. It returns pflag.ErrHelp when help was requested.
func parseFlags(flagSet *pflag.FlagSet, e *env, args []string, minArgs, maxArgs int) error {
	flagSet.SetOutput(e.stderr)
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	n := flagSet.NArg()
	if n < minArgs || (maxArgs >= 0 && n > maxArgs) {
		return fmt.Errorf("%s: unexpected number of arguments (%d)", flagSet.Name(), n)
	}
	return nil
}

func helpOrErr(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}
