// Command vocfr imports the bundled French vocabulary into the content store
// and inspects what was imported.
//
// Subcommands:
//
//	import   run the import phases (--phase, --dry-run, --reset)
//	report   summarize stored content against the asset tree (--validate)
//	audio    resolve playable audio for one word (--section); a word
//	         without audio prints "no audio available" and still exits 0
//	version  print build information
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath       string
	importConfigPath string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:           "vocfr",
		Short:         "French vocabulary content importer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "app config file (YAML); defaults to $CONFIG_PATH or ./config.yaml")
	cmd.PersistentFlags().StringVar(&g.importConfigPath, "import-config", "", "import config file (YAML); defaults to IMPORT_* env")

	cmd.AddCommand(
		importCmd(&g),
		reportCmd(&g),
		audioCmd(&g),
		versionCmd(),
	)
	return cmd
}
