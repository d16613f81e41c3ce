package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerline/ledgerline/pkg/runtime/terminal/commands"
	"github.com/ledgerline/ledgerline/pkg/runtime/terminal/export"
)

// CLI represents the command-line interface
type CLI struct {
	plain   *Reporter
	table   *export.Reporter
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		plain: NewReporter(opts.Output),
		table: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledgerline",
		Short: "Invoicing reports from the command line",
	}

	cmd.AddCommand(commands.NewReportCmd(cli.plain, cli.table))

	return cmd
}
