package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/watch"
)

var watchExisting bool

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Analyse documents dropped into a directory",
	Long: `Watches a directory and analyses every supported file written to it.
Files with identical content are analysed once. Hidden files are ignored.

Results are recorded in history; use 'clausewise history' to browse them.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also analyse files already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	inbox := watch.NewInbox(args[0], analysisService)
	inbox.SetIncludeExisting(watchExisting)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := make(chan watch.Result)
	errc := make(chan error, 1)
	go func() { errc <- inbox.Run(ctx, results) }()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	for res := range results {
		if res.Err != nil {
			cmd.Printf("  %s: failed: %v\n", res.Path, res.Err)
			continue
		}
		a := res.Analysis
		cmd.Printf("  %s: %s  %s (%d clauses)\n", res.Path, a.ID, riskBadge(a.OverallRisk()), len(a.Clauses))
	}
	return <-errc
}
