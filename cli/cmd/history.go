package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ashetkar/scalarun/cli/render"
	"github.com/ashetkar/scalarun/history"
)

// historyWarningThreshold is the number of records above which we warn
// about using --limit.
const historyWarningThreshold = 100

// DefaultHistoryDir is where run records are stored unless overridden.
const DefaultHistoryDir = ".scalarun/history"

// HistoryCommand returns the history command.
// It lists stored run records, newest first.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded runs, newest first",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "history-dir",
				Usage: "History store directory",
				Value: DefaultHistoryDir,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records to return (0 = no limit)",
				Value: 0,
			},
		),
		Action: historyAction,
	}
}

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func historyAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	store, err := history.NewStore(c.String("history-dir"))
	if err != nil {
		return err
	}

	limit := c.Int("limit")
	records, err := store.List(limit)
	if err != nil {
		return err
	}

	// Warn if output is large and --limit was not specified (TTY only to avoid noise in pipelines)
	if len(records) > historyWarningThreshold && limit == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d records. Consider using --limit to reduce output.\n\n", len(records))
	}

	return r.Render(records)
}
