package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ashetkar/scalarun/cli/render"
	"github.com/ashetkar/scalarun/runtime"
)

// ArgsCommand returns the args command. It builds and prints the exact
// runner argument list for a configuration without launching anything.
func ArgsCommand() *cli.Command {
	return &cli.Command{
		Name:   "args",
		Usage:  "Print the runner argument list without launching",
		Flags:  append(runConfigFlags(), ReadOnlyFlags()...),
		Action: argsAction,
	}
}

// ArgsResponse is the response for the args command.
type ArgsResponse struct {
	Args []string `json:"args"`
}

func argsAction(c *cli.Context) error {
	fileCfg, err := loadFileConfig(c)
	if err != nil {
		return err
	}

	cfg, err := buildRunConfig(c, fileCfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	args := runtime.BuildArgs(cfg)

	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	// Table/default output: one token per line, ready for shell reuse.
	if format == "" || format == render.FormatTable {
		for _, arg := range args {
			fmt.Println(arg)
		}
		return nil
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return r.Render(ArgsResponse{Args: args})
}
