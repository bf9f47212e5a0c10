package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/hntax/internal/cli"
	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/config"
	"github.com/Veraticus/hntax/internal/controller"
	"github.com/Veraticus/hntax/internal/model"
	"github.com/Veraticus/hntax/internal/report"
	"github.com/Veraticus/hntax/internal/service"
	"github.com/spf13/cobra"
)

const resumeHint = "The job keeps running on the server. Run the same command again to pick up the result."

type fetchOptions struct {
	address string
	year    string
	format  string
	output  string
}

func fetchCmd() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch ADDRESS",
		Short: "Fetch a report without the interactive UI",
		Long: `Submit the address and tax year, wait for the report and print it.

The backend is checked every backend.poll_interval until the report is ready.
The command exits non-zero when the address is rejected or the job fails.`,
		Example: `  hntax fetch 13ABC... --tax-year 2021
  hntax fetch 13ABC... --tax-year 2022 --format csv --output earnings.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.address = args[0]

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			queue, cleanup, err := newQueue(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer cleanup()

			return runFetch(cmd.Context(), settings, queue, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	formats := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		formats = append(formats, string(f))
	}

	cmd.Flags().StringVarP(&opts.year, "tax-year", "y", "", "tax year (2020-2023)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(report.FormatTable), "output format ("+strings.Join(formats, ", ")+")")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	_ = cmd.MarkFlagRequired("tax-year")

	return cmd
}

// runFetch drives one submission to a terminal state and writes the report.
func runFetch(ctx context.Context, settings config.Settings, queue service.JobQueue, opts fetchOptions, stdout, stderr io.Writer) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return common.NewUserError("invalid --format", err)
	}

	year, err := model.ParseTaxYear(opts.year)
	if err != nil {
		return common.NewUserError("invalid --tax-year", err)
	}

	money, err := moneyFormatter(settings)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(stderr)
	ctx, stop := handler.HandleInterrupts(ctx, resumeHint)
	defer stop()

	ctrl, err := controller.New(queue,
		controller.WithContext(ctx),
		controller.WithScheduler(controller.ContextScheduler(ctx)),
		controller.WithPollInterval(settings.PollInterval),
		controller.WithMoneyFormatter(money),
		controller.WithLogger(common.LoggerFrom(ctx)),
	)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	start := ctrl.Submit(opts.address, year)
	if start == nil {
		return common.NewUserError("address rejected", ctrl.Err())
	}

	progress := cli.NewPollProgress(stderr, isTerminal(stderr))
	progress.Start("Submitting job")

	state, err := controller.Run(ctx, ctrl, start, func(c *controller.Controller) {
		if c.State() == controller.StateLoading && c.Polls() > 0 {
			progress.Checked(c.Polls(), c.PollInterval())
		}
	})
	progress.Finish()

	if err != nil {
		if handler.WasInterrupted() || errors.Is(err, context.Canceled) {
			return common.NewUserError("interrupted", err)
		}
		return err
	}

	switch state {
	case controller.StateLoaded:
	case controller.StateFailed:
		return common.NewUserError("failed to fetch report", ctrl.Err())
	default:
		return fmt.Errorf("fetch stopped in state %s", state)
	}

	result := ctrl.Result()
	addr, _ := ctrl.Request()

	common.LogInfo("Report ready", common.Fields{
		"address":  addr.Short(),
		"tax_year": year.String(),
		"records":  len(result.Data),
		"total":    result.Summary.Total.String(),
		"polls":    ctrl.Polls(),
	})

	w := stdout
	if opts.output != "" {
		f, err := os.Create(config.ExpandPath(opts.output))
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("Failed to close output file", "error", err)
			}
		}()
		w = f
	}

	renderer := report.Renderer{Money: money, Address: addr, Year: year}
	if err := renderer.Render(w, format, result.Data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.output != "" {
		fmt.Fprintln(stderr, cli.RenderBox(cli.FormatSuccess("Report saved"), strings.Join([]string{
			fmt.Sprintf("File:     %s", opts.output),
			fmt.Sprintf("Tax year: %s", year.Label()),
			fmt.Sprintf("Records:  %d", len(result.Data)),
			fmt.Sprintf("Total:    %s", result.Summary.TotalText),
		}, "\n")))
	}
	return nil
}
