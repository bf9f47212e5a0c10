package main

import (
	"log/slog"

	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/config"
	"github.com/Veraticus/hntax/internal/model"
	"github.com/Veraticus/hntax/internal/tui"
	"github.com/Veraticus/hntax/internal/tui/themes"
	"github.com/spf13/cobra"
)

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive UI",
		Long: `Start the interactive UI. Enter an address, pick a tax year and press
enter. With --address the form is submitted as soon as the UI starts.`,
		RunE: runTUI,
	}
	addPrefillFlags(cmd)
	return cmd
}

func addPrefillFlags(cmd *cobra.Command) {
	cmd.Flags().String("address", "", "account address to submit on start")
	cmd.Flags().String("tax-year", "", "tax year to preselect (2020-2023)")
	cmd.Flags().String("csv-dir", ".", "directory for saved CSV exports")
	cmd.Flags().Bool("inline", false, "render inline instead of using the alternate screen")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	address, _ := cmd.Flags().GetString("address")
	yearFlag, _ := cmd.Flags().GetString("tax-year")
	csvDir, _ := cmd.Flags().GetString("csv-dir")
	inline, _ := cmd.Flags().GetBool("inline")

	var year model.TaxYear
	if yearFlag != "" {
		year, err = model.ParseTaxYear(yearFlag)
		if err != nil {
			return common.NewUserError("invalid --tax-year", err)
		}
	}

	money, err := moneyFormatter(settings)
	if err != nil {
		return err
	}

	queue, cleanup, err := newQueue(ctx, settings)
	if err != nil {
		return err
	}
	defer cleanup()

	slog.Info("Starting interactive UI", "backend", settings.BaseURL, "theme", settings.Theme)

	return tui.Run(ctx,
		tui.WithQueue(queue),
		tui.WithMoneyFormatter(money),
		tui.WithTheme(themes.GetTheme(settings.Theme)),
		tui.WithPollInterval(settings.PollInterval),
		tui.WithLogger(common.LoggerFrom(ctx)),
		tui.WithCSVDir(config.ExpandPath(csvDir)),
		tui.WithAltScreen(!inline),
		tui.WithPrefill(address, year, address != ""),
	)
}
