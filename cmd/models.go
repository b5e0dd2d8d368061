package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfsousa/ai-cli/internal/display"
)

// NewModelsCmd lists the available model aliases.
func NewModelsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.cfg.Validate(); err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			display.ShowModels(app.cfg.Models(), app.cfg.DefaultModel())
		},
	}
}

// NewModelCmd manages the default model and custom model aliases.
func NewModelCmd(app *App) *cobra.Command {
	showCurrent := func(cmd *cobra.Command, args []string) {
		if err := app.cfg.Validate(); err != nil {
			display.ShowError(err.Error())
			os.Exit(1)
		}
		def := app.cfg.DefaultModel()
		if def == "" {
			fmt.Println("No default model set; the runner decides.")
			return
		}
		fmt.Printf("Default model: %s\n", def)
	}

	modelCmd := &cobra.Command{
		Use:   "model",
		Short: "Show or change the default model",
		Run:   showCurrent,
	}

	modelCmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the default model",
		Run:   showCurrent,
	})

	modelCmd.AddCommand(&cobra.Command{
		Use:   "set <alias>",
		Short: "Set the default model",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.cfg.Validate(); err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			if err := app.cfg.SetDefaultModel(args[0]); err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			display.ShowSuccess("Default model set to " + args[0])
		},
	})

	var speed int
	addCmd := &cobra.Command{
		Use:   "add <alias> <model-id> [description]",
		Short: "Add a custom model alias",
		Args:  cobra.RangeArgs(2, 3),
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.cfg.Validate(); err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			description := ""
			if len(args) == 3 {
				description = args[2]
			}
			m, err := app.cfg.AddCustomModel(args[0], args[1], description, speed)
			if err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			display.ShowSuccess("Added model " + m.Alias + " -> " + m.ModelID)
		},
	}
	addCmd.Flags().IntVar(&speed, "speed", 0, "Approximate tokens per second, for the models table")
	modelCmd.AddCommand(addCmd)

	modelCmd.AddCommand(&cobra.Command{
		Use:   "remove <alias>",
		Short: "Remove a custom model alias",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.cfg.Validate(); err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			removed, err := app.cfg.RemoveCustomModel(args[0])
			if err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			if !removed {
				display.ShowWarning("no custom model named " + args[0])
				return
			}
			display.ShowSuccess("Removed model " + args[0])
		},
	})

	return modelCmd
}
