package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfsousa/ai-cli/internal/display"
	"github.com/mfsousa/ai-cli/internal/history"
)

// NewHistoryCmd shows or clears the query log.
func NewHistoryCmd(app *App) *cobra.Command {
	var (
		limit  int
		search string
		clear  bool
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show past queries",
		Run: func(cmd *cobra.Command, args []string) {
			store := history.Open("")
			defer store.Close()

			if !store.Available() {
				display.ShowWarning("history database unavailable")
				return
			}

			if clear {
				if err := store.Clear(); err != nil {
					display.ShowError(err.Error())
					os.Exit(1)
				}
				display.ShowSuccess("History cleared")
				return
			}

			records, err := store.Records(limit, search)
			if err != nil {
				display.ShowError(err.Error())
				os.Exit(1)
			}
			if len(records) == 0 {
				fmt.Println("No history yet.")
				return
			}

			for _, rec := range records {
				status := "ok"
				if !rec.Success {
					status = "failed"
				}
				model := rec.Model
				if model == "" {
					model = "default"
				}
				fmt.Printf("%s  [%s, %s, %.1fs]  %s\n",
					rec.Timestamp.Format("2006-01-02 15:04"),
					model, status, float64(rec.DurationMS)/1000,
					truncatePrompt(rec.Prompt, 80))
			}
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	historyCmd.Flags().StringVarP(&search, "search", "s", "", "Filter prompts containing this text")
	historyCmd.Flags().BoolVar(&clear, "clear", false, "Delete all history")

	return historyCmd
}

func truncatePrompt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
