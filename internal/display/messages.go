package display

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/mfsousa/ai-cli/internal/config"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// ShowError prints an error message to stderr.
func ShowError(msg string) {
	fmt.Fprintf(os.Stderr, "%sError:%s %s\n", colorRed, colorReset, msg)
}

// ShowWarning prints a warning message to stderr.
func ShowWarning(msg string) {
	fmt.Fprintf(os.Stderr, "%sWarning:%s %s\n", colorYellow, colorReset, msg)
}

// ShowInfo prints an informational message.
func ShowInfo(msg string) {
	fmt.Printf("%s%s%s\n", colorCyan, msg, colorReset)
}

// ShowSuccess prints a success confirmation.
func ShowSuccess(msg string) {
	fmt.Printf("%s%s%s\n", colorGreen, msg, colorReset)
}

// ShowModels prints the model table with the current default marked.
func ShowModels(models []config.Model, defaultAlias string) {
	sort.Slice(models, func(i, j int) bool { return models[i].Alias < models[j].Alias })

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL\tSPEED\tDESCRIPTION")
	for _, m := range models {
		marker := " "
		if m.Alias == defaultAlias {
			marker = "*"
		}
		speed := ""
		if m.TokensPerSec > 0 {
			speed = fmt.Sprintf("~%d tok/s", m.TokensPerSec)
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", marker, m.Alias, m.ModelID, speed, m.Description)
	}
	w.Flush()

	if defaultAlias != "" {
		fmt.Printf("\n* default model\n")
	}
}
