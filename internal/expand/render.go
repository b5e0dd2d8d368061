package expand

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mfsousa/ai-cli/internal/safecmd"
)

// renderResult turns a CommandResult into replacement text. A listing
// (items metadata) renders one line per entry, plain output renders as
// a fenced block, and a failure renders as a one-line bolded error.
func renderResult(result safecmd.CommandResult) string {
	if !result.Success {
		return renderError(result.Error)
	}

	if items, ok := result.Metadata["items"].([]safecmd.Entry); ok {
		return renderListing(items, result.Metadata)
	}

	output := result.Output
	if result.Truncated {
		output += "\n... (truncated)"
	}
	return "\n```\n" + output + "\n```\n"
}

func renderListing(items []safecmd.Entry, metadata map[string]any) string {
	if len(items) == 0 {
		path, _ := metadata["path"].(string)
		return fmt.Sprintf("\n(empty directory: %s)\n", path)
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for _, item := range items {
		if item.IsDir {
			sb.WriteString("📁 " + item.Name + "/\n")
		} else {
			sb.WriteString(fmt.Sprintf("📄 %s (%s)\n", item.Name, humanize.Bytes(uint64(item.Size))))
		}
	}
	return sb.String()
}

func renderError(msg string) string {
	return "\n**Error:** " + msg + "\n"
}

func renderRejection(name string) string {
	return fmt.Sprintf("\n**Error:** unknown command %q (allowed: %s)\n", name, allowedNames())
}
