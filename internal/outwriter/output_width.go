package outwriter

import (
	"os"

	"github.com/huangsam/gazeplot/internal/contract"
	"golang.org/x/term"
)

// terminalWidth returns the width override, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// getMaxLabelWidth is the room left for a free-text column once the fixed
// columns (fixedWidth, borders included) are drawn.
func getMaxLabelWidth(cfg *contract.Config, fixedWidth int) int {
	available := terminalWidth(cfg) - fixedWidth - 10
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
