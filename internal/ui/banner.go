package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Version is printed in the banner.
const Version = "v1.0.0"

// PrintBanner displays the startup banner.
func PrintBanner() {
	emit(func(w io.Writer) {
		cyan := color.New(color.FgCyan, color.Bold)
		magenta := color.New(color.FgMagenta, color.Bold)
		yellow := color.New(color.FgYellow, color.Bold)
		white := color.New(color.FgWhite)
		dim := color.New(color.FgHiBlack)

		art := []string{
			"███████╗██╗  ██╗██████╗ ██╗      █████╗ ██╗███╗   ██╗",
			"██╔════╝╚██╗██╔╝██╔══██╗██║     ██╔══██╗██║████╗  ██║",
			"█████╗   ╚███╔╝ ██████╔╝██║     ███████║██║██╔██╗ ██║",
			"██╔══╝   ██╔██╗ ██╔═══╝ ██║     ██╔══██║██║██║╚██╗██║",
			"███████╗██╔╝ ██╗██║     ███████╗██║  ██║██║██║ ╚████║",
			"╚══════╝╚═╝  ╚═╝╚═╝     ╚══════╝╚═╝  ╚═╝╚═╝╚═╝  ╚═══╝",
		}

		fmt.Fprintln(w)
		cyan.Fprintln(w, "╔════════════════════════════════════════════════════════════╗")
		for _, line := range art {
			cyan.Fprint(w, "║   ")
			magenta.Fprint(w, line)
			cyan.Fprintln(w, "  ║")
		}
		cyan.Fprintln(w, "╠════════════════════════════════════════════════════════════╣")
		cyan.Fprint(w, "║  ")
		yellow.Fprint(w, "REDDIT POST EXPLAINER")
		dim.Fprint(w, "  │  ")
		white.Fprint(w, "openai · anthropic · deepseek · google")
		dim.Fprint(w, "  │  ")
		white.Fprint(w, Version)
		cyan.Fprintln(w, "  ║")
		cyan.Fprintln(w, "╚════════════════════════════════════════════════════════════╝")
		fmt.Fprintln(w)
	})
}
