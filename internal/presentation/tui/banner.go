package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}

// PrintBanner writes the story title framed in a gradient rule.
func PrintBanner(w io.Writer, title, protagonist string) {
	out := termenv.NewOutput(w)
	rule := strings.Repeat("═", max(len(title), len(protagonist))+4)

	lines := []string{rule, "  " + title}
	if protagonist != "" {
		lines = append(lines, "  as "+protagonist)
	}
	lines = append(lines, rule)

	fmt.Fprintln(w)
	for i, line := range lines {
		color := bannerColors[i%len(bannerColors)]
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(color)).Bold())
	}
	fmt.Fprintln(w)
}
