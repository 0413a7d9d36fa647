package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"   ____  ____   ____    _    ", "#a3e635"},
	{"  / __ \\|  _ \\ / ___|  / \\   ", "#84cc16"},
	{" | |  | | |_) | |     / _ \\  ", "#65a30d"},
	{" | |__| |  _ <| |___ / ___ \\ ", "#b45309"},
	{"  \\____/|_| \\_\\\\____/_/   \\_\\", "#92400e"},
}

// PrintBanner writes the ORCA banner in wood tones. Colors are dropped when
// w is not a color capable terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w, out.String("   Orman Ürünleri · Sipariş Asistanı").Faint())
	fmt.Fprintln(w)
}
