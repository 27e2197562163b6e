package display

import (
	"fmt"
	"io"

	"github.com/backmassage/chaptersplit/internal/term"
)

const banner = `      _                 _                      _ _ _
  ___| |__   __ _ _ __ | |_ ___ _ __ ___ _ __ | (_) |_
 / __| '_ \ / _`+"`"+` | '_ \| __/ _ \ '__/ __| '_ \| | | __|
| (__| | | | (_| | |_) | ||  __/ |  \__ \ |_) | | | |_
 \___|_| |_|\__,_| .__/ \__\___|_|  |___/ .__/|_|_|\__|
                 |_|                    |_|`

// PrintBanner prints the ASCII art banner in the banner color.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Paint(term.Colors.Banner, banner))
}
