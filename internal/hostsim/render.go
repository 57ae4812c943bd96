package hostsim

import (
	"fmt"
	"strings"

	"github.com/five82/typetune/internal/protocol"
)

// Render produces the canned export snippet for one result.
func Render(format protocol.ExportFormat, r protocol.ResultEntry) string {
	a := r.After
	switch format {
	case protocol.FormatCSSFluid:
		ratio := 0.0
		if r.FontSize > 0 {
			ratio = a.LineHeightRaw / r.FontSize
		}
		return strings.Join([]string{
			"/* " + r.FontInfo + " */",
			fmt.Sprintf("line-height: %s;", trim(ratio, 3)),
			fmt.Sprintf("letter-spacing: %sem;", trim(a.LetterSpacingEm, 4)),
		}, "\n")
	case protocol.FormatIOS:
		return strings.Join([]string{
			"// " + r.FontInfo,
			fmt.Sprintf(".lineSpacing(%s)", trim(a.LineHeight-r.FontSize, 2)),
			fmt.Sprintf(".kerning(%s)", trim(a.LetterSpacing, 2)),
		}, "\n")
	case protocol.FormatAndroid:
		return strings.Join([]string{
			"<!-- " + r.FontInfo + " -->",
			fmt.Sprintf(`android:lineHeight="%ssp"`, trim(a.LineHeight, 2)),
			fmt.Sprintf(`android:letterSpacing="%s"`, trim(a.LetterSpacingEm, 4)),
		}, "\n")
	default:
		return strings.Join([]string{
			"/* " + r.FontInfo + " */",
			fmt.Sprintf("line-height: %spx;", trim(a.LineHeight, 2)),
			fmt.Sprintf("letter-spacing: %spx;", trim(a.LetterSpacing, 2)),
		}, "\n")
	}
}

func trim(v float64, prec int) string {
	s := fmt.Sprintf("%.*f", prec, v)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
