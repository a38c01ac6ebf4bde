package common

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NewTableWriter returns a table writer configured for plain text output
// with tab padding and no borders, so command output stays grep-friendly.
func NewTableWriter(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)

	plainStyle := table.Style{
		Box: table.BoxStyle{
			BottomLeft:       "",
			BottomRight:      "",
			BottomSeparator:  "",
			Left:             "",
			LeftSeparator:    "",
			MiddleHorizontal: "",
			MiddleSeparator:  "",
			MiddleVertical:   "",
			PaddingLeft:      "\t",
			PaddingRight:     "\t",
			Right:            "",
			RightSeparator:   "",
			TopLeft:          "",
			TopRight:         "",
			TopSeparator:     "",
			UnfinishedRow:    "",
		},
		Options: table.Options{
			DrawBorder:      false,
			SeparateColumns: false,
			SeparateHeader:  false,
			SeparateRows:    false,
		},
	}
	t.SetStyle(plainStyle)

	return t
}
