package ssa

import (
	"fmt"
	"strings"
)

// String renders the function in a human-readable form.  The rendering is
// stable across runs but is not part of any external contract.
func (f *Fun) String() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%s\n", f.Name)

	for _, b := range f.Blocks {
		fmt.Fprintf(&sb, "  b%d: %s", b.ID, b.Kind)

		if len(b.Preds) > 0 {
			sb.WriteString(" <-")
			for _, p := range b.Preds {
				sb.WriteString(" " + p.String())
			}
		}
		sb.WriteString("\n")

		for _, v := range b.Values {
			sb.WriteString("    " + v.LongString() + "\n")
		}

		switch b.Kind {
		case BlockRet:
			sb.WriteString("    ret")
			if b.Control != nil {
				sb.WriteString(" " + b.Control.String())
			}
			sb.WriteString("\n")

		case BlockIf, BlockFirst:
			fmt.Fprintf(&sb, "    %s %s ->", strings.ToLower(b.Kind.String()), b.Control)
			for _, c := range b.Succs {
				sb.WriteString(" " + c.String())
			}
			sb.WriteString("\n")

		case BlockPlain:
			if len(b.Succs) > 0 {
				fmt.Fprintf(&sb, "    -> %s\n", b.Succs[0])
			}
		}
	}

	return sb.String()
}
