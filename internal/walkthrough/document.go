package walkthrough

import (
	"bufio"
	"fmt"
	"io"
)

// WriteDocument renders steps as a numbered, human-readable playthrough.
// Description steps become section headings and are not numbered.
func WriteDocument(w io.Writer, title string, steps []Step) error {
	bw := bufio.NewWriter(w)
	if title != "" {
		fmt.Fprintf(bw, "%s walkthrough\n", title)
	}
	n := 0
	for _, s := range steps {
		if s.Kind == KindDescription {
			fmt.Fprintf(bw, "\n%s\n", s.Target)
			continue
		}
		n++
		fmt.Fprintf(bw, "%3d. %s\n", n, sentence(s))
	}
	return bw.Flush()
}

func sentence(s Step) string {
	switch s.Kind {
	case KindInteract:
		return fmt.Sprintf("Click on %s.", s.Target)
	case KindLook:
		return fmt.Sprintf("Look at %s.", s.Target)
	case KindUse:
		return fmt.Sprintf("Use %s on %s.", s.Extra, s.Target)
	case KindLocation:
		return fmt.Sprintf("You should now be in %s.", s.Target)
	}
	return s.String()
}
