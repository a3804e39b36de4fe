package export

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
)

// CopyToClipboard ships content to the terminal clipboard via an OSC52
// escape, which works across SSH where system clipboard tools do not.
// A nil writer defaults to stdout.
func CopyToClipboard(content string, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	payload := base64.StdEncoding.EncodeToString([]byte(content))
	if _, err := fmt.Fprintf(w, "\x1b]52;c;%s\a", payload); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}
