package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// FileSender writes emails to disk instead of sending them. Used in local
// development and tests.
type FileSender struct {
	dir string
}

// NewFileSender creates a sender that saves each email as an HTML file under
// dir, which is created on first send.
func NewFileSender(dir string) *FileSender {
	return &FileSender{dir: dir}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// Send implements Sender.
func (s *FileSender) Send(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSend, err)
	}

	name := params.Tag
	if name == "" {
		name = params.Subject
	}
	name = strings.ToLower(unsafeFilenameChars.ReplaceAllString(strings.ReplaceAll(name, " ", "_"), ""))
	if len(name) > 80 {
		name = name[:80]
	}

	path := filepath.Join(s.dir, time.Now().Format("20060102_150405")+"_"+name+".html")
	if err := os.WriteFile(path, []byte(params.BodyHTML), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSend, err)
	}
	return nil
}
