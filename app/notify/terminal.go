package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03

	bannerStyle = "\x1b[1;97;42m"
	errorStyle  = "\x1b[1;97;41m"
	resetStyle  = "\x1b[0m"
)

// TerminalRenderer draws alerts as a full-width banner on the controlling
// terminal. "o" opens the link, Enter, Esc or "q" dismisses the alert.
type TerminalRenderer struct {
	in      *os.File
	out     io.Writer
	openURL func(string) error

	keysOnce sync.Once
	keys     chan byte
}

var _ Renderer = (*TerminalRenderer)(nil)

func NewTerminalRenderer(in *os.File, out io.Writer) *TerminalRenderer {
	return &TerminalRenderer{
		in:      in,
		out:     out,
		openURL: OpenURL,
		keys:    make(chan byte, 16),
	}
}

func (r *TerminalRenderer) Render(ctx context.Context, alert Notification) error {
	if _, err := io.WriteString(r.out, r.banner(alert)); err != nil {
		return fmt.Errorf("failed to write alert: %w", err)
	}

	fd := int(r.in.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to switch terminal to raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	r.keysOnce.Do(func() { go r.readKeys() })
	r.drainKeys()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-r.keys:
			if !ok {
				return nil
			}
			switch key {
			case 'o', 'O':
				if alert.LinkURL == "" {
					continue
				}
				if err := r.openURL(alert.LinkURL); err != nil {
					return fmt.Errorf("failed to open link: %w", err)
				}
				return nil
			case '\r', '\n', 'q', 'Q', keyEscape, keyCtrlC:
				return nil
			}
		}
	}
}

func (r *TerminalRenderer) banner(alert Notification) string {
	width := 80
	if f, ok := r.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	style := bannerStyle
	if alert.IsError {
		style = errorStyle
	}

	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString(style + pad(" "+alert.Title, width) + resetStyle + "\r\n")
	if alert.LinkURL != "" {
		text := alert.LinkText
		if text == "" {
			text = alert.LinkURL
		}
		// OSC 8 hyperlink, rendered as plain text by terminals without support
		fmt.Fprintf(&b, " \x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\\r\n", alert.LinkURL, text)
		b.WriteString(" [o] open link  [enter] dismiss\r\n")
	} else {
		b.WriteString(" [enter] dismiss\r\n")
	}
	return b.String()
}

func (r *TerminalRenderer) readKeys() {
	buf := make([]byte, 1)
	for {
		n, err := r.in.Read(buf)
		if err != nil {
			close(r.keys)
			return
		}
		if n == 1 {
			select {
			case r.keys <- buf[0]:
			default:
			}
		}
	}
}

// drainKeys discards keystrokes typed while no alert was on screen.
func (r *TerminalRenderer) drainKeys() {
	for {
		select {
		case _, ok := <-r.keys:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// OpenURL opens url in the platform's default browser.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
