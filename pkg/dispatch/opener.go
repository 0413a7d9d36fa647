package dispatch

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// BrowserOpener opens links with the operating system's default handler.
type BrowserOpener struct{}

// Open starts the handler and returns without waiting for it.
// The handler outlives ctx once started.
func (BrowserOpener) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
