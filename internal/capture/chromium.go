package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	appLog "apptcal/internal/log"
)

// Default capture parameters for the month page.
const (
	DefaultWidth      = 1280
	DefaultHeight     = 900
	DefaultTimeoutSec = 30

	// ReadySelector matches the page root once the month is rendered.
	ReadySelector = `[data-ready="true"]`
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/".
	URL string

	// OutputPath is where the PNG screenshot is written.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire capture operation. If zero,
	// DefaultTimeoutSec is used.
	Timeout time.Duration

	// Username and Password are sent as HTTP Basic credentials when the
	// page is protected.
	Username string
	Password string
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// MonthPNG launches a headless Chromium via chromedp, loads opts.URL, waits
// for ReadySelector to be visible and writes a full-page PNG screenshot.
func MonthPNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
	}
	if opts.Username != "" {
		tasks = append(tasks, basicAuthHeader(opts.Username, opts.Password))
	}
	tasks = append(tasks,
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		// Let the final paint land.
		chromedp.Sleep(300*time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	)

	start := time.Now()
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := writeFileAtomic(opts.OutputPath, png); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	appLog.Info("capture written",
		"path", opts.OutputPath,
		"bytes", len(png),
		"elapsed", time.Since(start).String(),
	)
	return nil
}

// basicAuthHeader makes every request of the tab carry the credentials.
func basicAuthHeader(user, pass string) chromedp.Action {
	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	return chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Authorization": "Basic " + token}),
	}
}

// writeFileAtomic replaces path so /preview.png never serves a torn file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".apptcal-preview-*.png")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
