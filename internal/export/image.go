package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// ErrUnsupportedFormat is returned for image formats other than png and jpeg.
var ErrUnsupportedFormat = errors.New("export: unsupported image format")

// NormalizeImageFormat maps "jpg" to "jpeg" and lower-cases the name.
func NormalizeImageFormat(format string) (string, error) {
	switch f := strings.ToLower(format); f {
	case "png":
		return f, nil
	case "jpg", "jpeg":
		return "jpeg", nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, format)
}

// ChromeRasterizer renders SVG documents to PNG or JPEG with headless Chrome.
type ChromeRasterizer struct {
	// Attempts is how many times the browser is launched before giving up.
	// Zero means a single attempt.
	Attempts uint64
	// Timeout bounds a single attempt.
	Timeout time.Duration
	// JPEGQuality is used when re-encoding the screenshot as JPEG.
	JPEGQuality int
	Log         logrus.FieldLogger
}

// NewChromeRasterizer returns a rasterizer with the defaults used by the
// server.
func NewChromeRasterizer(log logrus.FieldLogger) *ChromeRasterizer {
	return &ChromeRasterizer{Attempts: 3, Timeout: 30 * time.Second, JPEGQuality: 90, Log: log}
}

// Rasterize writes svg as an image in the given format to w.
func (c *ChromeRasterizer) Rasterize(ctx context.Context, svg, format string, w io.Writer) error {
	format, err := NormalizeImageFormat(format)
	if err != nil {
		return err
	}

	// Loading the SVG from a data URI avoids a temporary file.
	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))

	var screenshot []byte
	err = backoff.RetryNotify(
		func() error {
			buf, err := c.screenshot(ctx, dataURI)
			if err != nil {
				return err
			}
			if len(buf) == 0 {
				return fmt.Errorf("screenshot buffer is empty")
			}
			screenshot = buf
			return nil
		},
		c.retryPolicy(ctx),
		func(err error, d time.Duration) {
			c.Log.WithError(err).Warnf("chrome screenshot failed, retrying in %v", d)
		},
	)
	if err != nil {
		return fmt.Errorf("export: chromedp execution failed: %w", err)
	}

	switch format {
	case "png":
		if _, err := io.Copy(w, bytes.NewReader(screenshot)); err != nil {
			return fmt.Errorf("export: writing PNG screenshot data: %w", err)
		}
	case "jpeg":
		img, err := png.Decode(bytes.NewReader(screenshot))
		if err != nil {
			return fmt.Errorf("export: decoding PNG screenshot: %w", err)
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: c.JPEGQuality}); err != nil {
			return fmt.Errorf("export: encoding JPEG: %w", err)
		}
	}
	c.Log.WithField("format", format).Debug("rasterized chart with chromedp")
	return nil
}

// retryPolicy allows Attempts launches in total. Zero is treated as one.
func (c *ChromeRasterizer) retryPolicy(ctx context.Context) backoff.BackOff {
	retries := uint64(0)
	if c.Attempts > 1 {
		retries = c.Attempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
}

func (c *ChromeRasterizer) screenshot(parent context.Context, dataURI string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	defer cancelAlloc()

	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var buf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Screenshot(`svg`, &buf, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, err
	}
	return buf, nil
}
