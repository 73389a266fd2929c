package cli

import (
	"context"
	"image"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartkit/pkg/httputil"
	"github.com/matzehuels/chartkit/pkg/raster"
)

// fetchOpts holds the command-line flags for the fetch command.
type fetchOpts struct {
	name    string        // cache filename override
	referer string        // Referer header for this download
	delay   time.Duration // rate limit override
	retries int           // attempts for transient failures
}

// fetchCommand creates the fetch command for downloading into the cache.
func (c *CLI) fetchCommand() *cobra.Command {
	opts := fetchOpts{retries: 3}

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download an image into the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "cache filename (default: derived from the URL)")
	cmd.Flags().StringVar(&opts.referer, "referer", "", "Referer header to send")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "minimum delay between downloads (overrides the configuration)")
	cmd.Flags().IntVar(&opts.retries, "retries", opts.retries, "attempts for network errors and 5xx responses")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, rawURL string, opts fetchOpts) error {
	logger := loggerFromContext(ctx)
	cache, err := httputil.NewFromConfig(c.config())
	if err != nil {
		return err
	}
	fo := httputil.FetchOptions{Filename: opts.name, Delay: opts.delay}
	if opts.referer != "" {
		fo.Headers = http.Header{"Referer": {opts.referer}}
	}

	spinner := newSpinnerWithContext(ctx, "Fetching "+rawURL)
	spinner.Start()
	var img *image.NRGBA
	err = httputil.Retry(ctx, opts.retries, time.Second, func() error {
		var err error
		img, err = cache.FromURL(ctx, rawURL, fo)
		if httputil.IsRetryable(err) {
			logger.Warn("download failed, retrying", "url", rawURL, "err", err)
		}
		return err
	})
	if err != nil {
		spinner.StopWithError("Download failed")
		return err
	}
	spinner.Stop()

	path, err := cache.Path(rawURL, opts.name)
	if err != nil {
		return err
	}
	size := raster.Size(img)
	printSuccess("Cached %dx%d image", size.X, size.Y)
	printFile(path)
	return nil
}
