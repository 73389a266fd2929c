package cli

import (
	"context"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartkit/pkg/observability"
	"github.com/matzehuels/chartkit/pkg/raster"
)

// renderCommand creates the render command for drawing chart descriptions.
func (c *CLI) renderCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <chart.toml|chart.yaml>",
		Short: "Render a chart description to PNG or JPEG",
		Long: `Render a chart description to an image.

The description names its kind (bar, map, legend or month) and carries a
section of the same name. Bar charts read a CSV table whose first column
names the rows; maps read an index image and a color lookup. The output
format follows the file extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: description name with .png)")

	return cmd
}

// runRender draws one description. Nothing is written when rendering
// fails.
func (c *CLI) runRender(ctx context.Context, path, output string) error {
	logger := loggerFromContext(ctx)
	desc, err := loadDescription(path)
	if err != nil {
		return err
	}
	out := outputPath(path, output, desc)
	if _, err := raster.FormatOf(out); err != nil {
		return err
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, desc.Kind)
	prog := newProgress(logger)
	start := time.Now()
	img, err := desc.render(c.config())
	var size image.Point
	if err == nil {
		size = raster.Size(img)
	}
	hooks.OnRenderComplete(ctx, desc.Kind, size.X, size.Y, time.Since(start), err)
	if err != nil {
		return err
	}
	prog.done("Rendered " + desc.Kind + " chart")

	if err := raster.Save(img, out, c.config().JPEGQuality); err != nil {
		return err
	}
	printSuccess("Rendered %s chart (%dx%d)", desc.Kind, size.X, size.Y)
	printFile(out)
	return nil
}

// outputPath picks the flag, then the description's output, then the
// description's name with a .png extension.
func outputPath(path, flag string, desc *description) string {
	switch {
	case flag != "":
		return flag
	case desc.Output != "":
		return desc.path(desc.Output)
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}
