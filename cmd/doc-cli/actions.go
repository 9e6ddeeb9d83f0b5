package main

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Lllllllleong/financialdocumentflow/internal/app"
	"github.com/Lllllllleong/financialdocumentflow/internal/config"
	"github.com/Lllllllleong/financialdocumentflow/internal/pdftext"
	"github.com/urfave/cli/v2"
)

// withApp loads the configuration and runs fn against a freshly built app.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := app.New(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	defer a.Close()
	return fn(c.Context, a)
}

func fileArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one <file> argument, got %d", c.NArg())
	}
	return c.Args().First(), nil
}

func ListAction(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, a *app.App) error {
		listing, err := a.Documents.List(ctx)
		if err != nil {
			return err
		}
		w := c.App.Writer
		if listing.Total == 0 {
			fmt.Fprintln(w, "No documents found")
			return nil
		}

		fmt.Fprintf(w, "%-50s %-6s %12s %-20s\n", "Name", "Type", "Bytes", "Uploaded")
		fmt.Fprintln(w, strings.Repeat("-", 91))
		for _, d := range listing.Documents {
			fmt.Fprintf(w, "%-50s %-6s %12d %-20s\n",
				d.Name, d.FileType, d.SizeBytes, d.UploadedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(w, "\nTotal: %d documents", listing.Total)
		for _, label := range slices.Sorted(maps.Keys(listing.ByType)) {
			fmt.Fprintf(w, "  %s=%d", label, listing.ByType[label])
		}
		fmt.Fprintln(w)
		return nil
	})
}

func ExtractAction(c *cli.Context) error {
	name, err := fileArg(c)
	if err != nil {
		return err
	}
	return withApp(c, func(ctx context.Context, a *app.App) error {
		doc, err := a.Extractor.Process(ctx, name)
		if err != nil {
			return err
		}
		if c.Bool("json") {
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}
		fmt.Fprintln(c.App.Writer, pdftext.Flatten(doc))
		return nil
	})
}

// MetadataAction needs no configuration.
func MetadataAction(c *cli.Context) error {
	name, err := fileArg(c)
	if err != nil {
		return err
	}
	meta := pdftext.ParseFilenameMetadata(name)
	company, year := "unknown", "unknown"
	if meta.Company != nil {
		company = *meta.Company
	}
	if meta.Year != nil {
		year = fmt.Sprint(*meta.Year)
	}
	fmt.Fprintf(c.App.Writer, "company: %s\nyear: %s\n", company, year)
	return nil
}

func SummarizeAction(c *cli.Context) error {
	name, err := fileArg(c)
	if err != nil {
		return err
	}
	return withApp(c, func(ctx context.Context, a *app.App) error {
		if c.Bool("save") {
			result, location, err := a.Analysis.SummarizeAndStore(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, result.Summary)
			fmt.Fprintf(c.App.Writer, "\nSaved to %s\n", location)
			return nil
		}
		result, err := a.Analysis.Summarize(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, result.Summary)
		return nil
	})
}
