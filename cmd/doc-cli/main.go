package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "doc-cli",
		Usage: "inspect and summarize stored financial documents",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list stored documents, most recent first",
				Action: ListAction,
			},
			{
				Name:      "extract",
				Usage:     "print the cleaned text of a stored PDF",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the page-structured document as JSON"},
				},
				Action: ExtractAction,
			},
			{
				Name:      "metadata",
				Usage:     "show the company and year encoded in a filename",
				ArgsUsage: "<file>",
				Action:    MetadataAction,
			},
			{
				Name:      "summarize",
				Usage:     "summarize a stored PDF with the configured model",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "save", Usage: "also store the summary under summaries/"},
				},
				Action: SummarizeAction,
			},
		},
	}
}
