// Command outline prints the heading tree of a local document.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/dgallion1/outliner/internal/heading"
	"github.com/dgallion1/outliner/internal/outline"
	"github.com/dgallion1/outliner/internal/presenter"
	"github.com/dgallion1/outliner/internal/scanner"
)

var version = "dev"

func newApp(log *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:            "outline",
		Usage:           "print the heading tree of an HTML, Markdown, DOCX, PDF or CSV document",
		ArgsUsage:       "FILE",
		Version:         version,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-hidden", Aliases: []string{"i"}, Usage: "include headings hidden on screen but exposed to assistive technology"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "output `FORMAT`: text, json, html or csv"},
			&cli.BoolFlag{Name: "strict", Usage: "fail when the scanned headings are malformed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, log)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command, log *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src := cmd.Args().First()
	if src == "" {
		return errors.New("no input file has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("ignoring extra arguments", "args", cmd.Args().Slice()[1:])
	}

	sc, err := scanner.ForFile(src)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	page, err := sc.Scan(f, filepath.Base(src))
	if err != nil {
		return fmt.Errorf("scan %s: %w", src, err)
	}
	log.Debug("scanned", "file", src, "title", page.Title, "records", len(page.Headings))

	if err := heading.Validate(page.Headings); err != nil {
		if cmd.Bool("strict") {
			return fmt.Errorf("malformed headings in %s: %w", src, err)
		}
		for _, p := range heading.Problems(err) {
			log.Warn("malformed heading", "problem", p)
		}
	}

	res := outline.New(page.Headings, heading.Options{IncludeHiddenAT: cmd.Bool("include-hidden")})
	return write(cmd.Root().Writer, cmd.String("format"), page.Title, res)
}

func write(w io.Writer, format, title string, res outline.Result) error {
	switch format {
	case "text":
		if title != "" {
			if _, err := fmt.Fprintf(w, "%s\n%s\n\n", title, presenter.Summary(res.Count)); err != nil {
				return err
			}
		}
		return presenter.WriteText(w, res.Nodes)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"title":   title,
			"count":   res.Count,
			"summary": presenter.Summary(res.Count),
			"nodes":   res.Nodes,
		})
	case "html":
		return presenter.Render(w, res.Nodes, nil)
	case "csv":
		return presenter.WriteCSV(w, res.Nodes)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(log).Run(ctx, os.Args); err != nil {
		log.Error("outline failed", "error", err)
		stop()
		os.Exit(1)
	}
}
