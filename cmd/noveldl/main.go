// noveldl downloads novel chapters from supported translation sites
// and assembles them into an EPUB file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sillysack69/Zetro-Translations/internal/config"
	"github.com/sillysack69/Zetro-Translations/internal/epub"
	"github.com/sillysack69/Zetro-Translations/internal/fetch"
	"github.com/sillysack69/Zetro-Translations/internal/pipeline"
	"github.com/sillysack69/Zetro-Translations/internal/sites"
)

var (
	flagURL      string
	flagRange    string
	flagSave     string
	flagSite     string
	flagOutdir   string
	flagLogLevel string
	flagSettings string
)

var rootCmd = &cobra.Command{
	Use:   "noveldl",
	Short: "Download novel chapters from supported sites into an EPUB",
	Long: `noveldl scrapes chapter text from supported novel-hosting sites and
assembles it into an EPUB file.

The site is detected from the URL's domain; --site overrides detection.
The chapter range is "all", a single chapter number, or an inclusive
span like "1-5".`,
	Example: `  noveldl --url "https://zetrotranslation.com/novel/..." --range all --save my_book
  noveldl --url "https://zeustranslations.blogspot.com/..." --range 1-5 --save my_book --outdir ./books`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flagURL, "url", "", "URL of the novel's landing page (required)")
	rootCmd.Flags().StringVar(&flagRange, "range", "all", `chapter range: "all", "N", or "A-B"`)
	rootCmd.Flags().StringVar(&flagSave, "save", "", "output EPUB filename without extension (required)")
	rootCmd.Flags().StringVar(&flagSite, "site", "", "site adapter to use ("+strings.Join(sites.Names(), "|")+"); detected from the URL when empty")
	rootCmd.Flags().StringVar(&flagOutdir, "outdir", "", "output directory (default from settings, else current directory)")
	rootCmd.Flags().StringVar(&flagLogLevel, "loglevel", "info", "log level (debug|info|warn|error)")
	rootCmd.Flags().StringVar(&flagSettings, "settings", "", "path to an optional settings file (YAML or JSON)")

	rootCmd.MarkFlagRequired("url")
	rootCmd.MarkFlagRequired("save")
}

func run(cmd *cobra.Command, args []string) error {
	log, err := newLogger(flagLogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	settings := config.Default()
	if flagSettings != "" {
		settings, err = config.Load(flagSettings)
		if err != nil {
			return err
		}
	}

	outdir := settings.OutputDir
	if flagOutdir != "" {
		outdir = flagOutdir
	}

	client := fetch.NewClient(fetch.Options{
		UserAgent: settings.UserAgent,
		Timeout:   time.Duration(settings.TimeoutSeconds) * time.Second,
		Retries:   settings.Retries,
		Backoff:   time.Duration(settings.BackoffMS) * time.Millisecond,
		Delay:     time.Duration(settings.DelayMS) * time.Millisecond,
		Logger:    log,
	})

	var adapter sites.Adapter
	if flagSite != "" {
		adapter, err = sites.ForName(flagSite, client)
	} else {
		adapter, err = sites.Detect(flagURL, client)
	}
	if err != nil {
		return err
	}

	outPath := filepath.Join(outdir, epub.SanitizeFilename(flagSave)+".epub")

	runner := pipeline.NewRunner(client, log)
	if err := runner.Run(context.Background(), pipeline.Request{
		Adapter:    adapter,
		NovelURL:   flagURL,
		RangeExpr:  flagRange,
		OutputPath: outPath,
	}); err != nil {
		return err
	}

	fmt.Printf("Done. Output: %s\n", outPath)
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q (use debug|info|warn|error)", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
