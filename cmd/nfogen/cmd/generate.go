package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clembu/nfogen/internal/constants"
	"github.com/clembu/nfogen/pkg/core/cache"
	"github.com/clembu/nfogen/pkg/core/catalog"
	apierrors "github.com/clembu/nfogen/pkg/core/errors"
	"github.com/clembu/nfogen/pkg/core/fileops"
	"github.com/clembu/nfogen/pkg/core/naming"
	"github.com/clembu/nfogen/pkg/core/omdb"
	"github.com/clembu/nfogen/pkg/core/probe"
	"github.com/clembu/nfogen/pkg/core/report"
	"github.com/clembu/nfogen/pkg/core/technical"
	"github.com/clembu/nfogen/pkg/core/tmdb"
)

var (
	genTMDBID      int64
	genTitle       string
	genYear        int
	genLang        string
	genSource      string
	genOutput      string
	genOverwrite   bool
	genNoCatalog   bool
	genInteractive bool
	genPrint       bool
	genRename      bool
	genHashAlgo    string
	genProbeTool   string
)

// TitleSearcher is the secondary title lookup used when the primary
// catalog search comes back empty.
type TitleSearcher interface {
	SearchTitle(ctx context.Context, query string, year int) (string, int, error)
}

// Seams replaced in command tests.
var (
	// ProbeFunc runs the technical probe.
	ProbeFunc = func(ctx context.Context, preferred probe.Tool, path string, logger *log.Logger) (*probe.Source, error) {
		return probe.NewRunner(preferred, logger).Probe(ctx, path)
	}

	// NewCatalogClientFunc builds the catalog client from configuration.
	NewCatalogClientFunc = func(logger *log.Logger) (catalog.Client, error) {
		return tmdb.NewClient(tmdb.Config{
			APIKey: viper.GetString(CfgKeyTMDBAPIKey),
			Token:  viper.GetString(CfgKeyTMDBToken),
		}, nil, logger)
	}

	// NewTitleSearcherFunc builds the fallback title lookup; (nil, nil)
	// means no fallback is configured.
	NewTitleSearcherFunc = func() (TitleSearcher, error) {
		key := viper.GetString(CfgKeyOMDBAPIKey)
		if key == "" {
			return nil, nil
		}
		return omdb.NewClient(key, "", nil)
	}

	// IsTerminalFunc reports whether stdin is an interactive terminal.
	IsTerminalFunc = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
)

var generateCmd = &cobra.Command{
	Use:   "generate <video-file>",
	Short: "Generate an NFO report for a video file.",
	Long: `Probes the video file for technical metadata, optionally matches it
against the TMDB catalog (by explicit id or by filename-derived search),
and writes the rendered report next to the video as <name>.nfo.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	RootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Int64Var(&genTMDBID, "tmdb-id", 0, "explicit TMDB movie id (skips the search)")
	generateCmd.Flags().StringVar(&genTitle, "title", "", "override the movie title")
	generateCmd.Flags().IntVar(&genYear, "year", 0, "override the release year")
	generateCmd.Flags().StringVar(&genLang, "lang", "", "catalog language (e.g. fr-FR)")
	generateCmd.Flags().StringVar(&genSource, "source", "", "override the release source (BLURAY, WEBDL, ...)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "output path (default: <video>.nfo)")
	generateCmd.Flags().BoolVar(&genOverwrite, "overwrite", false, "overwrite an existing output file")
	generateCmd.Flags().BoolVar(&genNoCatalog, "no-catalog", false, "skip the catalog lookup entirely")
	generateCmd.Flags().BoolVarP(&genInteractive, "interactive", "i", false, "review and repair the report line by line")
	generateCmd.Flags().BoolVar(&genPrint, "print", false, "also print the report to stdout")
	generateCmd.Flags().BoolVar(&genRename, "rename", false, "offer a conventional release rename (interactive only)")
	generateCmd.Flags().StringVar(&genHashAlgo, "hash", "", "hash the file for the FILE section (sha1 or sha256)")
	generateCmd.Flags().StringVar(&genProbeTool, "probe", "", "preferred probe tool (mediainfo or ffprobe)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	videoPath := args[0]

	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("cannot access video file: %w", err)
	}

	if genRename && !genInteractive {
		return fmt.Errorf("--rename requires --interactive: the rename is offered for confirmation")
	}
	if genTMDBID > 0 && genNoCatalog {
		return fmt.Errorf("--tmdb-id conflicts with --no-catalog")
	}

	if genInteractive && !IsTerminalFunc() {
		logger.Warn("Standard input is not a terminal, disabling interactive mode")
		genInteractive = false
		if genRename {
			logger.Warn("Skipping --rename: the rename offer needs a terminal")
			genRename = false
		}
	}

	preferred := probe.Tool(firstNonEmpty(genProbeTool, viper.GetString(CfgKeyProbeTool)))
	src, err := ProbeFunc(ctx, preferred, videoPath, logger)
	if err != nil {
		if errors.Is(err, apierrors.ErrProbeUnavailable) {
			return fmt.Errorf("no probe tool found: install mediainfo or ffprobe")
		}
		return err
	}

	tech, err := technical.Build(src, filepath.Base(videoPath))
	if err != nil {
		return err
	}

	guess := naming.ParseFilename(videoPath)
	lang := firstNonEmpty(genLang, viper.GetString(CfgKeyLanguage), constants.DefaultLanguage)

	var channel report.UserChannel
	if genInteractive {
		channel = newConsoleChannel(cmd)
	}

	rec, matchNote, err := lookupCatalog(ctx, logger, channel, guess, lang)
	if err != nil {
		return err
	}

	var fileInfo *fileops.Info
	if genHashAlgo != "" {
		fileInfo, err = fileops.Collect(videoPath, genHashAlgo)
		if err != nil {
			logger.Warnf("Skipping FILE section: %v", err)
			fileInfo = nil
		}
	}

	model := report.Merge(report.Input{
		Tech:    tech,
		Catalog: rec,
		Guess:   &guess,
		Overrides: report.Overrides{
			Title:     genTitle,
			Year:      genYear,
			Source:    genSource,
			Language:  genLang,
			CatalogID: genTMDBID,
		},
		File:      fileInfo,
		MatchNote: matchNote,
	})

	if genInteractive {
		if err := report.Repair(model, channel); err != nil {
			return err
		}
		if err := collectExtraSections(model, channel); err != nil {
			return err
		}
	}

	text := report.Render(model)

	outPath := genOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".nfo"
	}
	if _, err := os.Stat(outPath); err == nil && !genOverwrite {
		return fmt.Errorf("output file %s already exists (use --overwrite)", outPath)
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Infof("Report written to %s", outPath)

	if genPrint {
		fmt.Fprint(cmd.OutOrStdout(), text)
	}

	if genInteractive && genRename {
		if err := offerRename(logger, channel, videoPath, rec, guess, tech); err != nil {
			return err
		}
	}
	return nil
}

// lookupCatalog resolves the catalog record for the run. An explicit
// --tmdb-id that cannot be fetched is fatal; every other catalog failure
// degrades to a technical-only report.
func lookupCatalog(ctx context.Context, logger *log.Logger, channel report.UserChannel, guess naming.Guess, lang string) (*catalog.Record, string, error) {
	if genNoCatalog {
		return nil, "", nil
	}

	client, err := NewCatalogClientFunc(logger)
	if err != nil {
		logger.Warnf("Catalog lookup disabled: %v", err)
		return nil, "", nil
	}

	var store catalog.Cache
	if dir, derr := cacheDir(); derr == nil {
		if s, serr := cache.NewStore(dir, logger); serr == nil {
			store = s
		} else {
			logger.Warnf("Catalog cache disabled: %v", serr)
		}
	}

	var chooser catalog.Chooser
	if channel != nil {
		chooser = newTableChooser(channel)
	}
	resolver := catalog.NewResolver(client, store, chooser, logger)

	seed := catalog.Guess{
		Title: firstNonEmpty(genTitle, guess.Title),
		Year:  genYear,
	}
	if seed.Year == 0 {
		seed.Year = guess.Year
	}

	rec, err := resolver.Resolve(ctx, seed, genTMDBID, lang)
	if err != nil {
		if genTMDBID > 0 {
			return nil, "", err
		}
		logger.Warnf("Catalog lookup failed, continuing with technical data only: %v", err)
		return nil, "", nil
	}

	if rec == nil && genTMDBID == 0 {
		rec = retryWithCorrectedTitle(ctx, logger, resolver, seed, lang)
	}

	matchNote := ""
	if rec != nil {
		matchNote = fmt.Sprintf("TMDB %d: %s (%d)", rec.ID, rec.Title, rec.Year)
	}
	return rec, matchNote, nil
}

// retryWithCorrectedTitle asks the secondary title service for the
// canonical title and searches the catalog once more with it. Best
// effort all the way: any failure returns nil.
func retryWithCorrectedTitle(ctx context.Context, logger *log.Logger, resolver *catalog.Resolver, seed catalog.Guess, lang string) *catalog.Record {
	searcher, err := NewTitleSearcherFunc()
	if err != nil {
		logger.Warnf("Title fallback disabled: %v", err)
		return nil
	}
	if searcher == nil {
		return nil
	}

	title, year, err := searcher.SearchTitle(ctx, seed.Title, seed.Year)
	if err != nil {
		logger.Warnf("Title fallback lookup failed: %v", err)
		return nil
	}
	if title == "" || strings.EqualFold(title, seed.Title) {
		return nil
	}

	logger.Infof("Retrying catalog search with corrected title: %s (%d)", title, year)
	rec, err := resolver.Resolve(ctx, catalog.Guess{Title: title, Year: year}, 0, lang)
	if err != nil {
		logger.Warnf("Catalog retry failed: %v", err)
		return nil
	}
	return rec
}

// offerRename proposes a conventional release name and renames the video
// on confirmation.
func offerRename(logger *log.Logger, channel report.UserChannel, videoPath string, rec *catalog.Record, guess naming.Guess, tech *technical.Metadata) error {
	title := firstNonEmpty(genTitle, recordTitle(rec), guess.Title)
	year := genYear
	if year == 0 && rec != nil {
		year = rec.Year
	}
	if year == 0 {
		year = guess.Year
	}
	source := firstNonEmpty(genSource, guess.Source)
	group := firstNonEmpty(viper.GetString(CfgKeyReleaseGroup), constants.DefaultReleaseGroup)

	proposed := naming.BuildReleaseName(videoPath, title, year, tech, source, group)
	if proposed == filepath.Base(videoPath) {
		return nil
	}

	channel.Say("")
	channel.Say("Proposed release name: " + proposed)
	ok, err := promptYesNo(channel, "Rename the file? [y/N]: ")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	newPath := filepath.Join(filepath.Dir(videoPath), proposed)
	if err := os.Rename(videoPath, newPath); err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}
	logger.Infof("Renamed to %s", newPath)
	return nil
}

func recordTitle(rec *catalog.Record) string {
	if rec == nil {
		return ""
	}
	return rec.Title
}

// cacheDir is where fetched catalog records are stored between runs.
func cacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nfogen", "cache"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
