package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clembu/nfogen/pkg/core/catalog"
	apierrors "github.com/clembu/nfogen/pkg/core/errors"
	"github.com/clembu/nfogen/pkg/core/probe"
)

const mediaInfoFixture = `{
  "media": {"track": [
    {"@type": "General", "Format": "Matroska", "FileSize": "3296387399",
     "Duration": "6963.008", "OverallBitRate": "3787000"},
    {"@type": "Video", "Format": "AVC", "Width": "1920", "Height": "1080",
     "FrameRate": "23.976", "BitRate": "3118000"},
    {"@type": "Audio", "Format": "AC-3", "Language": "fr", "Channels": "6",
     "BitRate": "640000", "SamplingRate": "48000"}
  ]}
}`

type mockCatalogClient struct {
	SearchFunc func(ctx context.Context, query string, year int, lang string) ([]catalog.SearchResult, error)
	GetFunc    func(ctx context.Context, id int64, lang string) (*catalog.Record, error)
}

func (m *mockCatalogClient) Search(ctx context.Context, query string, year int, lang string) ([]catalog.SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, year, lang)
	}
	return nil, nil
}

func (m *mockCatalogClient) Get(ctx context.Context, id int64, lang string) (*catalog.Record, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id, lang)
	}
	return nil, errors.New("GetFunc not set in mock")
}

// setupGenerateTest isolates HOME, fakes the probe and resets flag state
// left over from earlier runs.
func setupGenerateTest(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	origProbe := ProbeFunc
	origCatalog := NewCatalogClientFunc
	origSearcher := NewTitleSearcherFunc
	origTerminal := IsTerminalFunc
	t.Cleanup(func() {
		ProbeFunc = origProbe
		NewCatalogClientFunc = origCatalog
		NewTitleSearcherFunc = origSearcher
		IsTerminalFunc = origTerminal
	})

	ProbeFunc = func(ctx context.Context, preferred probe.Tool, path string, logger *log.Logger) (*probe.Source, error) {
		return probe.Decode(probe.ToolMediaInfo, []byte(mediaInfoFixture))
	}
	NewCatalogClientFunc = func(logger *log.Logger) (catalog.Client, error) {
		return nil, errors.New("no catalog in this test")
	}
	NewTitleSearcherFunc = func() (TitleSearcher, error) { return nil, nil }
	IsTerminalFunc = func() bool { return false }

	genTMDBID = 0
	genTitle = ""
	genYear = 0
	genLang = ""
	genSource = ""
	genOutput = ""
	genOverwrite = false
	genNoCatalog = false
	genInteractive = false
	genPrint = false
	genRename = false
	genHashAlgo = ""
	genProbeTool = ""

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "Blade.Runner.2049.2017.1080p.BluRay.x264-GRP.mkv")
	require.NoError(t, os.WriteFile(videoPath, []byte("fake video"), 0o644))
	return videoPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return buf.String(), err
}

func TestGenerateWritesReport(t *testing.T) {
	videoPath := setupGenerateTest(t)

	_, err := runCommand(t, "generate", videoPath, "--no-catalog")
	require.NoError(t, err)

	nfoPath := strings.TrimSuffix(videoPath, ".mkv") + ".nfo"
	content, err := os.ReadFile(nfoPath)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "GENERAL")
	assert.Contains(t, text, "VIDEO")
	assert.Contains(t, text, "AUDIO #1")
	assert.Contains(t, text, "3.07 GiB")
	assert.NotContains(t, text, "MOVIE")
}

func TestGeneratePrintsToStdout(t *testing.T) {
	videoPath := setupGenerateTest(t)

	out, err := runCommand(t, "generate", videoPath, "--no-catalog", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, strings.Repeat("=", 78))
	assert.Contains(t, out, "GENERAL")
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	videoPath := setupGenerateTest(t)
	nfoPath := strings.TrimSuffix(videoPath, ".mkv") + ".nfo"
	require.NoError(t, os.WriteFile(nfoPath, []byte("old"), 0o644))

	_, err := runCommand(t, "generate", videoPath, "--no-catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCommand(t, "generate", videoPath, "--no-catalog", "--overwrite")
	require.NoError(t, err)
	content, err := os.ReadFile(nfoPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "GENERAL")
}

func TestGenerateMissingVideoFile(t *testing.T) {
	setupGenerateTest(t)

	_, err := runCommand(t, "generate", "/nonexistent/movie.mkv")
	require.Error(t, err)
}

// An explicit catalog id that cannot be fetched must fail the run
// instead of degrading to a technical-only report.
func TestGenerateExplicitIDNotFoundIsFatal(t *testing.T) {
	videoPath := setupGenerateTest(t)
	NewCatalogClientFunc = func(logger *log.Logger) (catalog.Client, error) {
		return &mockCatalogClient{
			GetFunc: func(ctx context.Context, id int64, lang string) (*catalog.Record, error) {
				return nil, apierrors.ErrCatalogNotFound
			},
		}, nil
	}

	_, err := runCommand(t, "generate", videoPath, "--tmdb-id", "99999")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrCatalogNotFound)
}

// Search-path catalog failures degrade to a technical-only report.
func TestGenerateCatalogFailureDegrades(t *testing.T) {
	videoPath := setupGenerateTest(t)
	NewCatalogClientFunc = func(logger *log.Logger) (catalog.Client, error) {
		return &mockCatalogClient{
			SearchFunc: func(ctx context.Context, query string, year int, lang string) ([]catalog.SearchResult, error) {
				return nil, apierrors.ErrCatalogUnavailable
			},
		}, nil
	}

	_, err := runCommand(t, "generate", videoPath)
	require.NoError(t, err)

	content, err := os.ReadFile(strings.TrimSuffix(videoPath, ".mkv") + ".nfo")
	require.NoError(t, err)
	assert.Contains(t, string(content), "GENERAL")
	assert.NotContains(t, string(content), "MOVIE")
}

func TestGenerateWithCatalogMatch(t *testing.T) {
	videoPath := setupGenerateTest(t)
	NewCatalogClientFunc = func(logger *log.Logger) (catalog.Client, error) {
		return &mockCatalogClient{
			SearchFunc: func(ctx context.Context, query string, year int, lang string) ([]catalog.SearchResult, error) {
				assert.Equal(t, "Blade Runner 2049", query)
				return []catalog.SearchResult{{ID: 335984, Title: "Blade Runner 2049", Year: 2017}}, nil
			},
			GetFunc: func(ctx context.Context, id int64, lang string) (*catalog.Record, error) {
				return &catalog.Record{
					ID:       id,
					Title:    "Blade Runner 2049",
					Year:     2017,
					Overview: "Un film.",
					Language: lang,
				}, nil
			},
		}, nil
	}

	out, err := runCommand(t, "generate", videoPath, "--print", "--lang", "fr-FR")
	require.NoError(t, err)
	assert.Contains(t, out, "Blade Runner 2049 (2017)")
	assert.Contains(t, out, "MOVIE")
	assert.Contains(t, out, "Un film.")
}

// With an explicit id the merged title comes from the catalog record in
// the requested language, not from the filename guess.
func TestGenerateExplicitIDUsesCatalogTitle(t *testing.T) {
	videoPath := setupGenerateTest(t)
	NewCatalogClientFunc = func(logger *log.Logger) (catalog.Client, error) {
		return &mockCatalogClient{
			GetFunc: func(ctx context.Context, id int64, lang string) (*catalog.Record, error) {
				assert.Equal(t, int64(343668), id)
				assert.Equal(t, "fr-FR", lang)
				return &catalog.Record{ID: id, Title: "Kingsman : Le Cercle d'or", Year: 2017}, nil
			},
		}, nil
	}

	out, err := runCommand(t, "generate", videoPath, "--print", "--tmdb-id", "343668", "--lang", "fr-FR")
	require.NoError(t, err)
	assert.Contains(t, out, "Kingsman : Le Cercle d'or (2017)")
	assert.NotContains(t, out, "Blade Runner 2049 (2017)")
}

// Contradictory flag combinations are rejected up front instead of
// being silently ignored.
func TestGenerateRejectsConflictingFlags(t *testing.T) {
	videoPath := setupGenerateTest(t)

	_, err := runCommand(t, "generate", videoPath, "--rename")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--rename requires --interactive")

	genRename = false
	_, err = runCommand(t, "generate", videoPath, "--tmdb-id", "603", "--no-catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--tmdb-id conflicts with --no-catalog")
}

// A full interactive session over piped input: keep every line, then
// add a NOTES section.
func TestGenerateInteractiveNotes(t *testing.T) {
	videoPath := setupGenerateTest(t)
	IsTerminalFunc = func() bool { return true }

	// a first non-interactive run tells us how many keep answers the
	// repair walk will consume (one per label line)
	probeOut, err := runCommand(t, "generate", videoPath, "--no-catalog", "--print")
	require.NoError(t, err)
	reportLines := 0
	for _, line := range strings.Split(probeOut, "\n") {
		if strings.Index(line, ": ") == 27 {
			reportLines++
		}
	}
	require.Greater(t, reportLines, 0)

	// keep everything, add NOTES, decline GREETZ
	input := strings.Repeat("\n", reportLines) + "y\nA very clean encode.\n\nn\n"
	RootCmd.SetIn(strings.NewReader(input))
	defer RootCmd.SetIn(nil)

	out, err := runCommand(t, "generate", videoPath, "--no-catalog", "--interactive", "--print", "--overwrite")
	require.NoError(t, err)
	assert.Contains(t, out, "NOTES")
	assert.Contains(t, out, "A very clean encode.")
	assert.NotContains(t, out, "GREETZ")
}

func TestGenerateHashSection(t *testing.T) {
	videoPath := setupGenerateTest(t)

	out, err := runCommand(t, "generate", videoPath, "--no-catalog", "--print", "--hash", "sha1", "--overwrite")
	require.NoError(t, err)
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "SHA1 ")
}
