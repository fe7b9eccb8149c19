// Package probe locates and runs the external technical probe tools
// (mediainfo preferred, ffprobe fallback) and returns their parsed JSON
// output tagged by the tool that produced it. It performs no
// normalization; that is the technical package's job.
package probe

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	apierrors "github.com/clembu/nfogen/pkg/core/errors"
)

// Tool identifies which external probe program produced a Source.
type Tool string

const (
	ToolMediaInfo Tool = "mediainfo"
	ToolFFProbe   Tool = "ffprobe"
)

// MediaInfoTree is the raw `mediainfo --Output=JSON` document. Track
// fields stay untyped because mediainfo reports everything as strings
// and the available keys vary per container.
type MediaInfoTree struct {
	Media struct {
		Track []map[string]interface{} `json:"track"`
	} `json:"media"`
}

// FFProbeTree is the raw `ffprobe -print_format json` document.
type FFProbeTree struct {
	Format  map[string]interface{}   `json:"format"`
	Streams []map[string]interface{} `json:"streams"`
}

// Source is the tagged output of exactly one probe tool. Only the field
// matching Tool is populated; the two tools are never combined.
type Source struct {
	Tool      Tool
	MediaInfo *MediaInfoTree
	FFProbe   *FFProbeTree
}

// Runner discovers and invokes the probe tools.
type Runner struct {
	// Preferred is tried first when both tools are installed.
	Preferred Tool
	logger    *log.Logger
}

// NewRunner creates a Runner. An empty preferred tool defaults to mediainfo.
func NewRunner(preferred Tool, logger *log.Logger) *Runner {
	if preferred != ToolFFProbe {
		preferred = ToolMediaInfo
	}
	if logger == nil {
		logger = log.New()
		logger.SetOutput(os.Stderr)
	}
	return &Runner{Preferred: preferred, logger: logger}
}

// Probe runs the first available probe tool against path and returns its
// parsed output. It returns ErrProbeUnavailable when neither tool is on
// the PATH, and the last invocation error when all available tools fail.
func (r *Runner) Probe(ctx context.Context, path string) (*Source, error) {
	order := []Tool{ToolMediaInfo, ToolFFProbe}
	if r.Preferred == ToolFFProbe {
		order = []Tool{ToolFFProbe, ToolMediaInfo}
	}

	available := 0
	var lastErr error
	for _, tool := range order {
		if _, err := exec.LookPath(string(tool)); err != nil {
			r.logger.Debugf("Probe tool %s not found on PATH", tool)
			continue
		}
		available++
		src, err := runTool(ctx, tool, path)
		if err != nil {
			r.logger.Warnf("Probe tool %s failed on %s: %v", tool, path, err)
			lastErr = err
			continue
		}
		r.logger.Infof("Technical probe: %s", tool)
		return src, nil
	}

	if available == 0 {
		return nil, apierrors.ErrProbeUnavailable
	}
	return nil, fmt.Errorf("all probe tools failed: %w", lastErr)
}

func runTool(ctx context.Context, tool Tool, path string) (*Source, error) {
	var args []string
	switch tool {
	case ToolMediaInfo:
		args = []string{"--Output=JSON", path}
	case ToolFFProbe:
		args = []string{"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path}
	default:
		return nil, fmt.Errorf("unknown probe tool %q", tool)
	}

	out, err := exec.CommandContext(ctx, string(tool), args...).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", tool, err)
	}
	return Decode(tool, out)
}

// Decode parses raw probe JSON into a tagged Source.
func Decode(tool Tool, raw []byte) (*Source, error) {
	src := &Source{Tool: tool}
	switch tool {
	case ToolMediaInfo:
		tree := &MediaInfoTree{}
		if err := json.Unmarshal(raw, tree); err != nil {
			return nil, fmt.Errorf("failed to decode mediainfo output: %w", err)
		}
		src.MediaInfo = tree
	case ToolFFProbe:
		tree := &FFProbeTree{}
		if err := json.Unmarshal(raw, tree); err != nil {
			return nil, fmt.Errorf("failed to decode ffprobe output: %w", err)
		}
		src.FFProbe = tree
	default:
		return nil, fmt.Errorf("unknown probe tool %q", tool)
	}
	return src, nil
}
