package text

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/strrl/typerace/pkg/models"
)

//go:embed lines.txt
var embeddedLines string

// ErrEmptyCorpus is returned when a corpus has no usable lines.
var ErrEmptyCorpus = errors.New("corpus has no usable lines")

// CorpusProvider picks a random line from a fixed list.
type CorpusProvider struct {
	source string
	lines  []string

	mu  sync.Mutex
	rng *rand.Rand
}

// LoadCorpus reads one line per entry from path, or uses the embedded corpus
// when path is empty. Blank lines and lines starting with '#' are skipped.
func LoadCorpus(path string, maxLen int) (*CorpusProvider, error) {
	if path == "" {
		return NewCorpusProvider("Corpus", parseLines(embeddedLines, maxLen))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	var raw strings.Builder
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		raw.WriteString(sc.Text())
		raw.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	return NewCorpusProvider(filepath.Base(path), parseLines(raw.String(), maxLen))
}

// NewCorpusProvider creates a provider over already normalized lines.
func NewCorpusProvider(source string, lines []string) (*CorpusProvider, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCorpus
	}
	return &CorpusProvider{
		source: source,
		lines:  lines,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func parseLines(s string, maxLen int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if normalized := Normalize(line, maxLen); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

// Len returns the number of lines in the corpus.
func (c *CorpusProvider) Len() int { return len(c.lines) }

// Fetch returns a random line.
func (c *CorpusProvider) Fetch(ctx context.Context) (models.Text, error) {
	if err := ctx.Err(); err != nil {
		return models.Text{}, err
	}

	c.mu.Lock()
	i := c.rng.Intn(len(c.lines))
	c.mu.Unlock()

	return models.Text{Source: c.source, Body: c.lines[i]}, nil
}
