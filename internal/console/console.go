// Package console is the line-oriented terminal front end for a pipeline.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/pipeline"
	"github.com/valpere/pogoda/internal/view"
	"github.com/valpere/pogoda/pkg/weather"
)

// MinPickSimilarity is the lowest Jaro-Winkler score /pick accepts.
const MinPickSimilarity = 0.7

const refreshTimeout = 10 * time.Second

var errNoMatch = errors.New("no suggestion matches")

const helpText = `Type a place name to search.
  /1../5        pick a suggestion by number
  /pick <name>  pick the closest suggestion by name
  /refresh      reload weather for the current place
  /reset        hide suggestions
  /state        print the raw state as JSON
  /help         show this help
  /quit         exit`

// Pipeline is the part of *pipeline.Pipeline the console drives.
type Pipeline interface {
	State() pipeline.State
	Subscribe(fn func(pipeline.State)) (unsubscribe func())
	SetQuery(text string)
	Focus()
	Blur()
	ResetSuggestions()
	SelectIndex(i int) error
	Refresh() <-chan struct{}
}

type Console struct {
	pipeline Pipeline
	renderer *view.Renderer
	logger   *zerolog.Logger

	mu         sync.Mutex
	out        io.Writer
	lastScreen string
}

func New(p Pipeline, renderer *view.Renderer, out io.Writer, logger *zerolog.Logger) *Console {
	return &Console{
		pipeline: p,
		renderer: renderer,
		out:      out,
		logger:   logger,
	}
}

// Run reads commands from in until EOF, /quit or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := c.pipeline.Subscribe(c.render)
	defer unsubscribe()

	c.pipeline.Focus()
	defer c.pipeline.Blur()

	c.println(helpText)
	c.render(c.pipeline.State())

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			return err
		case line := <-lines:
			if c.Handle(ctx, line) {
				return nil
			}
		}
	}
}

// Handle executes one input line and reports whether the user asked to quit.
func (c *Console) Handle(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		c.pipeline.SetQuery(line)
		return false
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help":
		c.println(helpText)
	case "reset":
		c.pipeline.ResetSuggestions()
	case "refresh":
		c.refresh(ctx)
	case "state":
		c.printState()
	case "pick":
		c.pick(arg)
	default:
		if n, err := strconv.Atoi(cmd); err == nil {
			c.selectIndex(n - 1)
			return false
		}
		c.println(fmt.Sprintf("Unknown command /%s, try /help", cmd))
	}
	return false
}

func (c *Console) selectIndex(i int) {
	if err := c.pipeline.SelectIndex(i); err != nil {
		c.println(fmt.Sprintf("Cannot select %d: %v", i+1, err))
	}
}

func (c *Console) pick(name string) {
	if name == "" {
		c.println("Usage: /pick <name>")
		return
	}

	i, err := BestMatch(name, c.pipeline.State().Suggestions)
	if err != nil {
		c.println(fmt.Sprintf("Cannot pick %q: %v", name, err))
		return
	}
	c.selectIndex(i)
}

func (c *Console) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	select {
	case <-c.pipeline.Refresh():
	case <-ctx.Done():
		c.println("Refresh is taking too long")
	}
}

func (c *Console) printState() {
	data, err := json.MarshalIndent(c.pipeline.State(), "", "  ")
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to encode state")
		return
	}
	c.println(string(data))
}

// render prints the screen when it differs from the last one printed.
func (c *Console) render(st pipeline.State) {
	screen := c.renderer.Screen(st)

	c.mu.Lock()
	defer c.mu.Unlock()
	if screen == c.lastScreen {
		return
	}
	c.lastScreen = screen
	fmt.Fprintf(c.out, "\n%s\n", screen)
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

// BestMatch returns the index of the suggestion whose name or label is most
// similar to name. Ties go to the earlier suggestion.
func BestMatch(name string, suggestions []weather.Location) (int, error) {
	query := strings.ToLower(name)
	best, bestScore := -1, float32(0)

	for i, loc := range suggestions {
		for _, candidate := range []string{loc.Name, loc.Label()} {
			score, err := edlib.StringsSimilarity(query, strings.ToLower(candidate), edlib.JaroWinkler)
			if err != nil {
				return -1, err
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
	}

	if best < 0 || bestScore < MinPickSimilarity {
		return -1, errNoMatch
	}
	return best, nil
}
