// Package cli handles cmd line input for trying the decoder without a host.
//
// Each typed word is turned into the swipe a careful user would draw for it
// on the current layout, then decoded. Lines starting with ':' are commands:
//
//	:ring, :grid     switch layout
//	:loop            toggle drawing double letters as loops
//	:scores          toggle score output
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/swipeserve/internal/logger"
	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/config"
	"github.com/bastiangx/swipeserve/pkg/decoder"
	"github.com/bastiangx/swipeserve/pkg/gesture"
	"github.com/bastiangx/swipeserve/pkg/keys"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads words from an input, swipes them and prints what the
// decoder makes of them.
type InputHandler struct {
	decoder      *decoder.Decoder
	layouts      config.LayoutConfig
	layoutKind   string
	layout       keys.KeyLookup
	tracker      gesture.Params
	synth        gesture.SynthOptions
	suggestLimit int
	showScores   bool

	in  io.Reader
	out *log.Logger
}

// NewInputHandler handles initialization of the InputHandler from the loaded
// config. It reads from in and prints to out.
func NewInputHandler(dec *decoder.Decoder, cfg *config.Config, layoutKind string, limit int, in io.Reader, out io.Writer) (*InputHandler, error) {
	h := &InputHandler{
		decoder:      dec,
		layouts:      cfg.Layout,
		tracker:      cfg.Tracker,
		synth:        gesture.DefaultSynthOptions(),
		suggestLimit: limit,
		showScores:   cfg.CLI.ShowScores,
		in:           in,
		out:          logger.NewWithWriter(out, "", log.InfoLevel, false, false, log.TextFormatter),
	}
	if err := h.setLayout(layoutKind); err != nil {
		return nil, err
	}
	return h, nil
}

// Start begins the interface loop. It returns nil once the input ends.
func (h *InputHandler) Start() error {
	h.out.Print("SwipeServe CLI [BETA]")
	h.out.Printf("layout: %s. type a word and press Enter to swipe it (Ctrl+C to exit):", h.layoutKind)

	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) setLayout(kind string) error {
	layout, err := h.layouts.Build(kind)
	if err != nil {
		return err
	}
	if kind == "" {
		kind = h.layouts.Kind
	}
	h.layout = layout
	h.layoutKind = strings.ToLower(kind)
	return nil
}

func (h *InputHandler) handleCommand(cmd string) {
	switch cmd {
	case "loop":
		h.synth.LoopDoubles = !h.synth.LoopDoubles
		h.out.Printf("loop doubles: %v", h.synth.LoopDoubles)
	case "scores":
		h.showScores = !h.showScores
		h.out.Printf("scores: %v", h.showScores)
	default:
		if err := h.setLayout(cmd); err != nil {
			h.out.Errorf("Unknown command: %s", cmd)
			return
		}
		h.out.Printf("layout: %s", h.layoutKind)
	}
}

// handleInput swipes one word and prints the ranked candidates.
func (h *InputHandler) handleInput(input string) {
	if cmd, ok := strings.CutPrefix(input, ":"); ok {
		h.handleCommand(strings.ToLower(strings.TrimSpace(cmd)))
		return
	}

	word := utils.NormalizeWord(input)
	if !utils.IsValidWord(word) {
		h.out.Errorf("Not a word: %s", input)
		return
	}

	start := time.Now()
	samples := gesture.Synthesize(word, h.layout, h.synth)
	hits := gesture.Track(h.layout, h.tracker, samples)
	ranked := h.decoder.Rank(hits, h.suggestLimit)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for '%s' (%d samples)", elapsed, word, len(samples))

	h.out.Printf("hits: %s", hitString(hits))
	if len(ranked) == 0 {
		h.out.Warnf("No match for '%s'", word)
		return
	}

	h.out.Printf("Found %d candidates for '%s':", len(ranked), word)
	for i, c := range ranked {
		line := fmt.Sprintf("%2d. %-24s", i+1, wordStyle.Render(c.Word))
		if h.showScores {
			line += fmt.Sprintf(" (score: %6.2f)", c.Score)
		}
		h.out.Print(line)
	}
}

func hitString(hits []gesture.WeightedKeyHit) string {
	parts := make([]string, len(hits))
	for i, hit := range hits {
		if hit.IsAnchor() {
			parts[i] = strings.ToUpper(string(hit.Key.Char))
		} else {
			parts[i] = string(hit.Key.Char)
		}
	}
	return strings.Join(parts, "")
}
