// Package main provides swipectl, the offline companion of swipeserve: it
// builds dictionaries, inspects layouts, decodes simulated swipes and replays
// recorded traces against the current tuning.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/swipeserve/internal/logger"
	"github.com/bastiangx/swipeserve/internal/store"
	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/config"
	"github.com/bastiangx/swipeserve/pkg/decoder"
	"github.com/bastiangx/swipeserve/pkg/dictionary"
	"github.com/bastiangx/swipeserve/pkg/gesture"
	"github.com/bastiangx/swipeserve/pkg/keys"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultDataDir = "data/"

var (
	configPath string
	debugMode  bool

	buildOut     string
	buildChunk   int
	buildRaw     bool
	buildCore    int
	buildObscure bool

	decodeLayout string
	decodeLimit  int
	decodeDict   string
	decodeLoop   bool

	tracesDB    string
	tracesLimit int

	optimizeDict string
	optimizeOpts keys.AnnealOptions
	optimizeSave bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "swipectl",
		Short:         "Tools for tuning and inspecting swipeserve",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.Setup(debugMode)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "debug logging")

	rootCmd.AddCommand(newBuildDictCmd())
	rootCmd.AddCommand(newLayoutCmd())
	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newOptimizeRingCmd())
	rootCmd.AddCommand(newTracesCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newResetConfigCmd())
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, _, err := config.LoadConfigWithPriority(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newBuildDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-dict <words.txt>",
		Short: "Convert a frequency-ordered word list into binary chunks",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuildDictCmd,
	}
	cmd.Flags().StringVar(&buildOut, "out", defaultDataDir, "output directory")
	cmd.Flags().IntVar(&buildChunk, "chunk", config.DefaultConfig().Dict.ChunkSize, "words per chunk")
	cmd.Flags().BoolVar(&buildRaw, "raw", false, "keep the list as is, skipping curation")
	cmd.Flags().IntVar(&buildCore, "core", dictionary.DefaultCoreSize, "leading words that only face the hard exclusions")
	cmd.Flags().BoolVar(&buildObscure, "drop-obscure", false, "also drop technical or archaic words past the core")
	return cmd
}

func runBuildDictCmd(cmd *cobra.Command, args []string) error {
	words, err := dictionary.LoadTextFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !buildRaw {
		var stats dictionary.CurateStats
		words, stats = dictionary.Curate(words, dictionary.CurateOptions{CoreSize: buildCore, DropObscure: buildObscure})
		if stats.Dropped() > 0 {
			if _, err := fmt.Fprintf(out, "dropped %d words (%d invalid, %d duplicate, %d excluded, %d obscure)\n",
				stats.Dropped(), stats.Invalid, stats.Duplicate, stats.Excluded, stats.Obscure); err != nil {
				return err
			}
		}
	}
	n, err := dictionary.WriteChunks(buildOut, words, buildChunk)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "wrote %d words in %d chunks to %s\n", len(words), n, buildOut)
	return err
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "layout [ring|grid]",
		Short:     "Print the key centres of a layout",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{config.LayoutRing, config.LayoutGrid},
		RunE:      runLayoutCmd,
	}
}

func runLayoutCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	kind := ""
	if len(args) > 0 {
		kind = args[0]
	}
	layout, err := cfg.Layout.Build(kind)
	if err != nil {
		return err
	}
	for _, k := range layout.Keys() {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%2d %c %8.2f %8.2f\n", k.Index, k.Char, k.Position.X, k.Position.Y); err != nil {
			return err
		}
	}
	return nil
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <word>...",
		Short: "Swipe words on a simulated layout and print the ranked candidates",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDecodeCmd,
	}
	cmd.Flags().StringVar(&decodeLayout, "layout", "", "ring or grid (default from config)")
	cmd.Flags().IntVar(&decodeLimit, "limit", 0, "candidates per word (default from config)")
	cmd.Flags().StringVar(&decodeDict, "dict", "", "word list or chunk directory (default from config or data/)")
	cmd.Flags().BoolVar(&decodeLoop, "loop", false, "draw double letters as loops")
	return cmd
}

func runDecodeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout, err := cfg.Layout.Build(decodeLayout)
	if err != nil {
		return err
	}
	dec, err := openDecoder(cfg, decodeDict)
	if err != nil {
		return err
	}
	limit := decodeLimit
	if limit <= 0 {
		limit = cfg.CLI.DefaultLimit
	}

	opts := gesture.DefaultSynthOptions()
	opts.LoopDoubles = decodeLoop
	out := cmd.OutOrStdout()
	for _, word := range args {
		samples := gesture.Synthesize(word, layout, opts)
		hits := gesture.Track(layout, cfg.Tracker, samples)
		if _, err := fmt.Fprintf(out, "%s: %s\n", word, store.HitString(hits)); err != nil {
			return err
		}
		if err := printCandidates(cmd, dec.Rank(hits, limit)); err != nil {
			return err
		}
	}
	return nil
}

// openIndex loads the dictionary from path, the config, or the data dir in
// that order.
func openIndex(cfg *config.Config, path string) (*dictionary.Index, error) {
	if path == "" {
		path = cfg.Dict.Path
	}
	if path == "" {
		resolver, err := utils.NewPathResolver()
		if err != nil {
			return nil, err
		}
		if path, err = resolver.GetDataDir(defaultDataDir); err != nil {
			return nil, err
		}
	}
	index, err := dictionary.Open(path, cfg.Dict.MaxWords)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	log.Debugf("Loaded %d words from %s", index.Len(), path)
	return index, nil
}

func openDecoder(cfg *config.Config, path string) (*decoder.Decoder, error) {
	index, err := openIndex(cfg, path)
	if err != nil {
		return nil, err
	}
	return decoder.New(index, decoder.DefaultContractions(), cfg.Decoder), nil
}

func printCandidates(cmd *cobra.Command, ranked []decoder.Candidate) error {
	if len(ranked) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "  (no match)")
		return err
	}
	for i, c := range ranked {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "  %2d. %-20s %7.3f\n", i+1, c.Word, c.Score); err != nil {
			return err
		}
	}
	return nil
}

func newOptimizeRingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize-ring",
		Short: "Anneal a ring letter order from the dictionary's letter and bigram frequencies",
		Long: `Searches for the ring order that keeps frequent bigrams far apart and
frequent letters near the centre and away from the bottom-right.
The letter and bigram frequencies come from the dictionary, weighted by rank.`,
		Args: cobra.NoArgs,
		RunE: runOptimizeRingCmd,
	}
	d := keys.DefaultAnnealOptions()
	cmd.Flags().StringVar(&optimizeDict, "dict", "", "word list or chunk directory (default from config or data/)")
	cmd.Flags().IntVar(&optimizeOpts.Runs, "runs", d.Runs, "annealing runs, the best is kept")
	cmd.Flags().IntVar(&optimizeOpts.Iterations, "iterations", d.Iterations, "swaps tried per run")
	cmd.Flags().Float64Var(&optimizeOpts.Cooling, "cooling", d.Cooling, "temperature factor per swap")
	cmd.Flags().Int64Var(&optimizeOpts.Seed, "seed", d.Seed, "seed of the first run")
	cmd.Flags().Float64Var(&optimizeOpts.CenterWeight, "center-weight", d.CenterWeight, "pull of frequent letters towards the inner ring")
	cmd.Flags().Float64Var(&optimizeOpts.ReachWeight, "reach-weight", d.ReachWeight, "push of frequent letters away from the bottom-right")
	cmd.Flags().BoolVar(&optimizeSave, "save", false, "write the order to layout.ring_order in the config file")
	return cmd
}

func runOptimizeRingCmd(cmd *cobra.Command, _ []string) error {
	cfg, path, err := config.LoadConfigWithPriority(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	index, err := openIndex(cfg, optimizeDict)
	if err != nil {
		return err
	}
	words := make([]string, 0, index.Len())
	for _, e := range index.Entries() {
		words = append(words, e.Word)
	}
	stats := keys.StatsFromWords(words)

	order, energy, err := keys.OptimizeRing(cfg.Layout.Ring, stats, optimizeOpts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "order:  %s\nenergy: %.3f\n", order, energy); err != nil {
		return err
	}
	if current, err := keys.RingEnergy(cfg.Layout.RingOrder, cfg.Layout.Ring, stats, optimizeOpts); err == nil {
		if _, err := fmt.Fprintf(out, "current %s: %.3f\n", cfg.Layout.RingOrder, current); err != nil {
			return err
		}
	}
	if !optimizeSave {
		return nil
	}

	if path == "" {
		return fmt.Errorf("no config file to save to: pass --config")
	}
	cfg.Layout.RingOrder = order
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	_, err = fmt.Fprintf(out, "saved to %s\n", path)
	return err
}

func newTracesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traces",
		Short: "Inspect gestures recorded with swipeserve -record",
	}
	cmd.PersistentFlags().StringVar(&tracesDB, "db", "", "trace database (default: server.record from config)")
	cmd.PersistentFlags().IntVar(&tracesLimit, "limit", 20, "number of traces or candidates")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recent traces, newest first",
		Args:  cobra.NoArgs,
		RunE:  runTracesListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "replay <id>",
		Short: "Decode a recorded trace again with the current config",
		Args:  cobra.ExactArgs(1),
		RunE:  runTracesReplayCmd,
	})
	return cmd
}

func openTraces(cfg *config.Config) (*store.Store, error) {
	path := tracesDB
	if path == "" {
		path = cfg.Server.Record
	}
	if path == "" {
		return nil, fmt.Errorf("no trace database: pass --db or set server.record")
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func runTracesListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openTraces(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	traces, err := st.List(context.Background(), tracesLimit)
	if err != nil {
		return err
	}
	for _, t := range traces {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-4s %4d samples  %-12s %s\n",
			t.ID, t.CreatedAt.Format("2006-01-02 15:04:05"), t.Layout, len(t.Samples), t.TopWord, t.Hits); err != nil {
			return err
		}
	}
	return nil
}

func runTracesReplayCmd(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid trace id %q: %w", args[0], err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openTraces(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	trace, err := st.Get(context.Background(), id)
	if err != nil {
		return err
	}
	layout, err := cfg.Layout.Build(trace.Layout)
	if err != nil {
		return err
	}
	dec, err := openDecoder(cfg, decodeDict)
	if err != nil {
		return err
	}

	hits, ranked := store.Replay(trace, layout, cfg.Tracker, dec, tracesLimit)
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "recorded: %s -> %s\nreplayed: %s\n", trace.Hits, strings.Join(trace.Candidates, " "), store.HitString(hits)); err != nil {
		return err
	}
	return printCandidates(cmd, ranked)
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [data-dir]",
		Short: "Show where swipeserve looks for its config and dictionary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDoctorCmd,
	}
}

func runDoctorCmd(cmd *cobra.Command, args []string) error {
	resolver, err := utils.NewPathResolver()
	if err != nil {
		return err
	}
	dataDir := defaultDataDir
	if len(args) > 0 {
		dataDir = args[0]
	}
	out := cmd.OutOrStdout()
	info := resolver.GetRuntimeInfo()
	for _, key := range []string{"os", "arch", "executable_dir", "config_dir"} {
		if _, err := fmt.Fprintf(out, "%-15s %s\n", key, info[key]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(out, "%-15s %s\n", "config", config.GetActiveConfigPath(configPath)); err != nil {
		return err
	}
	for _, c := range resolver.DiagnosePathIssues(dataDir) {
		status := "missing"
		switch {
		case c.Valid:
			status = fmt.Sprintf("ok (%d chunks)", len(c.Chunks))
		case c.Exists:
			status = "no dictionary"
		}
		if _, err := fmt.Fprintf(out, "%-15s %s [%s]\n", "data", filepath.Clean(c.Path), status); err != nil {
			return err
		}
	}
	return nil
}

func newResetConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-config",
		Short: "Overwrite the default config.toml with the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.RebuildConfigFile(); err != nil {
				return fmt.Errorf("failed to rebuild config: %w", err)
			}
			path, err := config.GetDefaultConfigPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote defaults to %s\n", path)
			return err
		},
	}
}
