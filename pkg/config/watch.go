package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config)

	watcher *fsnotify.Watcher
	errs    chan error
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	timer   *time.Timer
	current *Config
}

// Watch starts watching path. onChange runs on the watcher goroutine with
// each successfully reloaded config; a file that no longer parses is
// reported on Errors and the previous config stays in effect.
func Watch(path string, debounce time.Duration, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// editors replace files by renaming, so watch the directory
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}
	if cfg, err := LoadConfig(path); err == nil {
		w.current = cfg
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	if _, err := utils.ParseTOMLWithRecovery(w.path); err != nil {
		w.report(fmt.Errorf("reload config: %w", err))
		return
	}
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.report(fmt.Errorf("reload config: %w", err))
		return
	}
	w.mu.Lock()
	diff := changes(w.current, cfg)
	w.current = cfg
	w.mu.Unlock()
	if len(diff) == 0 {
		log.Debugf("Reloaded config from %s, nothing changed", w.path)
	} else {
		log.Infof("Reloaded config from %s: %s", w.path, strings.Join(diff, ", "))
	}
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// changes lists every setting that differs between prev and next as
// "section.key: old -> new", sorted by key. A nil prev compares against
// the defaults.
func changes(prev, next *Config) []string {
	if prev == nil {
		prev = DefaultConfig()
	}
	before, after := flatten(prev), flatten(next)
	var out []string
	for key, v := range after {
		if old := before[key]; old != v {
			out = append(out, fmt.Sprintf("%s: %s -> %s", key, old, v))
		}
	}
	sort.Strings(out)
	return out
}

// flatten renders cfg as section.key -> value through its TOML form
func flatten(cfg *Config) map[string]string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil
	}
	var raw map[string]any
	if _, err := toml.Decode(buf.String(), &raw); err != nil {
		return nil
	}
	out := make(map[string]string)
	for name := range raw {
		section, ok := utils.ExtractSection(raw, name)
		if !ok {
			continue
		}
		for key, v := range section {
			out[name+"."+key] = fmt.Sprint(v)
		}
	}
	return out
}

func (w *Watcher) report(err error) {
	log.Warnf("Config watcher: %v", err)
	select {
	case w.errs <- err:
	default:
	}
}

// Errors returns reload and watch errors. One unread error is buffered; later
// ones are dropped until it is received.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops watching. Pending reloads are dropped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
