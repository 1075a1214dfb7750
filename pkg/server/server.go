package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/swipeserve/internal/metrics"
	"github.com/bastiangx/swipeserve/internal/store"
	"github.com/bastiangx/swipeserve/pkg/config"
	"github.com/bastiangx/swipeserve/pkg/decoder"
	"github.com/bastiangx/swipeserve/pkg/dictionary"
	"github.com/bastiangx/swipeserve/pkg/gesture"
	"github.com/bastiangx/swipeserve/pkg/keys"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Recorder persists decoded gestures.
type Recorder interface {
	Record(ctx context.Context, t store.Trace) (uuid.UUID, error)
}

// snapshot is one consistent set of tuning. Requests load it once and use it
// to the end, so a reload never splits a gesture across two configs.
type snapshot struct {
	cfg     *config.Config
	decoder *decoder.Decoder
	layouts map[string]keys.KeyLookup
}

// Server handles the IPC for swipe decoding. Requests are served one at a
// time; only UpdateConfig may be called from other goroutines.
type Server struct {
	index        *dictionary.Index
	contractions *decoder.Contractions
	state        atomic.Pointer[snapshot]

	tracker    *gesture.Tracker
	layoutKind string
	// open streamed gesture, decoded with the snapshot taken at begin
	streamed   []gesture.TimestampedPoint
	streamSnap *snapshot
	streamKey  string

	recorder Recorder
	records  sync.WaitGroup
	metrics  *metrics.Metrics

	in  *msgpack.Decoder
	out *msgpack.Encoder
}

// NewServer creates a server reading requests from in and writing responses
// to out.
func NewServer(in io.Reader, out io.Writer, index *dictionary.Index, cfg *config.Config) (*Server, error) {
	s := &Server{
		index:        index,
		contractions: decoder.DefaultContractions(),
		in:           msgpack.NewDecoder(in),
		out:          msgpack.NewEncoder(out),
	}
	if err := s.UpdateConfig(cfg); err != nil {
		return nil, err
	}

	st := s.state.Load()
	kind := strings.ToLower(strings.TrimSpace(cfg.Layout.Kind))
	layout, ok := st.layouts[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownLayout, cfg.Layout.Kind)
	}
	s.layoutKind = kind
	s.tracker = gesture.NewTracker(layout, cfg.Tracker)
	return s, nil
}

// SetRecorder traces every decoded gesture to r.
func (s *Server) SetRecorder(r Recorder) {
	s.recorder = r
}

// SetMetrics reports activity to m.
func (s *Server) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
	m.SetDictionaryWords(s.index.Len())
}

// UpdateConfig publishes new tuning. A streamed gesture already in progress
// finishes with the tuning it began with.
func (s *Server) UpdateConfig(cfg *config.Config) error {
	layouts := make(map[string]keys.KeyLookup, 2)
	for _, kind := range []string{config.LayoutRing, config.LayoutGrid} {
		layout, err := cfg.Layout.Build(kind)
		if err != nil {
			return err
		}
		layouts[kind] = layout
	}
	s.state.Store(&snapshot{
		cfg:     cfg,
		decoder: decoder.New(s.index, s.contractions, cfg.Decoder),
		layouts: layouts,
	})
	log.Debug("Server config updated")
	return nil
}

// Start begins listening for IPC requests. It returns nil when the input
// ends and waits for pending trace writes first.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	defer s.records.Wait()

	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		raw, err := s.in.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Reading request stream: %v", err)
			return err
		}
		s.handleRequest(raw)
	}
}

// handleRequest dispatches one raw message. Malformed messages are answered
// with an error and never stop the loop.
func (s *Server) handleRequest(raw msgpack.RawMessage) {
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "Invalid msgpack request", 400)
		return
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Request %s panicked: %v", req.ID, r)
			s.metrics.ObserveGesture(metrics.OutcomeError, time.Since(start))
			s.sendError(req.ID, "Internal server error", 500)
		}
	}()

	switch strings.ToLower(req.Action) {
	case ActionSwipe:
		s.handleSwipe(req)
	case ActionBegin:
		s.handleBegin(req)
	case ActionSample:
		s.handleSample(req)
	case ActionEnd:
		s.handleEnd(req)
	case ActionComplete:
		s.handleComplete(req)
	case ActionLayout:
		s.handleLayout(req)
	case ActionHealth:
		s.sendResponse(StatusResponse{
			ID:     req.ID,
			Status: "ok",
			Layout: s.layoutKind,
			Words:  s.index.Len(),
		})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %q", req.Action), 400)
	}
}

func (s *Server) handleSwipe(req Request) {
	if len(req.Points) == 0 {
		s.sendError(req.ID, "Missing 'pts' parameter", 400)
		return
	}
	st := s.state.Load()
	start := time.Now()
	samples := toSamples(req.Points)
	hits := gesture.Track(st.layouts[s.layoutKind], st.cfg.Tracker, samples)
	s.respondDecoded(st, req, start, samples, "", hits)
}

func (s *Server) handleBegin(req Request) {
	if len(req.Points) == 0 {
		s.sendError(req.ID, "Missing 'pts' parameter", 400)
		return
	}
	st := s.state.Load()
	layout := st.layouts[s.layoutKind]
	s.tracker.SetParams(st.cfg.Tracker)
	s.tracker.SetLayout(layout)

	var initial *keys.KeyDescriptor
	s.streamKey = ""
	if r := []rune(strings.ToLower(req.Key)); len(r) > 0 {
		if k, ok := keys.ByChar(layout, r[0]); ok {
			initial = &k
			s.streamKey = string(k.Char)
		}
	}

	s.streamSnap = st
	samples := toSamples(req.Points)
	s.streamed = append(make([]gesture.TimestampedPoint, 0, 128), samples[0])
	s.tracker.Begin(samples[0].Position, samples[0].Time, initial)
	s.addSamples(samples[1:])
	s.sendCurrentKey(req.ID)
}

func (s *Server) handleSample(req Request) {
	if !s.tracker.Active() {
		s.sendError(req.ID, "No gesture in progress", 400)
		return
	}
	s.addSamples(toSamples(req.Points))
	s.sendCurrentKey(req.ID)
}

func (s *Server) handleEnd(req Request) {
	if !s.tracker.Active() {
		s.sendError(req.ID, "No gesture in progress", 400)
		return
	}
	st := s.streamSnap
	start := time.Now()
	hits := s.tracker.Finalize()
	samples, key := s.streamed, s.streamKey
	s.streamed, s.streamSnap, s.streamKey = nil, nil, ""
	s.respondDecoded(st, req, start, samples, key, hits)
}

func (s *Server) addSamples(samples []gesture.TimestampedPoint) {
	for _, p := range samples {
		s.tracker.AddSample(p.Position, p.Time)
	}
	s.streamed = append(s.streamed, samples...)
}

func (s *Server) sendCurrentKey(id string) {
	resp := KeyResponse{ID: id, Samples: s.tracker.SampleCount()}
	if k, ok := s.tracker.CurrentKey(); ok {
		resp.Key = string(k.Char)
	}
	s.sendResponse(resp)
}

// respondDecoded ranks hits, answers the request and records the gesture.
func (s *Server) respondDecoded(st *snapshot, req Request, start time.Time, samples []gesture.TimestampedPoint, initialKey string, hits []gesture.WeightedKeyHit) {
	ranked := st.decoder.Rank(hits, st.cfg.Server.ClampLimit(req.Limit))
	elapsed := time.Since(start)

	resp := SwipeResponse{
		ID:          req.ID,
		Suggestions: make([]Suggestion, len(ranked)),
		Count:       len(ranked),
		TimeTaken:   elapsed.Microseconds(),
		Hits:        store.HitString(hits),
	}
	words := make([]string, len(ranked))
	for i, c := range ranked {
		resp.Suggestions[i] = Suggestion{Word: c.Word, Rank: uint16(i + 1), Score: c.Score}
		words[i] = c.Word
	}

	outcome := metrics.OutcomeNoMatch
	if len(ranked) > 0 {
		outcome = metrics.OutcomeMatch
	}
	s.metrics.ObserveGesture(outcome, elapsed)

	if s.recorder != nil {
		trace := store.Trace{
			ID:         uuid.New(),
			Layout:     s.layoutKind,
			Samples:    samples,
			InitialKey: initialKey,
			Hits:       resp.Hits,
			Candidates: words,
		}
		if len(words) > 0 {
			trace.TopWord = words[0]
		}
		resp.Trace = trace.ID.String()
		s.record(trace)
	}

	log.Debugf("Decoded %d samples as %q in %v", len(samples), resp.Hits, elapsed)
	s.sendResponse(resp)
}

// record writes a trace without holding up the request loop.
func (s *Server) record(trace store.Trace) {
	s.records.Add(1)
	go func() {
		defer s.records.Done()
		if _, err := s.recorder.Record(context.Background(), trace); err != nil {
			log.Warnf("Recording trace %s: %v", trace.ID, err)
		}
	}()
}

func (s *Server) handleComplete(req Request) {
	prefix := req.Prefix
	if prefix == "" {
		s.sendError(req.ID, "Missing 'p' parameter", 400)
		log.Debug("Prefix is empty in request")
		return
	}
	if len(prefix) > maxPrefixLen {
		s.sendError(req.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", maxPrefixLen), 400)
		log.Debug("Prefix is too long in request")
		return
	}

	st := s.state.Load()
	start := time.Now()
	words := s.index.PrefixMatches(prefix, st.cfg.Server.ClampLimit(req.Limit))
	resp := SwipeResponse{
		ID:          req.ID,
		Suggestions: make([]Suggestion, len(words)),
		Count:       len(words),
	}
	for i, w := range words {
		resp.Suggestions[i] = Suggestion{Word: w, Rank: uint16(i + 1)}
	}
	resp.TimeTaken = time.Since(start).Microseconds()
	s.sendResponse(resp)
}

func (s *Server) handleLayout(req Request) {
	kind := strings.ToLower(strings.TrimSpace(req.Layout))
	layout, ok := s.state.Load().layouts[kind]
	if !ok {
		s.sendError(req.ID, fmt.Sprintf("Unknown layout: %q", req.Layout), 400)
		return
	}
	s.layoutKind = kind
	// samples still to come in an open gesture use the new layout
	if s.tracker.Active() {
		s.tracker.SetLayout(layout)
	}
	log.Debugf("Switched layout to %s", kind)
	s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Layout: kind})
}

// sendResponse encodes response onto the output stream.
func (s *Server) sendResponse(response any) {
	if err := s.out.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{
		ID:    id,
		Error: message,
		Code:  code,
	})
}

func toSamples(points []Sample) []gesture.TimestampedPoint {
	samples := make([]gesture.TimestampedPoint, len(points))
	for i, p := range points {
		samples[i] = gesture.TimestampedPoint{Position: keys.Pt(p.X, p.Y), Time: p.T}
	}
	return samples
}
