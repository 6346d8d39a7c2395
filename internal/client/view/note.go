// Package view holds the client-side state of the note list and note detail
// screens: the per-note analysis orchestrator, list ordering and filtering,
// and background refresh.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/annotate"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/textx"
)

// Analyzer runs one analysis. Implementations must not fail: any problem is
// reported as fallback data.
type Analyzer interface {
	Analyze(ctx context.Context, kind ai.Kind, text string) ai.Result
}

type Status int

const (
	Idle Status = iota
	Loading
	Ready
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

var ErrNoteLocked = errors.New("note is locked")

// FeatureState is a snapshot of one analysis panel.
type FeatureState struct {
	Status  Status
	Visible bool
	Result  *ai.Result
}

type feature struct {
	status  Status
	visible bool
	result  *ai.Result
	done    chan struct{}
}

// NoteView orchestrates the four analyses of one open note. Each kind runs
// Idle -> Loading -> Ready independently; a result is cached until the note
// identity changes or the view is closed.
type NoteView struct {
	mu       sync.Mutex
	analyzer Analyzer
	logger   logging.Logger
	onChange func(ai.Kind)

	note     models.Note
	features map[ai.Kind]*feature
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
}

type NoteViewOption func(*NoteView)

// WithOnChange registers fn to be called after a result is stored.
func WithOnChange(fn func(ai.Kind)) NoteViewOption {
	return func(v *NoteView) { v.onChange = fn }
}

func NewNoteView(note models.Note, analyzer Analyzer, logger logging.Logger, opts ...NoteViewOption) *NoteView {
	v := &NoteView{
		analyzer: analyzer,
		logger:   logger.With("module", "noteview"),
		note:     note,
	}
	for _, o := range opts {
		o(v)
	}
	v.reset()
	return v
}

// reset must be called with mu held (or before the view is shared).
func (v *NoteView) reset() {
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	v.ctx, v.cancel = context.WithCancel(context.Background())
	v.features = make(map[ai.Kind]*feature, 4)
	for _, k := range ai.Kinds() {
		v.features[k] = &feature{}
	}
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Toggle handles a click on the panel of kind. The returned channel is
// closed once the panel is settled: immediately unless an analysis is in
// flight.
//
//	Idle, no cache  -> Loading, analysis starts
//	Idle, cached    -> Ready, no recomputation
//	Loading         -> visibility flips, nothing restarts
//	Ready           -> Idle (collapsed), cache kept
func (v *NoteView) Toggle(kind ai.Kind) (<-chan struct{}, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return closedChan(), nil
	}
	f, ok := v.features[kind]
	if !ok {
		return nil, fmt.Errorf("unknown analysis %q", kind)
	}

	switch f.status {
	case Loading:
		f.visible = !f.visible
		return f.done, nil
	case Ready:
		f.status = Idle
		f.visible = false
		return closedChan(), nil
	}

	if f.result != nil {
		f.status = Ready
		f.visible = true
		return closedChan(), nil
	}

	if v.note.Locked {
		return nil, ErrNoteLocked
	}

	f.status = Loading
	f.visible = true
	f.done = make(chan struct{})

	go v.run(v.ctx, v.gen, kind, textx.PlainText(v.note.Content), f.done)

	return f.done, nil
}

func (v *NoteView) run(ctx context.Context, gen uint64, kind ai.Kind, text string, done chan struct{}) {
	defer close(done)

	res := v.analyze(ctx, kind, text)

	v.mu.Lock()
	if v.closed || gen != v.gen {
		v.mu.Unlock()
		v.logger.Debug(ctx, "discarding stale analysis", "kind", string(kind))
		return
	}
	f := v.features[kind]
	f.result = &res
	f.status = Ready
	onChange := v.onChange
	v.mu.Unlock()

	if onChange != nil {
		onChange(kind)
	}
}

func (v *NoteView) analyze(ctx context.Context, kind ai.Kind, text string) (res ai.Result) {
	defer func() {
		if p := recover(); p != nil {
			v.logger.Error(ctx, "analyzer panicked", "kind", string(kind), "panic", fmt.Sprint(p))
			res = ai.Fallback(kind)
		}
	}()
	res = v.analyzer.Analyze(ctx, kind, text)
	if err := res.Validate(); err != nil || res.Kind != kind {
		v.logger.Warn(ctx, "malformed analysis result, using fallback", "kind", string(kind), "error", err)
		return ai.Fallback(kind)
	}
	return res
}

// State returns a snapshot of the panel of kind.
func (v *NoteView) State(kind ai.Kind) FeatureState {
	v.mu.Lock()
	defer v.mu.Unlock()

	f, ok := v.features[kind]
	if !ok {
		return FeatureState{}
	}
	return FeatureState{Status: f.status, Visible: f.visible, Result: f.result}
}

// Note returns the note currently shown.
func (v *NoteView) Note() models.Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.note
}

// SetNote replaces the shown note. A different id resets every panel and
// drops in-flight analyses; the same id keeps cached results, which are
// re-applied to the new content.
func (v *NoteView) SetNote(note models.Note) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	if note.ID != v.note.ID {
		v.reset()
	}
	v.note = note
}

// Close tears the view down. Results arriving later are discarded.
func (v *NoteView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	v.gen++
	v.cancel()
}

// Annotated returns the note content marked with the results of kind when
// that panel is Ready and kind is marked inline.
func (v *NoteView) Annotated(kind ai.Kind) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.annotateLocked(v.note.Content, kind)
}

// Content returns the note content with every visible inline panel applied,
// glossary first.
func (v *NoteView) Content() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := v.note.Content
	for _, k := range []ai.Kind{ai.KindGlossary, ai.KindGrammar} {
		if f := v.features[k]; f != nil && f.visible {
			out = v.annotateLocked(out, k)
		}
	}
	return out
}

func (v *NoteView) annotateLocked(content string, kind ai.Kind) string {
	f, ok := v.features[kind]
	if !ok || f.status != Ready || f.result == nil {
		return content
	}

	switch kind {
	case ai.KindGlossary:
		return annotate.Annotate(content, annotate.FromGlossary(f.result.Glossary), annotate.Glossary)
	case ai.KindGrammar:
		return annotate.Annotate(content, annotate.FromGrammar(f.result.Grammar), annotate.Grammar)
	}
	return content
}
