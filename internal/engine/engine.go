// Package engine wires the line model, generators, grammars and the
// match pipeline into one completion entry point for a line editor.
package engine

import (
	"github.com/matcha-sh/matcha/internal/argmatcher"
	"github.com/matcha-sh/matcha/internal/config"
	"github.com/matcha-sh/matcha/internal/generator"
	"github.com/matcha-sh/matcha/internal/line"
	"github.com/matcha-sh/matcha/internal/logger"
	"github.com/matcha-sh/matcha/internal/match"
	"github.com/matcha-sh/matcha/internal/sched"
)

// Generator priorities. Lower runs first; the file generator is the
// fallback of last resort.
const (
	PriorityGrammar = 25
	PriorityScript  = 50
	PriorityFile    = 100
)

// Engine is one edit session's completion pipeline.
type Engine struct {
	settings  *config.Settings
	grammars  *argmatcher.Registry
	argEngine *argmatcher.Engine
	gens      *generator.Registry
	session   *match.Session
	scheduler *sched.Scheduler
	log       *logger.Logger
}

// New assembles an engine from settings. A nil settings uses the
// defaults; grammarDir may be empty.
func New(settings *config.Settings, grammarDir string, log *logger.Logger) *Engine {
	if settings == nil {
		settings = config.Default()
	}
	if log == nil {
		log = logger.Nop()
	}

	grammars := argmatcher.NewRegistry()
	if grammarDir != "" {
		for _, err := range grammars.LoadDir(grammarDir) {
			log.Warn().Err(err).Msg("skipping broken grammar")
		}
	}

	argEngine := argmatcher.NewEngine(grammars, log)
	gens := generator.NewRegistry(settings.CaseSensitive(), log)
	gens.Add(PriorityGrammar, argEngine)
	gens.Add(PriorityFile, generator.NewFileGenerator(nil))

	pipeline := match.NewPipeline(settings.PipelineOptions(), log)

	return &Engine{
		settings:  settings,
		grammars:  grammars,
		argEngine: argEngine,
		gens:      gens,
		session:   match.NewSession(pipeline, log),
		scheduler: sched.New(settings.Sched.ThrottleAfter, settings.Sched.ThrottleFloor, log),
		log:       log,
	}
}

// Grammars exposes the grammar registry so hosts and scripts can
// register matchers at runtime.
func (e *Engine) Grammars() *argmatcher.Registry { return e.grammars }

// Generators exposes the generator registry for external generators.
func (e *Engine) Generators() *generator.Registry { return e.gens }

// Scheduler exposes the background task scheduler; the embedding
// editor drives it from its idle loop.
func (e *Engine) Scheduler() *sched.Scheduler { return e.scheduler }

// Spawn schedules a background task at the configured default resume
// interval. onDone may be nil.
func (e *Engine) Spawn(t sched.Task, onDone func(error)) *sched.Handle {
	return e.scheduler.Spawn(t, sched.Options{
		Interval: e.settings.Sched.DefaultInterval,
		OnDone:   onDone,
	})
}

// Complete produces ranked candidates for the line text and cursor.
func (e *Engine) Complete(text string, cursor int) match.Result {
	ls := line.Parse(text, cursor)
	e.gens.ApplyWordBreaks(ls)

	if !e.settings.Reuse.Enabled {
		e.session.Invalidate()
	}

	return e.session.Complete(ls.CommandWord(), ls.EndWord(line.Unquoted), func() *match.Builder {
		return e.gens.Generate(ls)
	})
}

// Classify returns word index to classification code for the renderer.
func (e *Engine) Classify(text string, cursor int) map[int]string {
	ls := line.Parse(text, cursor)
	return e.gens.Classify(ls)
}

// EndSession closes out the edit session: cached match sets are
// dropped, delayed grammar init re-arms, and outstanding background
// tasks are canceled unless marked run-to-completion.
func (e *Engine) EndSession() {
	e.session.Invalidate()
	e.argEngine.ResetSession()
	e.scheduler.Close()
}
