package match

import "github.com/matcha-sh/matcha/internal/logger"

// Session caches the most recent match set so that typing one more
// character re-filters instead of re-invoking every generator. The
// optimization must be invisible: results are identical to full
// regeneration, and a volatile set or a changed command word disables
// it.
type Session struct {
	pipeline *Pipeline
	log      *logger.Logger

	prevValid   bool
	prevCommand string
	prevWord    string
	prevSet     *Builder
}

// NewSession wraps a pipeline with the reuse optimization.
func NewSession(pipeline *Pipeline, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{pipeline: pipeline, log: log}
}

// Complete runs the pipeline for the end word, regenerating through
// regen only when the previous set cannot be reused.
func (s *Session) Complete(command, endWord string, regen func() *Builder) Result {
	if s.reusable(command, endWord) {
		s.log.Debug().Str("word", endWord).Msg("reusing previous match set")
		s.prevWord = endWord
		return s.pipeline.Run(endWord, s.prevSet)
	}

	set := regen()
	s.prevValid = set != nil && !set.Volatile()
	s.prevCommand = command
	s.prevWord = endWord
	s.prevSet = set

	return s.pipeline.Run(endWord, set)
}

// reusable reports whether the cached set can answer the new request:
// same command word, previous end word is a prefix of the new one, and
// no generator vetoed reuse.
func (s *Session) reusable(command, endWord string) bool {
	if !s.prevValid || s.prevSet == nil {
		return false
	}
	if command != s.prevCommand {
		return false
	}
	// A pre-filtered set only covers the exact word it was built for.
	if s.prevSet.PrefixIncluded() && endWord != s.prevWord {
		return false
	}
	return s.pipeline.opts.Case.hasPrefix(endWord, s.prevWord)
}

// Invalidate drops the cached set, e.g. when the edit session ends.
func (s *Session) Invalidate() {
	s.prevValid = false
	s.prevSet = nil
}
