package graph

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/san"
)

// BuildStats counts what happened to the records of one build.
type BuildStats struct {
	Added      int
	Skipped    int
	Duplicates int
	Warnings   int
}

// BuildOpeningTree merges games into a new tree. A game that fails to replay
// is logged and skipped; it never aborts the build.
func BuildOpeningTree(cfg OpeningConfig, games []records.Game, log zerolog.Logger) (*OpeningTree, BuildStats, error) {
	var stats BuildStats
	t, err := NewOpeningTree(cfg)
	if err != nil {
		return nil, stats, err
	}
	log = log.With().Str("tree", cfg.Name).Logger()
	for i := range games {
		g := &games[i]
		steps, err := t.AddGame(g)
		if err != nil {
			stats.Skipped++
			log.Warn().Err(err).Str("game", g.Key()).Msg("skipping game")
			continue
		}
		stats.Added++
		for _, s := range steps {
			if s.Warning != nil {
				stats.Warnings++
				log.Debug().Err(s.Warning).Str("game", g.Key()).Msg("ambiguous move")
			}
		}
	}
	log.Info().
		Int("games", stats.Added).
		Int("skipped", stats.Skipped).
		Int("nodes", t.Len()).
		Msg("opening tree built")
	return t, stats, nil
}

// BuildStudyTree replays every chapter of a study. A chapter that fails is
// logged and skipped; duplicates are counted and ignored.
func BuildStudyTree(study *records.Study, resolver *san.Resolver, log zerolog.Logger) (*StudyTree, BuildStats, error) {
	var stats BuildStats
	color, err := study.Color()
	if err != nil {
		return nil, stats, err
	}
	t, err := NewStudyTree(study.Name, color, "", resolver)
	if err != nil {
		return nil, stats, err
	}
	log = log.With().Str("study", study.Name).Logger()
	for i := range study.Studies {
		ch := &study.Studies[i]
		warnings, err := t.AddChapter(ch)
		switch {
		case errors.Is(err, ErrDuplicateChapter):
			stats.Duplicates++
			log.Debug().Str("chapter", ch.Event).Msg("study already in")
			continue
		case err != nil:
			stats.Skipped++
			log.Warn().Err(err).Str("chapter", ch.Event).Msg("skipping chapter")
			continue
		}
		stats.Added++
		stats.Warnings += len(warnings)
		for _, w := range warnings {
			log.Warn().Err(w).Str("chapter", ch.Event).Msg("ambiguous move")
		}
	}
	log.Info().
		Int("chapters", stats.Added).
		Int("skipped", stats.Skipped).
		Int("duplicates", stats.Duplicates).
		Int("nodes", t.Len()).
		Int("testable", len(t.TestableNodes())).
		Msg("study tree built")
	return t, stats, nil
}
