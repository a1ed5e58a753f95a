package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/spanbase"
	"github.com/poiesic/spanbase/core"
	"github.com/poiesic/spanbase/storage"
)

var sentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"A gentle breeze rustled the leaves of the old oak tree.",
	"She found a hidden key in the dusty attic.",
	"The city skyline glowed under the starry night sky.",
	"Rain drummed on the rooftop all through the night.",
	"A bright comet streaked across the horizon at midnight.",
	"The ancient library held stories that never faded.",
	"The hummingbird hovered beside a vibrant purple flower.",
	"A mysterious map led them to a forgotten treasure.",
	"Sunlight filtered through curtains onto the wooden floor.",
	"The old clock chimed thirteen times in an abandoned town.",
	"A sudden thunderclap shattered the silence of the forest.",
	"The desert dunes shifted silently under a pale moon.",
	"A small kitten meowed softly and waited for warmth.",
	"A silver fox slipped past the fences into the twilight.",
	"The wind carried scents of jasmine from distant gardens.",
	"He built a wooden bridge across the swift river.",
	"A lone wolf howled into the vast night.",
	"The moon rose slowly and cast silver light on the lake.",
	"A child drew a rainbow with crayons on the sidewalk.",
	"The train rattled through tunnels carved into stone.",
	"A gentle snowfall blanketed the city in quiet white.",
	"The river carried leaves downstream like paper boats.",
	"The lighthouse beam cut through fog toward the harbor.",
	"A storm rolled in with thunder and lightning.",
	"The old house creaked as the wind blew through its windows.",
	"A small frog hopped onto a lily pad in the pond.",
	"The night sky glittered with countless stars.",
	"A soft breeze carried the scent of pine needles.",
	"The sky turned orange as the sun dipped below the horizon.",
	"The old bridge creaked as people crossed it at dawn.",
	"Coffee tastes better when nobody is watching.",
	"Seventeen geese unanimously voted to relocate the pond.",
	"Gravity works part time on weekends.",
	"Thursdays were canceled due to budget constraints.",
	"The cat debugged the production database at 3 AM.",
	"Time zones are a social construct that clocks reluctantly enforce.",
	"Documentation exists in a superposition until observed.",
	"Memory leaks formed a union.",
	"The edge case became the primary use case overnight.",
}

var (
	seedFileName = flag.String("src", "", "file of seed data, one sentence per line")
	dbPath       = flag.String("db", "./span_db", "path to BadgerDB database directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// contextFromLine splits a sentence on whitespace and records the character
// offset of each word, which is all a Context needs for span arithmetic.
// Real corpora arrive pre-tokenized; this is only seed data.
func contextFromLine(line string) *core.Context {
	var words []string
	var offsets []int

	inWord := false
	start := 0
	for i, r := range line {
		if r == ' ' || r == '\t' {
			if inWord {
				words = append(words, line[start:i])
				offsets = append(offsets, start)
				inWord = false
			}
			continue
		}
		if !inWord {
			start = i
			inWord = true
		}
	}
	if inWord {
		words = append(words, line[start:])
		offsets = append(offsets, start)
	}

	if len(words) == 0 {
		return nil
	}

	return core.NewContext(line, offsets, map[string][]string{
		core.WordsAttribute: words,
	})
}

// seedBatched reads from a source iterator and stores contexts in batches.
func seedBatched(ctx context.Context, repo storage.ContextRepository, source iter.Seq[string], batchSize int) (int, error) {
	total := 0
	batch := make([]*core.Context, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := repo.AddContexts(ctx, batch...); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for line := range source {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c := contextFromLine(line)
		if c == nil {
			continue
		}
		batch = append(batch, c)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

func main() {
	db, err := spanbase.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(sentences)
	}

	// Store in batches of 5
	total, err := seedBatched(ctx, db.ContextRepository(), source, 5)
	if err != nil {
		panic(err)
	}

	slog.Info("seeded contexts", "count", total, "db", *dbPath)
}
