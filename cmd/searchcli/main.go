// Command searchcli builds an index over a corpus directory and answers
// queries read from standard input, one per line. Type "exit" to quit.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/karthikrangan/irengine/internal/corpus"
	"github.com/karthikrangan/irengine/internal/indexer"
	"github.com/karthikrangan/irengine/internal/indexer/analyzer"
	"github.com/karthikrangan/irengine/internal/searcher/evaluator"
	"github.com/karthikrangan/irengine/internal/searcher/parser"
	"github.com/karthikrangan/irengine/pkg/config"
	"github.com/karthikrangan/irengine/pkg/logger"
)

func main() {
	corpusDir := flag.String("corpus", "corpus", "directory of .txt documents to index")
	stopWordsFile := flag.String("stopwords", "", "stop-word file, one word per line (built-in set when empty)")
	snapshotPath := flag.String("snapshot", "", "index snapshot path (skip to rebuild every run)")
	workers := flag.Int("workers", 0, "index build workers (0 means GOMAXPROCS)")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	logger.Setup(*logLevel, "text")

	var stopWords map[string]struct{}
	if *stopWordsFile != "" {
		var err error
		stopWords, err = analyzer.LoadStopWords(*stopWordsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load stop words: %v\n", err)
			os.Exit(1)
		}
	} else {
		stopWords = analyzer.DefaultStopWords()
	}
	an := analyzer.New(stopWords)

	docs, err := corpus.Load(*corpusDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load corpus: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	engine := indexer.NewEngine(config.IndexerConfig{
		SnapshotPath: *snapshotPath,
		BuildWorkers: *workers,
	}, an)
	if err := engine.Open(ctx, docs); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build index: %v\n", err)
		os.Exit(1)
	}
	ix, err := engine.Index()
	if err != nil {
		fmt.Fprintf(os.Stderr, "index unavailable: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("indexed %d documents, %d terms\n", ix.DocCount(), ix.TermCount())

	qp := parser.New(an)
	ev := evaluator.New(ix)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("query> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}

		expr, err := qp.Parse(line)
		if err != nil {
			var parseErr *parser.ParseError
			if errors.As(err, &parseErr) {
				fmt.Printf("invalid query: %s\n", parseErr.Message)
			} else {
				fmt.Printf("invalid query: %v\n", err)
			}
			continue
		}
		docSet, err := ev.Evaluate(expr)
		if err != nil {
			slog.Error("evaluation failed", "query", line, "error", err)
			continue
		}
		ids := docSet.Sorted()
		if len(ids) == 0 {
			fmt.Println("no matches")
			continue
		}
		fmt.Printf("%d matches: %s\n", len(ids), strings.Join(ids, ", "))
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", err)
		os.Exit(1)
	}
}
