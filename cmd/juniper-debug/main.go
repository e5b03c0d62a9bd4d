// Command juniper-debug is a manual debugging harness: it parses a
// small prefix-notation query via the debug-only parser of §7 ("no
// query parsing beyond a small debug-only prefix parser"), matches it
// against a document given on stdin or via -doc, and prints the
// relevance, teaser and (optionally) the HTML match log.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"
	sglog "github.com/sourcegraph/log"

	"github.com/sourcegraph/juniper/config"
	"github.com/sourcegraph/juniper/engine"
	"github.com/sourcegraph/juniper/querytree"
	"github.com/sourcegraph/juniper/rewrite"
	"github.com/sourcegraph/juniper/token"
)

func main() {
	liblog := sglog.Init(sglog.Resource{Name: "juniper-debug"})
	defer liblog.Sync()

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("juniper-debug", flag.ExitOnError)
	query := fs.String("query", "", "debug prefix query, e.g. AND(fox,jumps)")
	doc := fs.String("doc", "", "document text (reads stdin if empty)")
	opts := fs.String("options", "", "option string, e.g. priv.1_log.7")
	lang := fs.Int("lang", rewrite.DefaultLangID, "language id for Match Object expansion")
	showLog := fs.Bool("log", false, "print the HTML match log")

	cmd := &ffcli.Command{
		Name:       "juniper-debug",
		ShortUsage: "juniper-debug -query '<prefix query>' [-doc '<text>'] [-options '<opts>']",
		ShortHelp:  "match and tease a document against a debug-syntax query",
		FlagSet:    fs,
		Exec: func(ctx context.Context, _ []string) error {
			return exec(*query, *doc, *opts, *lang, *showLog)
		},
	}
	return cmd.ParseAndRun(context.Background(), args)
}

func exec(queryStr, docStr, optsStr string, lang int, showLog bool) error {
	if queryStr == "" {
		return fmt.Errorf("juniper-debug: -query is required")
	}
	if docStr == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("juniper-debug: reading stdin: %w", err)
		}
		docStr = string(b)
	}

	log := sglog.Scoped("juniper-debug", "")
	registry := rewrite.NewRegistry()
	builder := querytree.NewBuilder(registry)
	if err := ParseDebugQuery(queryStr, builder); err != nil {
		return err
	}
	tree := builder.Finish(0, 0)

	f := engine.NewFactory(registry, config.Default(), log, nil)
	qh := f.NewQueryHandle(tree, optsStr)
	r := qh.NewResult(lang)

	for i, w := range strings.Fields(docStr) {
		start := strings.Index(docStr, w)
		r.Feed(token.Token{
			Text:    []rune(w),
			Bytes:   []byte(w),
			BytePos: uint32(start),
			ByteLen: uint32(len(w)),
			WordPos: uint32(i),
		})
	}
	r.Flush()

	fmt.Printf("relevance: %d\n", r.GetRelevancy())
	fmt.Printf("teaser: %s\n", r.GetTeaser([]byte(docStr)))
	if showLog {
		fmt.Println(r.GetLog())
	}
	return nil
}
