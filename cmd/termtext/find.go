package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/hnimtadd/termtext"
	"github.com/hnimtadd/termtext/config"
	"github.com/hnimtadd/termtext/terminal/search"
)

const (
	regexFlag         = "regex"
	caseSensitiveFlag = "case-sensitive"
	wholeWordFlag     = "whole-word"
	backwardFlag      = "backward"
	allFlag           = "all"
	limitFlag         = "limit"
	colsFlag          = "cols"
	rowsFlag          = "rows"
	scrollbackFlag    = "scrollback"
)

func matchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    regexFlag,
			Aliases: []string{"e"},
			Usage:   "treat TERM as an ECMAScript regular expression",
		},
		&cli.BoolFlag{
			Name:    caseSensitiveFlag,
			Aliases: []string{"s"},
			Usage:   "match case",
		},
		&cli.BoolFlag{
			Name:    wholeWordFlag,
			Aliases: []string{"w"},
			Usage:   "only match whole words",
		},
	}
}

func findCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "print the matches of TERM in the terminal rows the files print to",
		ArgsUsage: "TERM FILE...",
		Flags: append(matchFlags(),
			&cli.BoolFlag{
				Name:    backwardFlag,
				Aliases: []string{"b"},
				Usage:   "list matches bottom up",
			},
			&cli.BoolFlag{
				Name:    allFlag,
				Aliases: []string{"a"},
				Usage:   "highlight every match and print the rows holding them",
			},
			&cli.IntFlag{
				Name:    limitFlag,
				Aliases: []string{"n"},
				Usage:   "stop after this many matches (default search.highlight_limit)",
			},
			&cli.IntFlag{
				Name:  colsFlag,
				Usage: "terminal width (default terminal.cols)",
			},
			&cli.IntFlag{
				Name:  rowsFlag,
				Usage: "terminal height (default terminal.rows)",
			},
			&cli.IntFlag{
				Name:  scrollbackFlag,
				Usage: "rows kept above the screen (default terminal.scrollback)",
			},
		),
		Action: runFind,
	}
}

func searchOptions(c *cli.Context) search.Options {
	return search.Options{
		Regex:         c.Bool(regexFlag),
		CaseSensitive: c.Bool(caseSensitiveFlag),
		WholeWord:     c.Bool(wholeWordFlag),
	}
}

// findConfig applies the size flags over the loaded configuration.
func findConfig(c *cli.Context) (*config.Config, error) {
	cfg := *configFrom(c)
	for flag, dst := range map[string]*int{
		colsFlag:       &cfg.Terminal.Cols,
		rowsFlag:       &cfg.Terminal.Rows,
		scrollbackFlag: &cfg.Terminal.Scrollback,
		limitFlag:      &cfg.Search.HighlightLimit,
	} {
		if c.IsSet(flag) {
			*dst = c.Int(flag)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runFind(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("expected TERM and at least one FILE")
	}
	query := c.Args().First()
	cfg, err := findConfig(c)
	if err != nil {
		return err
	}
	log := loggerFrom(c)

	term, err := termtext.NewFromConfig(cfg, log, nil)
	if err != nil {
		return err
	}
	defer term.Close()

	for _, path := range c.Args().Tail() {
		data, err := readInput(path, c.App.Reader)
		if err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			data = append(data, '\r', '\n')
		}
		if _, err := term.Write(data); err != nil {
			return err
		}
		log.Debug("loaded input", "path", path, "bytes", len(data))
	}

	opts := searchOptions(c)
	if c.Bool(allFlag) {
		return highlightAll(c.App.Writer, term, query, opts, cfg, c.Bool(backwardFlag))
	}

	results, err := listMatches(term.Search(), query, opts, term.Buffer().Cols(), cfg.Search.HighlightLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return cli.Exit("no match", 1)
	}
	if c.Bool(backwardFlag) {
		slices.Reverse(results)
	}
	for _, r := range results {
		fmt.Fprintf(c.App.Writer, "%d:%d+%d\t%s\n", r.Row, r.Col, r.Size, r.Term)
	}
	return nil
}

// listMatches walks the buffer from the top, the same way the highlight
// pass does, and returns at most limit matches.
func listMatches(engine *search.Engine, query string, opts search.Options, cols, limit int) ([]search.Result, error) {
	var results []search.Result
	row, col := 0, 0
	for len(results) < limit {
		res, err := engine.FindFrom(query, row, col, opts)
		if err != nil {
			return nil, err
		}
		if res == nil {
			break
		}
		results = append(results, *res)
		if res.Col+res.Size >= cols {
			row, col = res.Row+1, 0
		} else {
			row, col = res.Row, res.Col+1
		}
	}
	return results, nil
}

// highlightAll runs a decorated search, which selects the first match in
// the chosen direction, and prints the decorated rows.
func highlightAll(w io.Writer, term *termtext.Terminal, query string, opts search.Options, cfg *config.Config, backward bool) error {
	deco, err := cfg.Search.Decorations.Options()
	if err != nil {
		return err
	}
	opts.Decorations = deco

	engine := term.Search()
	sub := engine.OnDidChangeResults(func(ev search.ResultsEvent) {
		fmt.Fprintf(w, "match %d of %d\n", ev.ResultIndex+1, ev.ResultCount)
	})
	defer sub.Dispose()

	find := engine.FindNext
	if backward {
		find = engine.FindPrevious
	}
	found, err := find(query, opts)
	if err != nil {
		return err
	}
	if !found {
		return cli.Exit("no match", 1)
	}
	return renderMatches(w, term.Buffer(), engine.Results(), deco)
}
