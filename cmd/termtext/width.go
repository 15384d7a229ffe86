package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/width"

	"github.com/hnimtadd/termtext/terminal/grapheme"
)

const (
	unicodeFlag       = "unicode"
	ambiguousWideFlag = "ambiguous-wide"
	fileFlag          = "file"
)

func widthCommand() *cli.Command {
	return &cli.Command{
		Name:      "width",
		Usage:     "show how TEXT is split into cells and how wide each one is",
		ArgsUsage: "TEXT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    unicodeFlag,
				Aliases: []string{"u"},
				Usage:   "unicode provider, one of " + strings.Join(grapheme.Versions(), ", ") + " (default unicode.version)",
			},
			&cli.BoolFlag{
				Name:  ambiguousWideFlag,
				Usage: "make East Asian ambiguous characters wide (default unicode.ambiguous_wide)",
			},
			&cli.StringFlag{
				Name:      fileFlag,
				Aliases:   []string{"f"},
				Usage:     "read TEXT from a file, - for stdin",
				TakesFile: true,
			},
		},
		Action: runWidth,
	}
}

func runWidth(c *cli.Context) error {
	cfg := *configFrom(c)
	if c.IsSet(unicodeFlag) {
		cfg.Unicode.Version = c.String(unicodeFlag)
	}
	if c.IsSet(ambiguousWideFlag) {
		cfg.Unicode.AmbiguousWide = c.Bool(ambiguousWideFlag)
	}
	provider, err := cfg.Provider(loggerFrom(c))
	if err != nil {
		return err
	}

	var text string
	switch {
	case c.IsSet(fileFlag):
		data, err := readInput(c.String(fileFlag), c.App.Reader)
		if err != nil {
			return err
		}
		text = string(data)
	case c.NArg() == 1:
		text = c.Args().First()
	default:
		return fmt.Errorf("expected TEXT or --%s", fileFlag)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLUSTER\tCODEPOINTS\tWIDTH\tUNISEG\tKIND")
	total, totalUniseg := 0, 0
	for _, cluster := range grapheme.Segment(provider, text) {
		var cps []string
		for _, r := range cluster.Text {
			cps = append(cps, fmt.Sprintf("U+%04X", r))
		}
		r, _ := utf8.DecodeRuneInString(cluster.Text)
		ref := uniseg.StringWidth(cluster.Text)
		fmt.Fprintf(tw, "%q\t%s\t%d\t%d\t%s\n",
			cluster.Text, strings.Join(cps, " "), cluster.Width, ref, width.LookupRune(r).Kind())
		total += cluster.Width
		totalUniseg += ref
	}
	fmt.Fprintf(tw, "total\t\t%d\t%d\t\n", total, totalUniseg)
	return tw.Flush()
}
