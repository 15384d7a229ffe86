package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/hnimtadd/termtext"
	"github.com/hnimtadd/termtext/logger"
	"github.com/hnimtadd/termtext/terminal/search"
)

const metricsAddrFlag = "metrics-addr"

func followCommand() *cli.Command {
	return &cli.Command{
		Name:      "follow",
		Usage:     "tail FILE and print the match count of TERM each time it changes",
		ArgsUsage: "TERM FILE",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  metricsAddrFlag,
				Usage: "serve prometheus metrics on this address, e.g. :9090",
			},
		}, matchFlags()...),
		Action: runFollow,
	}
}

func runFollow(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected TERM and FILE")
	}
	cfg := configFrom(c)
	log := loggerFrom(c)

	reg := prometheus.NewRegistry()
	term, err := termtext.NewFromConfig(cfg, log, search.NewMetrics(reg))
	if err != nil {
		return err
	}
	defer term.Close()

	if addr := c.String(metricsAddrFlag); addr != "" {
		mux := &http.ServeMux{}
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics endpoint failed", "addr", addr, "error", err)
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", "addr", addr)
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	f := &follower{
		path:  c.Args().Get(1),
		query: c.Args().First(),
		opts:  searchOptions(c),
		term:  term,
		out:   &syncWriter{w: c.App.Writer},
		log:   log,
	}
	f.opts.Decorations, err = cfg.Search.Decorations.Options()
	if err != nil {
		return err
	}
	return f.run(ctx)
}

// syncWriter serializes writes from the search engine's timer callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// follower feeds the growth of a file into a terminal. Highlights are kept
// up to date by the search engine's debounced refresh.
type follower struct {
	path   string
	query  string
	opts   search.Options
	term   *termtext.Terminal
	out    io.Writer
	log    logger.Logger
	offset int64
}

func (f *follower) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(f.path); err != nil {
		return fmt.Errorf("watch %s: %w", f.path, err)
	}

	engine := f.term.Search()
	sub := engine.OnDidChangeResults(func(ev search.ResultsEvent) {
		fmt.Fprintf(f.out, "match %d of %d\n", ev.ResultIndex+1, ev.ResultCount)
	})
	defer sub.Dispose()

	if err := f.readMore(); err != nil {
		return err
	}
	if _, err := engine.FindNext(f.query, f.opts); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			f.log.Debug("file event", "name", event.Name, "op", event.Op.String())
			if event.Op&fsnotify.Remove == fsnotify.Remove || event.Op&fsnotify.Rename == fsnotify.Rename {
				return fmt.Errorf("%s was removed", f.path)
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				if err := f.readMore(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", f.path, err)
		}
	}
}

// readMore writes what was appended to the file since the last read. A
// file that shrank is read again from the start.
func (f *follower) readMore() error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < f.offset {
		f.log.Info("file truncated, reading from the start", "path", f.path)
		f.offset = 0
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	start := f.offset
	f.offset += int64(len(data))
	if start == 0 {
		data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	}
	if len(data) == 0 {
		return nil
	}
	_, err = f.term.Write(data)
	return err
}
