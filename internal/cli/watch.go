package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/roach88/cscript/internal/journal"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Debounce  time.Duration
	NoJournal bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild sources as they change",
		Long: `Build the project, then watch it and rebuild every source file that is
written or created. Only files with one of watch.extensions that the
include and exclude settings select are rebuilt; directories named in
watch.ignore are not watched. Stop with Ctrl+C.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 100*time.Millisecond, "wait this long after a change before rebuilding")
	cmd.Flags().BoolVar(&opts.NoJournal, "no-journal", false, "do not record builds in the journal")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	proj, err := opts.loadProject()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrorCode(err), err)
	}
	if opts.NoJournal {
		proj.cfg.Journal.Enabled = false
	}

	j, err := proj.openJournal()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, err)
	}
	if j != nil {
		defer j.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := proj.watch(ctx, j, formatter, opts.Debounce, nil); err != nil {
		return formatter.Fail(GetExitCode(err), ErrorCode(err), err)
	}
	return nil
}

// watch builds every source once, then rebuilds changed sources until ctx
// is done. ready, when not nil, is closed once the watcher is armed.
func (p *project) watch(ctx context.Context, j *journal.Journal, formatter *OutputFormatter, debounce time.Duration, ready chan<- struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWatch, err)
	}
	defer w.Close()

	if err := p.addWatchDirs(w, p.root); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWatch, err)
	}

	sources, err := p.findSources()
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeRead, err)
	}
	if len(sources) > 0 {
		if err := p.rebuild(ctx, j, sources, formatter); err != nil {
			return err
		}
	}
	if formatter.Format != "json" {
		fmt.Fprintf(formatter.Writer, "Watching %s for changes (Ctrl+C to stop)\n", p.root)
	}
	if ready != nil {
		close(ready)
	}

	pending := treeset.NewWithStringComparator()
	var flush <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := p.addWatchDirs(w, ev.Name); err != nil {
						formatter.VerboseLog("cannot watch %s: %v", ev.Name, err)
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || !p.watched(ev.Name) {
				continue
			}
			formatter.VerboseLog("changed: %s", ev.Name)
			pending.Add(ev.Name)
			flush = time.After(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			_ = formatter.Error(ErrCodeWatch, err.Error(), nil)

		case <-flush:
			flush = nil
			files := make([]string, 0, pending.Size())
			for _, v := range pending.Values() {
				files = append(files, v.(string))
			}
			pending.Clear()
			if err := p.rebuild(ctx, j, files, formatter); err != nil {
				return err
			}
		}
	}
}

// rebuild runs one build and reports it. Failing files are reported but do
// not end the watch.
func (p *project) rebuild(ctx context.Context, j *journal.Journal, files []string, formatter *OutputFormatter) error {
	result, err := p.build(ctx, j, files, formatter)
	if err != nil {
		return err
	}
	if formatter.Format == "json" {
		_ = outputBuildJSON(formatter, result)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "Rebuilt %d file(s), %d failed\n", result.Total, result.Failed)
	return nil
}

// addWatchDirs adds dir and every directory below it that is not ignored.
// fsnotify watches are not recursive.
func (p *project) addWatchDirs(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != p.root && p.ignoredDir(path) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func (p *project) ignoredDir(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || slices.Contains(p.cfg.Watch.Ignore, name) {
		return true
	}
	if path == p.resolve(p.cfg.CompilerOptions.OutDir) {
		return true
	}
	rel, err := filepath.Rel(p.root, path)
	return err == nil && p.excludedDir(filepath.ToSlash(rel))
}

// watched reports whether a change to path triggers a rebuild.
func (p *project) watched(path string) bool {
	if !slices.Contains(p.cfg.Watch.Extensions, filepath.Ext(path)) {
		return false
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	return matchAny(p.cfg.Include, rel) && !matchAny(p.cfg.Exclude, rel)
}
