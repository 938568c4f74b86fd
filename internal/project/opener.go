package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SourceExtensions are tried in order; the first one with a match wins.
var SourceExtensions = []string{".java", ".kt"}

// Reporter receives user-visible status text.
type Reporter interface {
	Report(message string)
}

// Launcher opens one file for the user.
type Launcher interface {
	Launch(ctx context.Context, path string) error
}

// EditorLauncher runs an editor command line with the file path appended,
// e.g. "code -g" or "idea".
type EditorLauncher struct {
	Command string
}

func (l EditorLauncher) Launch(ctx context.Context, path string) error {
	fields := strings.Fields(l.Command)
	if len(fields) == 0 {
		return errors.New("project: empty editor command")
	}
	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "project: run editor %q", l.Command)
	}
	return nil
}

// PrintLauncher writes the path so the caller can pipe it elsewhere.
type PrintLauncher struct {
	Out io.Writer
}

func (l PrintLauncher) Launch(_ context.Context, path string) error {
	_, err := fmt.Fprintln(l.Out, path)
	return errors.Wrap(err, "project: print path")
}

// NewLauncher picks an EditorLauncher when editor is set, a PrintLauncher otherwise.
func NewLauncher(editor string, out io.Writer) Launcher {
	if strings.TrimSpace(editor) != "" {
		return EditorLauncher{Command: editor}
	}
	return PrintLauncher{Out: out}
}

// Opener finds the source file of a class by its simple name and opens it.
// The index is built lazily on the first lookup.
type Opener struct {
	root     string
	launcher Launcher
	reporter Reporter

	once     sync.Once
	index    *Index
	indexErr error
}

// NewOpener creates an Opener for the project rooted at root.
func NewOpener(root string, launcher Launcher, reporter Reporter) *Opener {
	return &Opener{root: root, launcher: launcher, reporter: reporter}
}

// OpenSource opens every file named simpleName plus the first source extension
// that has a match in the project.
func (o *Opener) OpenSource(ctx context.Context, simpleName string) {
	idx, err := o.loadIndex(ctx)
	if err != nil {
		log.Error().Err(err).Str("root", o.root).Msg("project: could not index sources")
		o.reporter.Report(fmt.Sprintf("Could not index project %s", o.root))
		return
	}

	names := make([]string, 0, len(SourceExtensions))
	var found []string
	for _, ext := range SourceExtensions {
		name := simpleName + ext
		names = append(names, name)
		paths, err := idx.Lookup(ctx, name)
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("project: lookup failed")
			continue
		}
		if len(paths) > 0 {
			found = paths
			break
		}
		log.Info().Str("file", name).Msg("project: no file with this name")
	}
	if len(found) == 0 {
		o.reporter.Report(fmt.Sprintf("Could not find %s in project", strings.Join(names, " or ")))
		return
	}
	if len(found) > 1 {
		log.Warn().Strs("files", found).Msg("project: found more than one file")
	}
	for _, path := range found {
		log.Info().Str("file", path).Msg("project: opening file")
		if err := o.launcher.Launch(ctx, path); err != nil {
			log.Error().Err(err).Str("file", path).Msg("project: open failed")
			o.reporter.Report(fmt.Sprintf("Could not open %s", path))
		}
	}
}

func (o *Opener) loadIndex(ctx context.Context) (*Index, error) {
	o.once.Do(func() {
		o.index, o.indexErr = BuildIndex(ctx, o.root, SourceExtensions)
	})
	return o.index, o.indexErr
}

// Close releases the index if one was built.
func (o *Opener) Close() error {
	return o.index.Close()
}
