package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/mir"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/prettyprinter"
)

const (
	historyFile = ".matchc_history"
	promptMain  = "match> "
	promptCont  = "  ...> "
	replFile    = "<repl>"
)

const replHelp = `Enter declarations or a match expression; the lowering plans are printed.
Unfinished input continues on the next line.
  :source   print the accumulated declarations
  :reset    forget earlier declarations
  :quit     exit
`

// session keeps the declarations entered so far so that later matches can
// use earlier patterns and types.
type session struct {
	cfg   *config.Config
	decls []string
}

// entry is what one accepted input produced, without the plans and
// diagnostics belonging to earlier declarations.
type entry struct {
	ctx         *pipeline.PipelineContext
	plans       []mir.MatchLoweringPlan
	diagnostics []diagnostics.Diagnostic
}

// eval compiles the accumulated declarations plus input. It returns nil
// when input is unfinished so the caller can read more.
func (s *session) eval(input string) *entry {
	prefix := ""
	if len(s.decls) > 0 {
		prefix = strings.Join(s.decls, "\n") + "\n"
	}
	ctx := backend.NewPipeline().Run(pipeline.NewContext(replFile, prefix+input, s.cfg))
	if ctx.Incomplete {
		return nil
	}
	e := &entry{ctx: ctx}
	offset := len(prefix)
	for _, p := range ctx.Plans() {
		if p.Span.Start >= offset {
			e.plans = append(e.plans, p)
		}
	}
	for _, d := range ctx.Report() {
		if d.Span.Start >= offset {
			e.diagnostics = append(e.diagnostics, d)
		}
	}
	if !ctx.Diagnostics.HasErrors() && !isMatchInput(input) {
		s.decls = append(s.decls, input)
	}
	return e
}

// isMatchInput reports whether input is a bare expression rather than a
// declaration worth keeping.
func isMatchInput(input string) bool {
	head := strings.TrimSpace(input)
	for _, kw := range []string{"fn ", "pattern ", "type ", "pub ", "@", "module ", "use "} {
		if strings.HasPrefix(head, kw) {
			return false
		}
	}
	return true
}

func (a *app) repl(ctx context.Context, args []string) error {
	var c commonFlags
	fs := a.flagSet("repl", &c)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := a.setup(&c)
	if err != nil {
		return err
	}
	cfg.InlineOwner = replFile
	s := &session{cfg: cfg}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(a.stdout, "matchc "+Version+" REPL. Type :help for commands.")
	var buf strings.Builder
	for ctx.Err() == nil {
		prompt := promptMain
		if buf.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			buf.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.stdout)
			return nil
		}
		if err != nil {
			return err
		}

		if buf.Len() == 0 {
			switch strings.TrimSpace(line) {
			case "":
				continue
			case ":quit", ":q":
				return nil
			case ":help":
				fmt.Fprint(a.stdout, replHelp)
				continue
			case ":reset":
				s.decls = nil
				continue
			case ":source":
				fmt.Fprintln(a.stdout, strings.Join(s.decls, "\n"))
				continue
			}
		} else {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		e := s.eval(buf.String())
		if e == nil {
			continue
		}
		ln.AppendHistory(buf.String())
		buf.Reset()
		f := a.formatter()
		f.AddSource(replFile, e.ctx.SourceCode)
		f.FormatAll(e.diagnostics)
		fmt.Fprint(a.stdout, prettyprinter.PrintPlans(e.plans))
	}
	return nil
}
