package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"repitch/internal/api"
	"repitch/internal/preflight"
)

// level grades one line of a report.
type level int

const (
	levelInfo level = iota
	levelOK
	levelWarn
	levelFail
)

var levelTags = map[level]string{
	levelInfo: "INFO",
	levelOK:   "OK",
	levelWarn: "WARN",
	levelFail: "ERROR",
}

var levelColors = map[level]text.Colors{
	levelInfo: {text.FgBlue},
	levelOK:   {text.FgGreen},
	levelWarn: {text.FgYellow},
	levelFail: {text.FgRed},
}

const reportLabelWidth = 20

// report accumulates sectioned "label: [LEVEL] detail" lines for the status
// and config commands.
type report struct {
	color bool
	buf   strings.Builder
}

func newReport(w io.Writer) *report {
	return &report{color: isTerminal(w)}
}

func (r *report) section(title string) {
	if r.buf.Len() > 0 {
		r.buf.WriteByte('\n')
	}
	heading := "== " + strings.TrimSpace(title) + " =="
	r.emit(levelInfo, heading)
	r.emit(levelInfo, strings.Repeat("-", len(heading)))
}

func (r *report) line(label string, lvl level, detail string) {
	entry := fmt.Sprintf("  %-*s [%s]", reportLabelWidth, label+":", levelTags[lvl])
	if detail != "" {
		entry += " " + detail
	}
	r.emit(lvl, entry)
}

// item writes an ungraded, indented entry such as a search root.
func (r *report) item(value string) {
	r.buf.WriteString("  " + value + "\n")
}

func (r *report) server(status api.ServerStatus, reachable bool, bind string) {
	if !reachable {
		r.line("Server", levelWarn, "not running ("+bind+")")
		return
	}
	r.line("Server", levelOK, fmt.Sprintf("running on %s (pid %d)", status.Bind, status.PID))
}

// dependency grades a tool: missing optional tools warn, missing required
// tools fail.
func (r *report) dependency(dep api.DependencyStatus) {
	switch {
	case dep.Available:
		r.line(dep.Name, levelOK, dep.Command)
	case dep.Optional:
		r.line(dep.Name, levelWarn, joinNonEmpty(dep.Detail, "optional"))
	default:
		r.line(dep.Name, levelFail, dep.Detail)
	}
}

func (r *report) check(result preflight.Result) {
	lvl := levelOK
	if !result.Passed {
		lvl = levelFail
	}
	r.line(result.Name, lvl, result.Detail)
}

func (r *report) emit(lvl level, s string) {
	if r.color {
		s = levelColors[lvl].Sprint(s)
	}
	r.buf.WriteString(s)
	r.buf.WriteByte('\n')
}

func (r *report) String() string { return r.buf.String() }

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "; ")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
