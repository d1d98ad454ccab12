package filelogger

// logx.LoggerX implementation writing timestamped, section-tagged lines,
// with ANSI level colors when the destination is a terminal.

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"

	"github.com/mikedilger/mime-multipart/lib/logx"
)

type Color int

const (
	ColorAuto Color = iota
	ColorOn
	ColorOff
)

var lvlNames = [logx.LevelCount]string{
	"DEBUG", "INFO", "NOTICE", "WARN", "ERROR", "CRITICAL",
}

var lvlColors = [logx.LevelCount]string{
	"\033[90m",   // DEBUG gray
	"\033[36m",   // INFO cyan
	"\033[32m",   // NOTICE green
	"\033[33m",   // WARN yellow
	"\033[31m",   // ERROR red
	"\033[31;1m", // CRITICAL bright red
}

func lvlName(lvl logx.Level) string {
	if lvl >= 0 && lvl < logx.LevelCount {
		return lvlNames[lvl]
	}
	return "???"
}

func lvlColor(lvl logx.Level) string {
	if lvl >= 0 && lvl < logx.LevelCount {
		return lvlColors[lvl]
	}
	return "\033[0m"
}

var _ logx.LoggerX = (*FileLogger)(nil)

type FileLogger struct {
	mu    sync.Mutex
	s     splitter
	lvl   logx.Level
	color bool
}

func NewFileLogger(f *os.File, lvl logx.Level, color Color) (*FileLogger, error) {
	usecolor := false
	switch color {
	case ColorAuto:
		usecolor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	case ColorOn:
		usecolor = true
	}

	l := &FileLogger{lvl: lvl, color: usecolor}
	if usecolor {
		l.s.w = bufio.NewWriter(colorable.NewColorable(f))
	} else {
		l.s.w = bufio.NewWriter(colorable.NewNonColorable(f))
	}
	return l, nil
}

// assembles per-line prefix. mu must be held
func (l *FileLogger) prepare(section string, lvl logx.Level) {
	l.s.reset()
	t := time.Now().Format("2006-01-02 15:04:05.000000")
	if l.color {
		fmt.Fprintf(&l.s.p, "\033[90m%s\033[0m %s[%s]\033[0m %s: ",
			t, lvlColor(lvl), lvlName(lvl), section)
	} else {
		fmt.Fprintf(&l.s.p, "%s [%s] %s: ", t, lvlName(lvl), section)
	}
}

func (l *FileLogger) Level() logx.Level {
	return l.lvl
}

func (l *FileLogger) LogPrintX(
	section string, lvl logx.Level, v ...interface{}) {

	if lvl < l.lvl {
		return
	}
	l.mu.Lock()
	l.prepare(section, lvl)
	fmt.Fprint(&l.s, v...)
	l.s.finish()
	l.mu.Unlock()
}

func (l *FileLogger) LogPrintlnX(
	section string, lvl logx.Level, v ...interface{}) {

	if lvl < l.lvl {
		return
	}
	l.mu.Lock()
	l.prepare(section, lvl)
	fmt.Fprintln(&l.s, v...)
	l.s.finish()
	l.mu.Unlock()
}

func (l *FileLogger) LogPrintfX(
	section string, lvl logx.Level, f string, v ...interface{}) {

	if lvl < l.lvl {
		return
	}
	l.mu.Lock()
	l.prepare(section, lvl)
	fmt.Fprintf(&l.s, f, v...)
	l.s.finish()
	l.mu.Unlock()
}

// LockWriteX locks the logger for direct writing.
// If it returns true, the caller must finish with Close.
func (l *FileLogger) LockWriteX(section string, lvl logx.Level) bool {
	if lvl < l.lvl {
		return false
	}
	l.mu.Lock()
	l.prepare(section, lvl)
	return true
}

func (l *FileLogger) Write(b []byte) (int, error) {
	return l.s.Write(b)
}

func (l *FileLogger) Close() error {
	l.s.finish()
	l.mu.Unlock()
	return nil
}
