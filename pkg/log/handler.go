package log

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Handler decides where and how a Record is written.
type Handler interface {
	Log(r *Record) error
}

// FuncHandler adapts a function to the Handler interface.
func FuncHandler(fn func(r *Record) error) Handler {
	return funcHandler(fn)
}

type funcHandler func(r *Record) error

func (h funcHandler) Log(r *Record) error {
	return h(r)
}

// StreamHandler writes records to wr in the given format. Writes are
// serialised.
func StreamHandler(wr io.Writer, fmtr Format) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := wr.Write(fmtr.Format(r))
		return err
	})
}

// LvlFilterHandler passes on records at maxLvl or more severe.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl <= maxLvl {
			return h.Log(r)
		}
		return nil
	})
}

// DiscardHandler drops every record.
func DiscardHandler() Handler {
	return FuncHandler(func(r *Record) error { return nil })
}

// CollectHandler keeps every record in memory. Tests use it to assert on
// what was logged.
type CollectHandler struct {
	mu      sync.Mutex
	Records []*Record
}

func (h *CollectHandler) Log(r *Record) error {
	h.mu.Lock()
	h.Records = append(h.Records, r)
	h.mu.Unlock()
	return nil
}

// TerminalHandler writes to stderr, colored when stderr is a terminal.
func TerminalHandler(lvl Lvl) Handler {
	usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	output := io.Writer(os.Stderr)
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	return LvlFilterHandler(lvl, StreamHandler(output, TerminalFormat(usecolor)))
}
