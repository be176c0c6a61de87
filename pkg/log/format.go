package log

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

const (
	timeFormat  = "01-02|15:04:05.000"
	termMsgJust = 40
)

// Format turns a Record into bytes.
type Format interface {
	Format(r *Record) []byte
}

// FormatFunc adapts a function to the Format interface.
func FormatFunc(f func(*Record) []byte) Format {
	return formatFunc(f)
}

type formatFunc func(*Record) []byte

func (f formatFunc) Format(r *Record) []byte {
	return f(r)
}

var levelColors = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgBlue),
}

// TerminalFormat formats records for a human reading a terminal:
//
//	INFO [01-02|15:04:05.000] compiled                       file=a.src quads=12
func TerminalFormat(usecolor bool) Format {
	if usecolor {
		for _, c := range levelColors {
			c.EnableColor()
		}
	}
	return FormatFunc(func(r *Record) []byte {
		lvl := r.Lvl.AlignedString()
		if usecolor {
			if c, ok := levelColors[r.Lvl]; ok {
				lvl = c.Sprint(lvl)
			}
		}

		b := &bytes.Buffer{}
		fmt.Fprintf(b, "%s[%s] %s ", lvl, r.Time.Format(timeFormat), r.Msg)
		if len(r.Ctx) > 0 && len(r.Msg) < termMsgJust {
			b.Write(bytes.Repeat([]byte{' '}, termMsgJust-len(r.Msg)))
		}
		logfmt(b, r.Ctx, usecolor, r.Lvl)
		return b.Bytes()
	})
}

// LogfmtFormat prints records in logfmt, with the call site of each record.
//
//	t=2026-10-18T10:00:00+0000 lvl=info msg=compiled caller=compile.go:40 file=a.src
func LogfmtFormat() Format {
	return FormatFunc(func(r *Record) []byte {
		common := []interface{}{"t", r.Time.Format("2006-01-02T15:04:05-0700"), "lvl", r.Lvl, "msg", r.Msg, "caller", fmt.Sprintf("%v", r.Call)}
		b := &bytes.Buffer{}
		logfmt(b, append(common, r.Ctx...), false, r.Lvl)
		return b.Bytes()
	})
}

func logfmt(buf *bytes.Buffer, ctx []interface{}, usecolor bool, lvl Lvl) {
	for i := 0; i < len(ctx); i += 2 {
		if i != 0 {
			buf.WriteByte(' ')
		}
		k, ok := ctx[i].(string)
		v := formatLogfmtValue(ctx[i+1])
		if !ok {
			k, v = errorKey, formatLogfmtValue(k)
		}
		if usecolor {
			if c, ok := levelColors[lvl]; ok {
				k = c.Sprint(k)
			}
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(v)
	}
	buf.WriteByte('\n')
}

func formatLogfmtValue(value interface{}) string {
	if value == nil {
		return "nil"
	}
	switch v := value.(type) {
	case error:
		return escapeString(v.Error())
	case fmt.Stringer:
		return escapeString(v.String())
	case string:
		return escapeString(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
	return escapeString(fmt.Sprintf("%+v", value))
}

func escapeString(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " =\"\t\r\n") {
		return strconv.Quote(s)
	}
	return s
}
