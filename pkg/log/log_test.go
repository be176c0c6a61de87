package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLvlFromString(t *testing.T) {
	tests := []struct {
		in   string
		want Lvl
	}{
		{"trace", LvlTrace},
		{"DEBUG", LvlDebug},
		{"info", LvlInfo},
		{"warn", LvlWarn},
		{"eror", LvlError},
		{"crit", LvlCrit},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LvlFromString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := LvlFromString("loud")
	assert.Error(t, err)
}

func TestChildContext(t *testing.T) {
	h := &CollectHandler{}
	l := New("stage", "codegen")
	l.SetHandler(h)

	l.Warn("unhandled node", "kind", "*compiler.Foo")

	require.Len(t, h.Records, 1)
	r := h.Records[0]
	assert.Equal(t, LvlWarn, r.Lvl)
	assert.Equal(t, "unhandled node", r.Msg)
	assert.Equal(t, []interface{}{"stage", "codegen", "kind", "*compiler.Foo"}, r.Ctx)
}

func TestOddContextIsNormalized(t *testing.T) {
	h := &CollectHandler{}
	l := New()
	l.SetHandler(h)

	l.Info("odd", "key")

	require.Len(t, h.Records, 1)
	assert.Len(t, h.Records[0].Ctx, 4)
	assert.Equal(t, errorKey, h.Records[0].Ctx[2])
}

func TestLvlFilterHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetHandler(LvlFilterHandler(LvlWarn, StreamHandler(&buf, TerminalFormat(false))))

	l.Info("hidden")
	l.Error("shown", "n", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "ERROR["), out)
	assert.Contains(t, out, "n=3")
}

func TestLogfmtFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetHandler(StreamHandler(&buf, LogfmtFormat()))

	l.Info("compiled", "file", "a b.src", "ok", true)

	out := buf.String()
	assert.Contains(t, out, "lvl=info")
	assert.Contains(t, out, "msg=compiled")
	assert.Contains(t, out, `file="a b.src"`)
	assert.Contains(t, out, "ok=true")
	assert.Contains(t, out, "caller=log_test.go:")
}
