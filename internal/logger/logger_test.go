package logger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	lines []string
}

func (r *recorder) record(level, message string, keyvals ...any) {
	r.lines = append(r.lines, fmt.Sprint(level, " ", message, keyvals))
}

func (r *recorder) Debug(m string, kv ...any) { r.record("DEBUG", m, kv...) }
func (r *recorder) Info(m string, kv ...any)  { r.record("INFO", m, kv...) }
func (r *recorder) Warn(m string, kv ...any)  { r.record("WARN", m, kv...) }
func (r *recorder) Error(m string, kv ...any) { r.record("ERROR", m, kv...) }
func (r *recorder) Fatal(m string, kv ...any) { r.record("FATAL", m, kv...) }

func TestNoopWithoutInit(t *testing.T) {
	Reset()
	assert.NotPanics(t, func() {
		Debug("x")
		Info("x")
		Warn("x")
		Error("x")
		Fatal("x")
	})
}

func TestDispatchToAllInstances(t *testing.T) {
	defer Reset()
	a, b := &recorder{}, &recorder{}
	Init(a, b)

	Info("[Pattern] clustered", "clusters", 2)
	Warn("careful")

	assert.Equal(t, []string{"INFO [Pattern] clustered[clusters 2]", "WARN careful[]"}, a.lines)
	assert.Equal(t, a.lines, b.lines)
}
