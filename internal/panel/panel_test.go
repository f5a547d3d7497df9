package panel

import (
	"strings"
	"testing"

	"RainyDay/internal/config"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widgetCall struct {
	kind            string
	label           string
	speed, min, max float32
}

// fakeWidgets records the layout and applies scripted edits by label.
type fakeWidgets struct {
	open   bool
	calls  []widgetCall
	texts  []string
	ends   int
	edits3 map[string]mgl32.Vec3
	edits  map[string]float32
}

func newFakeWidgets() *fakeWidgets {
	return &fakeWidgets{open: true, edits3: map[string]mgl32.Vec3{}, edits: map[string]float32{}}
}

func (f *fakeWidgets) Begin(title string) bool {
	f.calls = append(f.calls, widgetCall{kind: "begin", label: title})
	return f.open
}

func (f *fakeWidgets) End()          { f.ends++ }
func (f *fakeWidgets) Text(s string) { f.texts = append(f.texts, s) }
func (f *fakeWidgets) Separator()    {}

func (f *fakeWidgets) edit3(kind, label string, v *mgl32.Vec3, speed, min, max float32) bool {
	f.calls = append(f.calls, widgetCall{kind, label, speed, min, max})
	nv, ok := f.edits3[label]
	if ok {
		*v = nv
	}
	return ok
}

func (f *fakeWidgets) edit(kind, label string, v *float32, speed, min, max float32) bool {
	f.calls = append(f.calls, widgetCall{kind, label, speed, min, max})
	nv, ok := f.edits[label]
	if ok {
		*v = nv
	}
	return ok
}

func (f *fakeWidgets) DragFloat3(label string, v *mgl32.Vec3, speed, min, max float32) bool {
	return f.edit3("drag3", label, v, speed, min, max)
}

func (f *fakeWidgets) DragFloat(label string, v *float32, speed, min, max float32) bool {
	return f.edit("drag", label, v, speed, min, max)
}

func (f *fakeWidgets) SliderFloat(label string, v *float32, min, max float32) bool {
	return f.edit("slider", label, v, 0, min, max)
}

func (f *fakeWidgets) ColorEdit3(label string, v *mgl32.Vec3) bool {
	return f.edit3("color", label, v, 0, 0, 0)
}

func TestDrawLayout(t *testing.T) {
	params := config.Default().Params
	w := newFakeWidgets()

	changed := Draw(w, &params, Info{Camera: mgl32.Vec3{1, 2, 3}, FrameTime: 0.02})
	assert.False(t, changed)
	assert.Equal(t, 1, w.ends)

	assert.Equal(t, []widgetCall{
		{kind: "begin", label: "Settings"},
		{"drag3", "Rain velocity", 0.1, -15, 15},
		{"drag", "Rain splash size", 0.01, 0.01, 0.1},
		{"drag", "Rain splash speed", 0.01, 0.1, 1.0},
		{"drag3", "light 1 direction", 0.1, -20, 20},
		{"color", "light 1 color", 0, 0, 0},
		{"slider", "light 1 intensity", 0, 0, 2},
		{"color", "color", 0, 0, 0},
	}, w.calls)

	require.NotEmpty(t, w.texts)
	assert.Equal(t, "Camera: 1.000000, 2.000000, 3.000000", w.texts[0])
	assert.Equal(t, "Application average 20.000 ms/frame (50.0 FPS)", w.texts[len(w.texts)-1])
}

func TestDrawWritesParams(t *testing.T) {
	params := config.Default().Params
	w := newFakeWidgets()
	w.edits3["Rain velocity"] = mgl32.Vec3{0, -5, 0}
	w.edits3["light 1 color"] = mgl32.Vec3{1, 0, 0}
	w.edits["light 1 intensity"] = 1.5
	w.edits3["color"] = mgl32.Vec3{0, 0, 1}

	assert.True(t, Draw(w, &params, Info{}))
	assert.Equal(t, mgl32.Vec3{0, -5, 0}, params.Rain.Velocity)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, params.Lights[0].Color)
	assert.Equal(t, float32(1.5), params.Lights[0].Intensity)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, params.Paint.ReflectionColor)
}

func TestDrawCollapsedWindow(t *testing.T) {
	params := config.Default().Params
	w := newFakeWidgets()
	w.open = false

	assert.False(t, Draw(w, &params, Info{}))
	assert.Len(t, w.calls, 1)
	assert.Equal(t, 1, w.ends)
}

type stats string

func (s stats) String() string { return string(s) }

func TestFrameTextWithStats(t *testing.T) {
	s := frameText(Info{Stats: stats("draws: 45 points: 20000")})
	assert.True(t, strings.HasPrefix(s, "Application average -- ms/frame"))
	assert.True(t, strings.HasSuffix(s, "draws: 45 points: 20000"))
}
