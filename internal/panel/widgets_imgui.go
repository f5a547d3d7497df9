package panel

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
)

const floatFormat = "%.3f"

// ImGui implements Widgets on the current Dear ImGui context.
type ImGui struct{}

var _ Widgets = ImGui{}

func (ImGui) Begin(title string) bool { return imgui.Begin(title) }
func (ImGui) End()                    { imgui.End() }
func (ImGui) Text(s string)           { imgui.Text(s) }
func (ImGui) Separator()              { imgui.Separator() }

func (ImGui) DragFloat3(label string, v *mgl32.Vec3, speed, min, max float32) bool {
	return imgui.DragFloat3V(label, (*[3]float32)(v), speed, min, max, floatFormat, imgui.SliderFlagsNone)
}

func (ImGui) DragFloat(label string, v *float32, speed, min, max float32) bool {
	return imgui.DragFloatV(label, v, speed, min, max, floatFormat, imgui.SliderFlagsNone)
}

func (ImGui) SliderFloat(label string, v *float32, min, max float32) bool {
	return imgui.SliderFloat(label, v, min, max)
}

func (ImGui) ColorEdit3(label string, v *mgl32.Vec3) bool {
	return imgui.ColorEdit3(label, (*[3]float32)(v))
}
