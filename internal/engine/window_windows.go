//go:build windows

package engine

import (
	"syscall"
	"unsafe"

	"RainyDay/internal/logger"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

var (
	dwmapi                    = syscall.NewLazyDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

const (
	dwmwaUseImmersiveDarkMode = 20
	dwmwaBorderColor          = 34
	dwmwaCaptionColor         = 35
)

// captionColor is the clear color as a COLORREF (0x00BBGGRR).
const captionColor uint32 = 0x004d4d4d

// styleTitleBar gives the window a dark caption matching the scene clear
// color. Older Windows builds ignore the attributes.
func styleTitleBar(window *glfw.Window) {
	win := window.GetWin32Window()
	if win == nil {
		return
	}
	hwnd := unsafe.Pointer(win)
	var dark int32 = 1
	setWindowAttribute(hwnd, dwmwaUseImmersiveDarkMode, unsafe.Pointer(&dark), unsafe.Sizeof(dark))
	color := captionColor
	setWindowAttribute(hwnd, dwmwaBorderColor, unsafe.Pointer(&color), unsafe.Sizeof(color))
	setWindowAttribute(hwnd, dwmwaCaptionColor, unsafe.Pointer(&color), unsafe.Sizeof(color))
}

func setWindowAttribute(hwnd unsafe.Pointer, attr uintptr, value unsafe.Pointer, size uintptr) {
	if hr, _, _ := procDwmSetWindowAttribute.Call(uintptr(hwnd), attr, uintptr(value), size); hr != 0 {
		logger.Log.Debug("DwmSetWindowAttribute failed", zap.Uintptr("attribute", attr), zap.Uintptr("hresult", hr))
	}
}
