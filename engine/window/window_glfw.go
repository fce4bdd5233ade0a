package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the GLFW handle behind an engineWindow.
type glfwWindow struct {
	handle  *glfw.Window
	owner   *engineWindow
	running bool
}

// openGLFW initializes GLFW, opens a window without a GL context and attaches it to w.
// The calling goroutine stays locked to its OS thread, as GLFW requires.
func openGLFW(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create glfw window: %w", err)
	}
	handle.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{handle: handle, owner: w, running: true}
	handle.SetKeyCallback(gw.onKey)
	handle.SetFramebufferSizeCallback(gw.onFramebufferSize)

	w.platform = gw
	// The surface is sized in pixels, which differ from screen units on high-DPI displays.
	w.width, w.height = handle.GetFramebufferSize()
	return nil
}

// keyEffect decides what a key event does: Escape presses quit, every other press is
// forwarded to the key-down callback, and releases and repeats are ignored.
func keyEffect(key glfw.Key, action glfw.Action) (quit, forward bool) {
	if action != glfw.Press {
		return false, false
	}
	if key == glfw.KeyEscape {
		return true, false
	}
	return false, true
}

func (gw *glfwWindow) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	quit, forward := keyEffect(key, action)
	switch {
	case quit:
		gw.running = false
		gw.handle.SetShouldClose(true)
	case forward && gw.owner.onKeyDown != nil:
		gw.owner.onKeyDown(uint32(key))
	}
}

func (gw *glfwWindow) onFramebufferSize(_ *glfw.Window, width, height int) {
	gw.owner.width, gw.owner.height = width, height
	if gw.owner.onResize != nil {
		gw.owner.onResize(width, height)
	}
}

func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(gw.handle)
}

func (gw *glfwWindow) open() bool {
	return gw.running && !gw.handle.ShouldClose()
}

// poll drains pending GLFW events without blocking and reports whether the window is
// still open.
func (gw *glfwWindow) poll() bool {
	glfw.PollEvents()
	return gw.open()
}

// destroy closes the window and shuts GLFW down.
func (gw *glfwWindow) destroy() {
	gw.running = false
	gw.handle.Destroy()
	glfw.Terminate()
}

var errWindowNotOpen = errors.New("window is not open")
