package glfwcontext

import (
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goshaderdemos/graphics"
	"github.com/richinsley/goshaderdemos/logger"
	"go.uber.org/zap"
)

// wheelPixels converts GLFW scroll offsets to pixel deltas.
const wheelPixels = 100

// Config describes the window to open.
type Config struct {
	Width   int
	Height  int
	Title   string
	Visible bool
}

// Context is a GLFW window with an OpenGL 4.1 core context.
type Context struct {
	window  *glfw.Window
	handler graphics.InputHandler
}

// New creates and initializes a new GLFW window and returns a Context object.
func New(cfg Config) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if cfg.Visible {
		glfw.WindowHint(glfw.Visible, glfw.True)
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{window: win}
	win.SetKeyCallback(c.keyCallback)
	win.SetMouseButtonCallback(c.mouseButtonCallback)
	win.SetCursorPosCallback(c.cursorPosCallback)
	win.SetScrollCallback(c.scrollCallback)
	win.SetFramebufferSizeCallback(c.framebufferSizeCallback)
	return c, nil
}

// SetInputHandler routes window events to h. A nil handler drops them.
func (c *Context) SetInputHandler(h graphics.InputHandler) {
	c.handler = h
}

func (c *Context) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	// Handle the default Escape key behavior
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
		return
	}
	if c.handler == nil || action == glfw.Release {
		return
	}
	switch key {
	case glfw.KeySpace:
		if action == glfw.Press {
			c.handler.TogglePause()
		}
	case glfw.KeyTab:
		if action == glfw.Press {
			c.handler.SelectNextControl()
		}
	case glfw.KeyUp:
		c.handler.NudgeControl(1)
	case glfw.KeyDown:
		c.handler.NudgeControl(-1)
	}
}

// framebufferPos scales window coordinates to framebuffer pixels.
func (c *Context) framebufferPos(x, y float64) (float32, float32) {
	fbWidth, fbHeight := c.window.GetFramebufferSize()
	winWidth, winHeight := c.window.GetSize()
	scaleX, scaleY := 1.0, 1.0
	if winWidth > 0 && winHeight > 0 {
		scaleX = float64(fbWidth) / float64(winWidth)
		scaleY = float64(fbHeight) / float64(winHeight)
	}
	return float32(x * scaleX), float32(y * scaleY)
}

func (c *Context) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if c.handler == nil || button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		x, y := c.framebufferPos(w.GetCursorPos())
		c.handler.PointerDown(x, y)
	case glfw.Release:
		c.handler.PointerUp()
	}
}

func (c *Context) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	if c.handler == nil {
		return
	}
	x, y := c.framebufferPos(xpos, ypos)
	c.handler.PointerMove(x, y)
}

func (c *Context) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	if c.handler == nil {
		return
	}
	// GLFW reports scrolling up as positive
	c.handler.Wheel(float32(-yoff * wheelPixels))
}

func (c *Context) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if c.handler == nil || width == 0 || height == 0 {
		return
	}
	c.handler.Resize(width, height)
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

// Close lets the window be released by a host.
func (c *Context) Close() error {
	c.Shutdown()
	return nil
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) SetShouldClose(v bool) {
	c.window.SetShouldClose(v)
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

func (c *Context) SetTitle(title string) {
	c.window.SetTitle(title)
}

// PrimaryMonitorWidth returns the width of the primary monitor's current
// video mode, or 0 when it is unknown.
func PrimaryMonitorWidth() int {
	m := glfw.GetPrimaryMonitor()
	if m == nil {
		return 0
	}
	mode := m.GetVideoMode()
	if mode == nil {
		return 0
	}
	return mode.Width
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	logger.Log.Debug("GLFW initialized", zap.String("version", glfw.GetVersionString()))
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	logger.Log.Debug("GLFW terminated")
}
