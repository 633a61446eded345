package graphics

// Context defines the interface for an OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	SetShouldClose(bool)
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
	SetTitle(title string)
	SetInputHandler(h InputHandler)
}

// InputHandler receives window events. Coordinates are framebuffer pixels
// with the origin at the top left.
type InputHandler interface {
	PointerDown(x, y float32)
	PointerUp()
	PointerMove(x, y float32)
	// Wheel receives the scroll delta in pixels, positive when scrolling down.
	Wheel(delta float32)
	TogglePause()
	Resize(width, height int)
	SelectNextControl()
	NudgeControl(steps int)
}
