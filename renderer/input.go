package renderer

import (
	"github.com/richinsley/goshaderdemos/frame"
	"github.com/richinsley/goshaderdemos/logger"
	"go.uber.org/zap"
)

// pageInput forwards window events to a page.
type pageInput struct {
	sync *frame.Synchronizer
}

func (p pageInput) PointerDown(x, y float32) { p.sync.PointerDown(x, y) }
func (p pageInput) PointerUp()               { p.sync.PointerUp() }
func (p pageInput) PointerMove(x, y float32) { p.sync.PointerMove(x, y) }
func (p pageInput) Wheel(delta float32)      { p.sync.Wheel(delta) }
func (p pageInput) TogglePause()             { p.sync.TogglePause() }
func (p pageInput) Resize(width, height int) { p.sync.Resize(width, height) }
func (p pageInput) SelectNextControl()       { p.sync.Controls().SelectNext() }

func (p pageInput) NudgeControl(steps int) {
	panel := p.sync.Controls()
	panel.NudgeSelected(steps)
	if c := panel.Selected(); c != nil {
		logger.Log.Info("Control changed", zap.String("uniform", c.Name()), zap.Float32("value", c.Value()))
	}
}
