//go:build cgo

package hal

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	keyPanStep  = 24.0
	keyZoomStep = 1.1
	wheelZoom   = 1.1
)

// pointerTracker turns ebiten mouse, wheel, touch and key state into gestures.
type pointerTracker struct {
	q *gestureQueue

	dragging     bool
	lastX, lastY int

	pinching  bool
	pinchDist float64
}

func (p *pointerTracker) poll() {
	p.pollMouse()
	p.pollTouches()
	p.pollKeys()
}

func (p *pointerTracker) pollMouse() {
	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		p.dragging = true
	case p.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if dx, dy := x-p.lastX, y-p.lastY; dx != 0 || dy != 0 {
			p.q.push(Pan(float64(dx), float64(dy)))
		}
	default:
		p.dragging = false
	}
	p.lastX, p.lastY = x, y

	if _, wy := ebiten.Wheel(); wy != 0 {
		p.q.push(Zoom(math.Pow(wheelZoom, wy)))
	}
}

func (p *pointerTracker) pollTouches() {
	ids := ebiten.AppendTouchIDs(nil)
	switch len(ids) {
	case 1:
		p.pinching = false
		id := ids[0]
		if inpututil.TouchPressDuration(id) <= 1 {
			return
		}
		x, y := ebiten.TouchPosition(id)
		px, py := inpututil.TouchPositionInPreviousTick(id)
		if dx, dy := x-px, y-py; dx != 0 || dy != 0 {
			p.q.push(Pan(float64(dx), float64(dy)))
		}
	case 2:
		ax, ay := ebiten.TouchPosition(ids[0])
		bx, by := ebiten.TouchPosition(ids[1])
		d := math.Hypot(float64(ax-bx), float64(ay-by))
		if p.pinching && p.pinchDist > 0 && d > 0 && d != p.pinchDist {
			p.q.push(Zoom(d / p.pinchDist))
		}
		p.pinching = true
		p.pinchDist = d
	default:
		p.pinching = false
	}
}

func (p *pointerTracker) pollKeys() {
	// Arrow keys move the view, so the world moves the other way.
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		p.q.push(Pan(keyPanStep, 0))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		p.q.push(Pan(-keyPanStep, 0))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		p.q.push(Pan(0, keyPanStep))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		p.q.push(Pan(0, -keyPanStep))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		p.q.push(Zoom(keyZoomStep))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		p.q.push(Zoom(1 / keyZoomStep))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) || inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		p.q.push(GestureEvent{Kind: GestureReset})
	}
}
