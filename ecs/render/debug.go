package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"github.com/milk9111/steering/steering"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

var (
	colorBounds   = colornames.Slategray
	colorHazard   = colornames.Crimson
	colorTarget   = colornames.Limegreen
	colorAgent    = colornames.White
	colorInterest = color.RGBA{R: 0x32, G: 0xcd, B: 0x32, A: 0xc0}
	colorDanger   = color.RGBA{R: 0xdc, G: 0x14, B: 0x3c, A: 0xc0}
	colorHeading  = colornames.Gold
	colorHUD      = colornames.Lightgray
)

// DebugRenderer draws a steering world: bounds, hazards, targets, agents
// and each agent's gradient as rays around it.
type DebugRenderer struct {
	// Scale maps world units to screen pixels.
	Scale float64

	face    text.Face
	samples []steering.Sample
}

func NewDebugRenderer(scale float64) *DebugRenderer {
	if scale <= 0 {
		scale = 1
	}
	return &DebugRenderer{
		Scale: scale,
		face:  text.NewGoXFace(basicfont.Face7x13),
	}
}

// Draw renders w onto screen and prints hud lines in the top-left corner.
func (r *DebugRenderer) Draw(screen *ebiten.Image, w *ecs.World, hud ...string) {
	if r == nil || screen == nil || w == nil {
		return
	}
	s := float32(r.Scale)

	if be, ok := w.First(component.WorldBoundsComponent.Kind()); ok {
		if b, ok := ecs.Get(w, be, component.WorldBoundsComponent); ok {
			vector.StrokeRect(screen, 0, 0, float32(b.Width)*s, float32(b.Height)*s, 2, colorBounds, false)
		}
	}

	ecs.ForEach2(w, component.HazardComponent, component.TransformComponent, func(_ ecs.Entity, hz *component.Hazard, tr *component.Transform) {
		x, y := float32(tr.X)*s, float32(tr.Y)*s
		vector.FillCircle(screen, x, y, float32(hz.Radius)*s, color.RGBA{R: 0xdc, G: 0x14, B: 0x3c, A: 0x40}, true)
		vector.StrokeCircle(screen, x, y, float32(hz.Radius)*s, 1.5, colorHazard, true)
		if hz.Range > 0 {
			vector.StrokeCircle(screen, x, y, float32(hz.Radius+hz.Range)*s, 1, color.RGBA{R: 0xdc, G: 0x14, B: 0x3c, A: 0x60}, true)
		}
	})

	ecs.ForEach2(w, component.TargetComponent, component.TransformComponent, func(_ ecs.Entity, _ *component.Target, tr *component.Transform) {
		vector.FillCircle(screen, float32(tr.X)*s, float32(tr.Y)*s, 6*s, colorTarget, true)
	})

	ecs.ForEach3(w, component.SteeringAgentTagComponent, component.SteeringComponent, component.TransformComponent, func(e ecs.Entity, _ *component.SteeringAgentTag, st *component.Steering, tr *component.Transform) {
		x, y := float32(tr.X)*s, float32(tr.Y)*s
		radius := float32(6)
		if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent); ok && body.Radius > 0 {
			radius = float32(body.Radius)
		}

		if dd, ok := ecs.Get(w, e, component.DebugDrawComponent); ok && st.Map != nil {
			if dd.Rays {
				r.drawRays(screen, st.Map, x, y, float32(dd.RayScale)*s)
			}
			if dd.Heading {
				r.drawHeading(screen, st.Heading, x, y, float32(dd.RayScale)*s)
			}
		}

		agentColor := color.Color(colorAgent)
		if st.Invalid {
			agentColor = colornames.Dimgray
		}
		vector.StrokeCircle(screen, x, y, radius*s, 1.5, agentColor, true)
	})

	r.drawHUD(screen, hud)
}

func (r *DebugRenderer) drawRays(screen *ebiten.Image, m *steering.GradientMap, x, y, length float32) {
	r.samples = m.AppendGradient(r.samples[:0])
	for _, sm := range r.samples {
		sin, cos := math.Sincos(float64(sm.Angle))
		dx, dy := float32(cos), float32(sin)
		if sm.Interest > 0 {
			l := sm.Interest * length
			vector.StrokeLine(screen, x, y, x+dx*l, y+dy*l, 2, colorInterest, true)
		}
		if sm.Danger > 0 {
			l := sm.Danger * length
			vector.StrokeLine(screen, x, y, x+dx*l, y+dy*l, 1, colorDanger, true)
		}
	}
}

func (r *DebugRenderer) drawHeading(screen *ebiten.Image, h steering.Vec2, x, y, length float32) {
	if h.IsZero() {
		return
	}
	// normalized to the ray length so long gradients stay on screen
	n := h.Len()
	ex := x + h.X/n*length
	ey := y + h.Y/n*length
	vector.StrokeLine(screen, x, y, ex, ey, 2.5, colorHeading, true)
	vector.FillCircle(screen, ex, ey, 3, colorHeading, true)
}

func (r *DebugRenderer) drawHUD(screen *ebiten.Image, lines []string) {
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(8, float64(8+i*16))
		op.ColorScale.ScaleWithColor(colorHUD)
		text.Draw(screen, line, r.face, op)
	}
}
