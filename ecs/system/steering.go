package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/steering/ecs"
	"github.com/milk9111/steering/ecs/component"
	"go.uber.org/zap"
)

// SteeringSystem resolves every agent's heading and steers its body toward
// heading*MoveSpeed.
type SteeringSystem struct {
	logger *zap.Logger
}

func NewSteeringSystem(logger *zap.Logger) *SteeringSystem {
	return &SteeringSystem{logger: loggerOr(logger, "steering")}
}

func (ss *SteeringSystem) Update(w *ecs.World) {
	if ss == nil || w == nil {
		return
	}

	for _, a := range collectAgents(w) {
		h := a.st.Map.Heading()
		a.st.Heading = h

		speed := 0.0
		if body, ok := ecs.Get(w, a.e, component.PhysicsBodyComponent); ok && body.Body != nil && !body.Static {
			vel := steerVelocity(body.Body.Velocity(), float64(h.X), float64(h.Y), a.st.MoveSpeed, a.st.Acceleration)
			body.Body.SetVelocityVector(vel)
			speed = vel.Length()
		}

		w.Events().Push(ecs.Event{Type: EventSteeringResolved, Data: SteeringResolved{
			Entity:  a.e,
			Heading: [2]float32{h.X, h.Y},
			Speed:   speed,
		}})
	}
}

// steerVelocity moves cur toward heading*maxSpeed, capped at maxSpeed, by at
// most accel. accel <= 0 snaps to the desired velocity.
func steerVelocity(cur cp.Vector, hx, hy, maxSpeed, accel float64) cp.Vector {
	dx := hx * maxSpeed
	dy := hy * maxSpeed
	if mag := math.Hypot(dx, dy); mag > maxSpeed && mag > 0 {
		dx *= maxSpeed / mag
		dy *= maxSpeed / mag
	}

	if accel <= 0 {
		return cp.Vector{X: dx, Y: dy}
	}
	ax := dx - cur.X
	ay := dy - cur.Y
	if mag := math.Hypot(ax, ay); mag > accel {
		ax *= accel / mag
		ay *= accel / mag
	}
	return cp.Vector{X: cur.X + ax, Y: cur.Y + ay}
}
