package broadphase

import (
	"testing"

	"go.viam.com/test"
)

func TestBodyUpdatePosition(t *testing.T) {
	gravity := Vector{0, -10}

	body := NewBody()
	body.SetVelocity(Vector{1, 0})
	for i := 0; i < 10; i++ {
		BodyUpdatePosition(body, gravity, 0.1)
	}
	test.That(t, body.Position().X, test.ShouldAlmostEqual, 1.0)
	test.That(t, body.Velocity().Y, test.ShouldAlmostEqual, -10.0)
	test.That(t, body.Position().Y, test.ShouldBeLessThan, 0.0)

	t.Run("kinematic bodies ignore gravity", func(t *testing.T) {
		body := NewKinematicBody()
		body.SetVelocity(Vector{0, 2})
		BodyUpdatePosition(body, gravity, 0.5)
		test.That(t, body.Velocity(), test.ShouldResemble, Vector{0, 2})
		test.That(t, body.Position(), test.ShouldResemble, Vector{0, 1})
	})
}

func TestBody_AddShape(t *testing.T) {
	body := NewBody()
	circle := body.AddShape(NewCircle(body, 1, Vector{}))
	box := body.AddShape(NewBox(body, 2, 2, 0))

	test.That(t, circle.Index(), test.ShouldEqual, 0)
	test.That(t, box.Index(), test.ShouldEqual, 1)
	test.That(t, body.Shapes(), test.ShouldResemble, []*Shape{circle, box})
	test.That(t, circle.ProxyID(), test.ShouldEqual, InvalidID)

	other := NewBody()
	test.That(t, func() { other.AddShape(box) }, test.ShouldPanic)
}

func TestBodyType_String(t *testing.T) {
	test.That(t, BODY_DYNAMIC.String(), test.ShouldEqual, "dynamic")
	test.That(t, BODY_STATIC.String(), test.ShouldEqual, "static")
	test.That(t, BodyType(9).String(), test.ShouldEqual, "BodyType(9)")
}
