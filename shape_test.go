package broadphase

import (
	"testing"

	"go.viam.com/test"
)

func TestShape_CacheBB(t *testing.T) {
	body := NewBody()
	body.SetPosition(Vector{10, 20})

	tests := []struct {
		name  string
		shape *Shape
		want  BB
	}{
		{"circle", NewCircle(body, 2, Vector{1, 0}), NewBB(9, 18, 13, 22)},
		{"box", NewBox(body, 4, 2, 0), NewBB(8, 19, 12, 21)},
		{"rounded box", NewBoxWithOffset(body, 4, 2, 0.5, Vector{0, 1}), NewBB(7.5, 19.5, 12.5, 22.5)},
		{"segment", NewSegment(body, Vector{-1, 2}, Vector{3, -2}, 0.5), NewBB(8.5, 17.5, 13.5, 22.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.That(t, tt.shape.CacheBB(), test.ShouldResemble, tt.want)
			test.That(t, tt.shape.BB(), test.ShouldResemble, tt.want)
		})
	}
}

func TestCircle_TransformC(t *testing.T) {
	body := NewBody()
	body.SetPosition(Vector{1, 1})
	shape := NewCircle(body, 1, Vector{2, 0})
	shape.CacheBB()

	circle := shape.Class().(*Circle)
	test.That(t, circle.TransformC(), test.ShouldResemble, Vector{3, 1})
	test.That(t, circle.Radius(), test.ShouldEqual, 1.0)
	test.That(t, circle.Offset(), test.ShouldResemble, Vector{2, 0})
}
