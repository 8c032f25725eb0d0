package broadphase

import (
	"testing"

	"go.viam.com/test"
)

func TestShapeFilter_Reject(t *testing.T) {
	tests := []struct {
		name   string
		a, b   ShapeFilter
		reject bool
	}{
		{"all", ShapeFilterAll, ShapeFilterAll, false},
		{"none", ShapeFilterAll, ShapeFilterNone, true},
		{"same group", NewShapeFilter(1, AllCategories, AllCategories), NewShapeFilter(1, AllCategories, AllCategories), true},
		{"different group", NewShapeFilter(1, AllCategories, AllCategories), NewShapeFilter(2, AllCategories, AllCategories), false},
		{"one sided mask", NewShapeFilter(0, 1, 2), NewShapeFilter(0, 2, 0), true},
		{"both masks agree", NewShapeFilter(0, 1, 2), NewShapeFilter(0, 2, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.That(t, tt.a.Reject(tt.b), test.ShouldEqual, tt.reject)
			test.That(t, tt.b.Reject(tt.a), test.ShouldEqual, tt.reject)
		})
	}
}

func TestBody_Layered(t *testing.T) {
	body := NewBody()
	body.filter = NewShapeFilter(0, 4, 8)

	var l Layered = body
	test.That(t, l.CollisionLayer(), test.ShouldEqual, uint32(4))
	test.That(t, l.CollisionMask(), test.ShouldEqual, uint32(8))
}
