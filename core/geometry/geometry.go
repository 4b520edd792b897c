// Package geometry defines the narrow interface the core consumes from the
// geometry collaborator: opaque convex-shape handles that the core
// never inspects beyond comparing identity and asking for their source.
//
// The core does not perform collision detection or hull computation itself;
// it only needs a handle that can be snapshotted ("finalised") so that later
// mutation of the shape a Profile was built from cannot retroactively change
// an already-finalised Profile.
package geometry

import "fmt"

// Shape is an opaque, possibly-mutable convex shape handle. Source returns
// the underlying representation for collaborators that know how to
// interpret it; the core treats it as opaque.
type Shape interface {
	Source() any
}

// FinalShape is a Shape that has been snapshotted: mutating whatever Source
// produced it afterwards must not change the FinalShape's own Source.
type FinalShape interface {
	Shape
	finalised()
}

// MakeFinalConvex snapshots shape into an immutable handle. shape
// handles are opaque and shared; once finalised, further mutation of the
// value shape.Source() points to must not affect the returned FinalShape.
func MakeFinalConvex(shape Shape) (FinalShape, error) {
	if shape == nil {
		return nil, fmt.Errorf("geometry: nil shape")
	}
	switch s := shape.(type) {
	case *BoxShape:
		snap := *s
		return &finalBox{snap}, nil
	case *CircleShape:
		snap := *s
		return &finalCircle{snap}, nil
	default:
		return nil, fmt.Errorf("geometry: unsupported shape type %T", shape)
	}
}

type finalBox struct{ BoxShape }

func (*finalBox) finalised() {}

type finalCircle struct{ CircleShape }

func (*finalCircle) finalised() {}
