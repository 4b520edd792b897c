package geometry

import (
	"encoding/json"
	"fmt"
)

// Encode serialises shape to a (kind, data) pair a collaborator can hand to
// a persistence layer without that layer needing to know about Shape at
// all. Decode is its inverse.
func Encode(shape Shape) (kind string, data []byte, err error) {
	switch s := shape.(type) {
	case *BoxShape:
		data, err = json.Marshal(s)
		return "box", data, err
	case *CircleShape:
		data, err = json.Marshal(s)
		return "circle", data, err
	default:
		return "", nil, fmt.Errorf("geometry: unsupported shape type %T", shape)
	}
}

// Decode reconstructs a Shape from its (kind, data) encoding.
func Decode(kind string, data []byte) (Shape, error) {
	switch kind {
	case "box":
		var b BoxShape
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return &b, nil
	case "circle":
		var c CircleShape
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	default:
		return nil, fmt.Errorf("geometry: unknown shape kind %q", kind)
	}
}
