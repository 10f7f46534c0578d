package ui

import (
	"fmt"
	"strings"
)

// PanelBox is a region of the panel a button can be placed in.
type PanelBox int

// Panel boxes, in panel order
const (
	BoxLeft PanelBox = iota
	BoxCenter
	BoxRight
)

// String returns the preference name of a PanelBox
func (b PanelBox) String() string {
	switch b {
	case BoxLeft:
		return "left"
	case BoxCenter:
		return "center"
	case BoxRight:
		return "right"
	default:
		return "unknown"
	}
}

// GetPanelBoxes returns all panel boxes in order
func GetPanelBoxes() []PanelBox {
	return []PanelBox{BoxLeft, BoxCenter, BoxRight}
}

// ParsePanelBox accepts a box name or its index ("0", "1", "2").
func ParsePanelBox(s string) (PanelBox, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "0":
		return BoxLeft, nil
	case "center", "1":
		return BoxCenter, nil
	case "right", "2":
		return BoxRight, nil
	}
	return BoxRight, fmt.Errorf("invalid panel box %q", s)
}
