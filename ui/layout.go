package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// Alignment specifies the horizontal alignment of a split row.
type Alignment int

const (
	alignLeft Alignment = iota
	alignCenter
	alignRight
	alignOpposed
)

// SplitAlign is a namespace for the Alignment constants.
var SplitAlign = struct {
	Left    Alignment // Both widgets packed to the left.
	Center  Alignment // Both widgets centered.
	Right   Alignment // Both widgets packed to the right.
	Opposed Alignment // First widget left, second widget right.
}{
	Left:    alignLeft,
	Center:  alignCenter,
	Right:   alignRight,
	Opposed: alignOpposed,
}

// FirstWidgetProportion is the share of the row given to the first widget.
type FirstWidgetProportion float32

// SplitProportion is a namespace for the FirstWidgetProportion constants.
var SplitProportion = struct {
	OneThird  FirstWidgetProportion
	OneFourth FirstWidgetProportion
	Half      FirstWidgetProportion
	TwoThirds FirstWidgetProportion
}{
	OneThird:  1.0 / 3,
	OneFourth: 1.0 / 4,
	Half:      1.0 / 2,
	TwoThirds: 2.0 / 3,
}

// splitLayout places two widgets side by side.
type splitLayout struct {
	widget1    fyne.CanvasObject
	widget2    fyne.CanvasObject
	proportion FirstWidgetProportion
	alignment  Alignment
}

// MinSize calculates the minimum size.
func (s *splitLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	w1Size := s.widget1.MinSize()
	w2Size := s.widget2.MinSize()
	return fyne.NewSize(w1Size.Width+w2Size.Width, fyne.Max(w1Size.Height, w2Size.Height))
}

// Layout arranges the widgets.
func (s *splitLayout) Layout(objects []fyne.CanvasObject, containerSize fyne.Size) {
	widget1Width := containerSize.Width * float32(s.proportion)
	widget2Width := containerSize.Width - widget1Width

	s.widget1.Resize(fyne.NewSize(widget1Width, s.widget1.MinSize().Height))
	s.widget2.Resize(fyne.NewSize(widget2Width, s.widget2.MinSize().Height))

	widget1X, widget2X := s.positions(containerSize.Width, widget1Width, widget2Width)
	s.widget1.Move(fyne.NewPos(widget1X, 0))
	s.widget2.Move(fyne.NewPos(widget2X, 0))
}

func (s *splitLayout) positions(total, w1, w2 float32) (float32, float32) {
	switch s.alignment {
	case alignRight:
		return total - w1 - w2, total - w2
	case alignOpposed:
		return 0, total - w2
	case alignCenter:
		x := (total - w1 - w2) / 2
		return x, x + w1
	default:
		return 0, w1
	}
}

// NewSplitRowWithAlignment creates a split row with specified alignment and proportion.
func NewSplitRowWithAlignment(widget1, widget2 fyne.CanvasObject, proportion FirstWidgetProportion, alignment Alignment) *fyne.Container {
	l := &splitLayout{
		widget1:    widget1,
		widget2:    widget2,
		proportion: proportion,
		alignment:  alignment,
	}
	return container.New(l, widget1, widget2)
}

// NewSplitRow creates a split row with default (left) alignment.
func NewSplitRow(widget1, widget2 fyne.CanvasObject, proportion FirstWidgetProportion) *fyne.Container {
	return NewSplitRowWithAlignment(widget1, widget2, proportion, alignLeft)
}
