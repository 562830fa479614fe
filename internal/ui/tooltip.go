package ui

import (
	"fyne.io/fyne/v2"

	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
)

// toolbarButton is an icon-only button whose tooltip names the action and,
// when set, its shortcut.
func toolbarButton(icon fyne.Resource, tip, shortcut string, tapped func()) *ttwidget.Button {
	btn := ttwidget.NewButtonWithIcon("", icon, tapped)
	if shortcut != "" {
		tip += " (" + shortcut + ")"
	}
	btn.SetToolTip(tip)
	return btn
}
