package ui

import "image/color"

type Theme struct {
	AppBackground   color.RGBA
	Toolbar         color.RGBA
	Button          color.RGBA
	ButtonActive    color.RGBA
	ButtonHover     color.RGBA
	ButtonDisabled  color.RGBA
	Label           color.RGBA
	LabelDisabled   color.RGBA
	Page            color.RGBA
	Border          color.RGBA
	StatusBar       color.RGBA
	StatusText      color.RGBA
	Accent          color.RGBA
	Shadow          color.RGBA
	ToolbarHeightDp int
	StatusHeightDp  int
	ButtonMinDp     int
	ButtonPadDp     int
	ButtonGapDp     int
}

func DefaultTheme() Theme {
	return Theme{
		AppBackground:   color.RGBA{0xF3, 0xF5, 0xF8, 0xFF},
		Toolbar:         color.RGBA{0xF7, 0xF9, 0xFC, 0xFF},
		Button:          color.RGBA{0xE6, 0xEB, 0xF2, 0xFF},
		ButtonActive:    color.RGBA{0xC4, 0xD6, 0xEE, 0xFF},
		ButtonHover:     color.RGBA{0xD6, 0xE1, 0xF0, 0xFF},
		ButtonDisabled:  color.RGBA{0xEF, 0xF1, 0xF4, 0xFF},
		Label:           color.RGBA{0x2A, 0x38, 0x50, 0xFF},
		LabelDisabled:   color.RGBA{0x9A, 0xA4, 0xB4, 0xFF},
		Page:            color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		Border:          color.RGBA{0xB2, 0xBF, 0xD0, 0xFF},
		StatusBar:       color.RGBA{0xEA, 0xEF, 0xF6, 0xFF},
		StatusText:      color.RGBA{0x2A, 0x38, 0x50, 0xFF},
		Accent:          color.RGBA{0x2B, 0x57, 0x9A, 0xFF},
		Shadow:          color.RGBA{0xC8, 0xCF, 0xDB, 0xFF},
		ToolbarHeightDp: 42,
		StatusHeightDp:  28,
		ButtonMinDp:     56,
		ButtonPadDp:     12,
		ButtonGapDp:     6,
	}
}
