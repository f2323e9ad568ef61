package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	DimColor          tcell.Color
	BorderColor       tcell.Color
	TableHeaderFg     tcell.Color
	TableHeaderBg     tcell.Color
	TableCursorFg     tcell.Color
	TableCursorBg     tcell.Color
	CrumbActiveFg     tcell.Color
	CrumbActiveBg     tcell.Color
	CrumbInactiveFg   tcell.Color
	CrumbInactiveBg   tcell.Color
	MenuKeyColor      tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	OwnColor          tcell.Color
	PendingColor      tcell.Color
	FailedColor       tcell.Color
	FlashInfoColor    tcell.Color
	FlashErrColor     tcell.Color
	PromptBorderColor tcell.Color
}

// DarkTheme returns the default dark theme.
func DarkTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorBlack,
		FgColor:           tcell.ColorLightSteelBlue,
		DimColor:          tcell.ColorSlateGray,
		BorderColor:       tcell.ColorMediumPurple,
		TableHeaderFg:     tcell.ColorWhite,
		TableHeaderBg:     tcell.ColorBlack,
		TableCursorFg:     tcell.ColorBlack,
		TableCursorBg:     tcell.ColorMediumPurple,
		CrumbActiveFg:     tcell.ColorBlack,
		CrumbActiveBg:     tcell.ColorOrange,
		CrumbInactiveFg:   tcell.ColorBlack,
		CrumbInactiveBg:   tcell.ColorMediumPurple,
		MenuKeyColor:      tcell.ColorMediumPurple,
		TitleColor:        tcell.ColorOrange,
		CounterColor:      tcell.ColorPapayaWhip,
		OwnColor:          tcell.ColorAqua,
		PendingColor:      tcell.ColorSlateGray,
		FailedColor:       tcell.ColorOrangeRed,
		FlashInfoColor:    tcell.ColorNavajoWhite,
		FlashErrColor:     tcell.ColorOrangeRed,
		PromptBorderColor: tcell.ColorMediumPurple,
	}
}

// LightTheme returns the light theme.
func LightTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorWhite,
		FgColor:           tcell.ColorBlack,
		DimColor:          tcell.ColorGray,
		BorderColor:       tcell.ColorRebeccaPurple,
		TableHeaderFg:     tcell.ColorBlack,
		TableHeaderBg:     tcell.ColorLavender,
		TableCursorFg:     tcell.ColorWhite,
		TableCursorBg:     tcell.ColorRebeccaPurple,
		CrumbActiveFg:     tcell.ColorWhite,
		CrumbActiveBg:     tcell.ColorDarkOrange,
		CrumbInactiveFg:   tcell.ColorWhite,
		CrumbInactiveBg:   tcell.ColorRebeccaPurple,
		MenuKeyColor:      tcell.ColorRebeccaPurple,
		TitleColor:        tcell.ColorDarkOrange,
		CounterColor:      tcell.ColorNavy,
		OwnColor:          tcell.ColorTeal,
		PendingColor:      tcell.ColorGray,
		FailedColor:       tcell.ColorRed,
		FlashInfoColor:    tcell.ColorNavy,
		FlashErrColor:     tcell.ColorRed,
		PromptBorderColor: tcell.ColorRebeccaPurple,
	}
}

// ThemeFor picks the theme matching the dark mode setting.
func ThemeFor(dark bool) *Theme {
	if dark {
		return DarkTheme()
	}
	return LightTheme()
}

// Color returns a tview color tag value for c.
func Color(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
