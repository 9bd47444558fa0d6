package editor

import (
	"github.com/charmbracelet/lipgloss"
)

// DOS CGA color palette mapped to ANSI color indices. The editor keeps
// the classic blue-background data-entry look.
var dosColors = [16]string{
	"0",  // 0:  Black
	"4",  // 1:  Blue
	"2",  // 2:  Green
	"6",  // 3:  Cyan
	"1",  // 4:  Red
	"5",  // 5:  Magenta
	"3",  // 6:  Brown/Yellow
	"7",  // 7:  Light Gray
	"8",  // 8:  Dark Gray
	"12", // 9:  Light Blue
	"10", // 10: Light Green
	"14", // 11: Light Cyan
	"9",  // 12: Light Red
	"13", // 13: Light Magenta
	"11", // 14: Yellow
	"15", // 15: White
}

var dosBgColors = [8]string{
	"0", // Black
	"4", // Blue
	"2", // Green
	"6", // Cyan
	"1", // Red
	"5", // Magenta
	"3", // Brown
	"7", // Light Gray
}

// dosColor creates a lipgloss style from separate DOS bg, fg values.
func dosColor(bg, fg int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(dosColors[fg&0x0F])).
		Background(lipgloss.Color(dosBgColors[bg&0x07]))
}

// --- Title/Status bars ---
var titleBarStyle = dosColor(0, 15).Bold(true).Background(lipgloss.Color("8"))
var helpBarStyle = dosColor(0, 15).Bold(true).Background(lipgloss.Color("8"))

// --- Background fill ---
var bgFillStyle = dosColor(1, 7)

// --- List box ---
var listBorderStyle = dosColor(1, 9)
var listHeaderStyle = dosColor(1, 14)
var columnTitleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(dosColors[15])).
	Background(lipgloss.Color(dosColors[9]))
var listItemStyle = dosColor(1, 15)

// --- Highlighted item ---
var highlightTextStyle = dosColor(0, 14)

// --- Record form ---
var fieldLabelStyle = dosColor(1, 15)
var fieldDisplayStyle = dosColor(1, 14)
var fieldEditStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(dosColors[14]))
var editBorderStyle = dosColor(1, 9)
var editInfoLabelStyle = dosColor(1, 9)
var editInfoValueStyle = dosColor(1, 14)

// --- Dialogs ---
var dialogBorderStyle = dosColor(5, 15)
var dialogTitleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(dosColors[15])).
	Background(lipgloss.Color(dosColors[13])).
	Bold(true)
var dialogTextStyle = dosColor(5, 14)

// --- Help screen ---
var helpBoxStyle = dosColor(4, 15)
var helpTitleStyle = dosColor(4, 14)

// --- Flash message ---
var flashMessageStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(dosColors[14]))

// --- Confirm dialog buttons ---
var buttonActiveStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(dosColors[15])).
	Background(lipgloss.Color(dosColors[0])).
	Bold(true)
var buttonInactiveStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(dosColors[15])).
	Background(lipgloss.Color(dosColors[5]))

// --- File picker overlay ---
var pickerTitleStyle = dosColor(1, 14)

// --- Edit field fill character ---
const fieldFillChar = '░'
