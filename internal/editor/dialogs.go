package editor

import (
	"strings"
)

// overlayConfirmDialog renders a confirmation dialog centered over the
// background, with Y/N buttons driven by confirmYes.
func (m Model) overlayConfirmDialog(background, title, question string) string {
	lines := strings.Split(background, "\n")

	dialogW := 62
	dialogH := 7
	startRow := (m.height - dialogH) / 2
	startCol := (m.width - dialogW) / 2
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	border := dialogBorderStyle.Render("╔" + strings.Repeat("═", dialogW-2) + "╗")
	borderBot := dialogBorderStyle.Render("╚" + strings.Repeat("═", dialogW-2) + "╝")
	side := dialogBorderStyle.Render("║")

	titlePad := (dialogW - 2 - len(title)) / 2
	if titlePad < 0 {
		titlePad = 0
	}
	titleLine := side +
		dialogTitleStyle.Render(strings.Repeat(" ", titlePad)+title+strings.Repeat(" ", max(0, dialogW-2-titlePad-len(title)))) +
		side

	emptyLine := side +
		dialogTextStyle.Render(strings.Repeat(" ", dialogW-2)) +
		side

	qPad := (dialogW - 2 - len(question)) / 2
	if qPad < 0 {
		qPad = 0
	}
	questionLine := side +
		dialogTextStyle.Render(strings.Repeat(" ", qPad)+question+strings.Repeat(" ", max(0, dialogW-2-qPad-len(question)))) +
		side

	// Button line: " Yes " (5) + "  " (2) + " No " (4) = 11 visible chars
	btnVisW := 11
	var yesBtn, noBtn string
	if m.confirmYes {
		yesBtn = buttonActiveStyle.Render(" Yes ")
		noBtn = buttonInactiveStyle.Render(" No ")
	} else {
		yesBtn = buttonInactiveStyle.Render(" Yes ")
		noBtn = buttonActiveStyle.Render(" No ")
	}
	btnGap := dialogTextStyle.Render("  ")
	btnContent := yesBtn + btnGap + noBtn
	btnPad := (dialogW - 2 - btnVisW) / 2
	buttonLine := side +
		dialogTextStyle.Render(strings.Repeat(" ", max(0, btnPad))) +
		btnContent +
		dialogTextStyle.Render(strings.Repeat(" ", max(0, dialogW-2-btnPad-btnVisW))) +
		side

	dialogLines := []string{border, titleLine, emptyLine, questionLine, emptyLine, buttonLine, borderBot}

	// Overlay dialog on background, filling remaining width with styled ░
	tailW := max(0, m.width-startCol-dialogW)
	tail := bgFillStyle.Render(strings.Repeat("░", tailW))
	for i, dl := range dialogLines {
		row := startRow + i
		if row >= 0 && row < len(lines) {
			lines[row] = padToCol(lines[row], startCol) + dl + tail
		}
	}

	return strings.Join(lines, "\n")
}

// overlayHelpScreen renders the help screen overlay.
func (m Model) overlayHelpScreen(background string) string {
	lines := strings.Split(background, "\n")

	dialogW := 48
	helpBorder := helpBoxStyle
	helpTitle := helpTitleStyle

	border := helpBorder.Render("╔" + strings.Repeat("═", dialogW-2) + "╗")
	borderBot := helpBorder.Render("╚" + strings.Repeat("═", dialogW-2) + "╝")
	side := helpBorder.Render("║")

	helpLines := []string{
		border,
		side + helpTitle.Render(centerText("Image Registry Help", dialogW-2)) + side,
		side + helpBorder.Render(strings.Repeat(" ", dialogW-2)) + side,
		side + helpBorder.Render(centerText("Enter - Edit Highlighted Record", dialogW-2)) + side,
		side + helpBorder.Render(centerText("Ins - Register a New Image", dialogW-2)) + side,
		side + helpBorder.Render(centerText("Up/Down/End/Home/PgUp/PgDn - Scroll", dialogW-2)) + side,
		side + helpBorder.Render(centerText("Left/Right Arrow - Change Columns", dialogW-2)) + side,
		side + helpBorder.Render(centerText("F2 - Delete Highlighted Record", dialogW-2)) + side,
		side + helpBorder.Render(centerText("F3 - Sort by Patient / Restore Order", dialogW-2)) + side,
		side + helpBorder.Render(centerText("ESC - Exit Program", dialogW-2)) + side,
		side + helpBorder.Render(strings.Repeat(" ", dialogW-2)) + side,
		side + helpTitle.Render(centerText("HIT A KEY.", dialogW-2)) + side,
		borderBot,
	}

	dialogH := len(helpLines)
	startRow := (m.height - dialogH) / 2
	startCol := (m.width - dialogW) / 2
	if startRow < 0 {
		startRow = 0
	}

	// Overlay dialog on background, preserving content on both sides
	endCol := startCol + dialogW
	for i, hl := range helpLines {
		row := startRow + i
		if row >= 0 && row < len(lines) {
			left := padToCol(lines[row], startCol)
			right := skipToCol(lines[row], endCol)
			lines[row] = left + hl + right
		}
	}

	return strings.Join(lines, "\n")
}

// approximateVisibleLen estimates the visible length of a styled string
// by stripping ANSI escape sequences.
func approximateVisibleLen(s string) int {
	inEsc := false
	count := 0
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
			continue
		}
		count++
	}
	return count
}

// padToCol truncates or pads a line to reach a specific column.
func padToCol(line string, col int) string {
	vis := approximateVisibleLen(line)
	if vis >= col {
		return truncateToVisual(line, col)
	}
	return line + strings.Repeat(" ", col-vis)
}

// truncateToVisual truncates a string to n visible characters, preserving ANSI.
func truncateToVisual(s string, n int) string {
	var b strings.Builder
	inEsc := false
	count := 0
	for _, r := range s {
		if count >= n && !inEsc {
			break
		}
		b.WriteRune(r)
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
			continue
		}
		count++
	}
	return b.String()
}

// skipToCol returns everything in a string from visible column n onward,
// replaying the last active ANSI escape sequence so styling is preserved.
func skipToCol(s string, n int) string {
	var lastESC strings.Builder // tracks the most recent ANSI sequence
	var curESC strings.Builder  // builds current escape sequence
	inEsc := false
	count := 0
	for i, r := range s {
		if r == '\x1b' {
			inEsc = true
			curESC.Reset()
			curESC.WriteRune(r)
			continue
		}
		if inEsc {
			curESC.WriteRune(r)
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
				lastESC.Reset()
				lastESC.WriteString(curESC.String())
			}
			continue
		}
		if count == n {
			return lastESC.String() + s[i:]
		}
		count++
	}
	return ""
}
