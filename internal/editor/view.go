package editor

import (
	"fmt"
	"strings"
)

// View implements tea.Model.
func (m Model) View() string {
	switch m.mode {
	case modeEdit, modeEditField:
		return m.viewFormScreen()
	case modePickFile:
		return m.viewPickerScreen()
	default:
		return m.viewListScreen()
	}
}

// viewListScreen renders the main record browser.
func (m Model) viewListScreen() string {
	var b strings.Builder

	// === Row 1: Title bar ===
	title := centerText("-- Retinal Image Registry --", m.width)
	b.WriteString(titleBarStyle.Render(title))
	b.WriteByte('\n')

	// Background fill line (reused throughout)
	bgLine := bgFillStyle.Render(strings.Repeat("░", m.width))

	// Vertical centering: distribute extra rows above and below box.
	// Fixed content: 1 title + box(19) + message(1) + help(1) = 22 rows
	extraV := max(0, m.height-22)
	topPad := max(1, extraV/2)
	bottomPad := max(1, extraV-topPad)

	for i := 0; i < topPad; i++ {
		b.WriteString(bgLine)
		b.WriteByte('\n')
	}

	boxW := 64
	padL := max(0, (m.width-boxW-2)/2)
	padR := max(0, m.width-padL-boxW-2)

	topBorder := bgFillStyle.Render(strings.Repeat("░", padL)) +
		listBorderStyle.Render("╒"+strings.Repeat("═", boxW)+"╕") +
		bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
	b.WriteString(topBorder)
	b.WriteByte('\n')

	// === Header text inside box ===
	headerText := "-- Press Enter to Edit Highlighted Record --"
	headerLine := listBorderStyle.Render("│") +
		listHeaderStyle.Render(centerText(headerText, boxW)) +
		listBorderStyle.Render("│")
	b.WriteString(bgFillStyle.Render(strings.Repeat("░", padL)) + headerLine + bgFillStyle.Render(strings.Repeat("░", max(0, padR))))
	b.WriteByte('\n')

	emptyBoxLine := bgFillStyle.Render(strings.Repeat("░", padL)) +
		listBorderStyle.Render("│") +
		listItemStyle.Render(strings.Repeat(" ", boxW)) +
		listBorderStyle.Render("│") +
		bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
	b.WriteString(emptyBoxLine)
	b.WriteByte('\n')

	// === Column title row ===
	colHeader := m.renderColumnTitle(boxW)
	colLine := bgFillStyle.Render(strings.Repeat("░", padL)) +
		listBorderStyle.Render("│") +
		columnTitleStyle.Render(padRight(colHeader, boxW)) +
		listBorderStyle.Render("│") +
		bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
	b.WriteString(colLine)
	b.WriteByte('\n')

	b.WriteString(emptyBoxLine)
	b.WriteByte('\n')

	// === Record list (scrolling lightbar) ===
	total := len(m.records)
	startIdx := m.scrollOffset
	for row := 0; row < listVisible; row++ {
		idx := startIdx + row
		isHighlight := idx == m.cursor && total > 0

		var rowContent string
		if idx < 0 || idx >= total {
			if total == 0 && row == listVisible/2 {
				rowContent = listItemStyle.Render(centerText("No images registered. Press Ins to add one.", boxW))
			} else {
				rowContent = listItemStyle.Render(strings.Repeat(" ", boxW))
			}
		} else {
			rowContent = m.renderRecordRow(idx, isHighlight, boxW)
		}

		line := bgFillStyle.Render(strings.Repeat("░", padL)) +
			listBorderStyle.Render("│") +
			rowContent +
			listBorderStyle.Render("│") +
			bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
		b.WriteString(line)
		b.WriteByte('\n')
	}

	// === Bottom border ===
	botBorder := bgFillStyle.Render(strings.Repeat("░", padL)) +
		listBorderStyle.Render("╘"+strings.Repeat("═", boxW)+"╛") +
		bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
	b.WriteString(botBorder)
	b.WriteByte('\n')

	// === Message or background ===
	if m.message != "" {
		msgLine := bgFillStyle.Render(strings.Repeat("░", padL)) +
			flashMessageStyle.Render(" "+padRight(m.message, boxW+1)) +
			bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
		b.WriteString(msgLine)
	} else {
		b.WriteString(bgLine)
	}
	b.WriteByte('\n')

	for i := 0; i < bottomPad; i++ {
		b.WriteString(bgLine)
		b.WriteByte('\n')
	}

	// === Bottom help bar ===
	helpText := centerText("Ins - Register  F2 - Delete  F3 - Sort  Alt-H - Help  ESC - Quit", m.width)
	b.WriteString(helpBarStyle.Render(helpText))

	// === Overlay dialogs ===
	result := b.String()
	switch m.mode {
	case modeDeleteConfirm:
		result = m.overlayConfirmDialog(result, "-- Delete Record --",
			fmt.Sprintf("Delete %s and its image file? ", m.deleteID))
	case modeFileChanged:
		result = m.overlayConfirmDialog(result, "-- Metadata Changed on Disk --",
			"Reload records from disk? ")
	case modeHelp:
		result = m.overlayHelpScreen(result)
	}

	return result
}

// renderColumnTitle returns the column header text based on listType.
func (m Model) renderColumnTitle(width int) string {
	nameStr := "  #  Image ID        "
	var cols string
	switch m.listType {
	case 1:
		cols = "Patient          Diagnosis"
	case 2:
		cols = "Split        Acquired"
	case 3:
		cols = "Size         Fovea"
	}
	full := nameStr + cols
	if len(full) > width {
		full = full[:width]
	}
	return full
}

// renderRecordRow renders a single record row in the list.
func (m Model) renderRecordRow(idx int, isHighlight bool, boxW int) string {
	r := m.records[idx]

	numStr := fmt.Sprintf(" %3d", idx+1)
	idStr := padRight(r.ID, 16)

	var dataCols string
	switch m.listType {
	case 1:
		dataCols = padRight(r.PatientID, 17) + padRight(r.Diagnosis, 26)
	case 2:
		dataCols = padRight(string(r.Split), 13) + padRight(formatDate(r.AcquisitionDate), 30)
	case 3:
		size := "-"
		if r.Dims != nil {
			size = fmt.Sprintf("%dx%d", r.Dims.W, r.Dims.H)
		}
		fovea := "-"
		if r.Fovea != nil {
			fovea = fmt.Sprintf("(%g, %g)", r.Fovea.X, r.Fovea.Y)
		}
		dataCols = padRight(size, 13) + padRight(fovea, 30)
	}

	content := numStr + "  " + idStr + dataCols
	if len(content) < boxW {
		content += strings.Repeat(" ", boxW-len(content))
	} else if len(content) > boxW {
		content = content[:boxW]
	}

	if isHighlight {
		return highlightTextStyle.Render(content)
	}
	return listItemStyle.Render(content)
}

// viewPickerScreen renders the source-image file picker.
func (m Model) viewPickerScreen() string {
	var b strings.Builder

	title := centerText("-- Register New Image --", m.width)
	b.WriteString(titleBarStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(pickerTitleStyle.Render("  Select an image file (.png, .jpg, .jpeg):"))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteByte('\n')
	if m.message != "" {
		b.WriteString(flashMessageStyle.Render("  " + m.message))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(helpBarStyle.Render(centerText("Enter - Select  ESC - Cancel", m.width)))
	return b.String()
}

// centerText centers a string within a given width.
func centerText(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-pad-len(s))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
