package editor

import (
	"fmt"
	"strings"
)

// viewFormScreen renders the per-record field form.
func (m Model) viewFormScreen() string {
	if m.draft == nil {
		return "No record selected"
	}

	var b strings.Builder

	var titleText string
	if m.editID == "" {
		titleText = "-- Register New Image --"
	} else {
		titleText = "-- Edit Image Record --"
	}
	title := centerText(titleText, m.width)
	b.WriteString(titleBarStyle.Render(title))
	b.WriteByte('\n')

	bgLine := bgFillStyle.Render(strings.Repeat("░", m.width))

	// Fixed content: 1 title + box(nFields+5) + message(1) + help(1)
	boxRows := len(m.fields) + 3
	extraV := max(0, m.height-boxRows-5)
	topPad := max(1, extraV/2)
	bottomPad := max(1, extraV-topPad)

	for i := 0; i < topPad; i++ {
		b.WriteString(bgLine)
		b.WriteByte('\n')
	}

	boxW := 68
	padL := max(0, (m.width-boxW-2)/2)
	padR := max(0, m.width-padL-boxW-2)

	topBorder := bgFillStyle.Render(strings.Repeat("░", padL)) +
		editBorderStyle.Render("╒"+strings.Repeat("═", boxW)+"╕") +
		bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
	b.WriteString(topBorder)
	b.WriteByte('\n')

	emptyRow := bgFillStyle.Render(strings.Repeat("░", padL)) +
		editBorderStyle.Render("│") +
		fieldDisplayStyle.Render(strings.Repeat(" ", boxW)) +
		editBorderStyle.Render("│") +
		bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
	b.WriteString(emptyRow)
	b.WriteByte('\n')

	// === Field rows ===
	for i := range m.fields {
		rowContent := m.renderFormField(i, boxW)
		line := bgFillStyle.Render(strings.Repeat("░", padL)) +
			editBorderStyle.Render("│") +
			rowContent +
			editBorderStyle.Render("│") +
			bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
		b.WriteString(line)
		b.WriteByte('\n')
	}

	// === Info row ===
	var infoRendered string
	var infoRaw string
	if m.editID == "" {
		infoRaw = "New registration"
		infoRendered = editInfoValueStyle.Render(infoRaw)
	} else {
		pos, total := m.recordPosition()
		infoRaw = fmt.Sprintf("Record %d of %d", pos, total)
		infoRendered = editInfoLabelStyle.Render("Record ") +
			editInfoValueStyle.Render(fmt.Sprintf("%d", pos)) +
			editInfoLabelStyle.Render(" of ") +
			editInfoValueStyle.Render(fmt.Sprintf("%d", total))
	}
	infoPad := 3
	infoLine := bgFillStyle.Render(strings.Repeat("░", padL)) +
		editBorderStyle.Render("│") +
		fieldDisplayStyle.Render(strings.Repeat(" ", infoPad)) +
		infoRendered +
		fieldDisplayStyle.Render(strings.Repeat(" ", max(0, boxW-infoPad-len(infoRaw)))) +
		editBorderStyle.Render("│") +
		bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
	b.WriteString(infoLine)
	b.WriteByte('\n')

	botBorder := bgFillStyle.Render(strings.Repeat("░", padL)) +
		editBorderStyle.Render("╘"+strings.Repeat("═", boxW)+"╛") +
		bgFillStyle.Render(strings.Repeat("░", max(0, padR)))
	b.WriteString(botBorder)
	b.WriteByte('\n')

	// === Message row ===
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

	helpText := centerText("Enter - Edit Field  Space - Cycle Split  F10 - Abort  ESC - Save", m.width)
	b.WriteString(helpBarStyle.Render(helpText))

	return b.String()
}

// renderFormField renders one label + value row inside the form box.
func (m Model) renderFormField(fieldIdx int, boxW int) string {
	f := m.fields[fieldIdx]
	isActive := m.editField == fieldIdx

	const leftPad = 3
	label := padRight(f.Label, 11) + " : "
	labelLen := len(label)

	var value string
	if f.Get != nil {
		value = f.Get(m.draft)
	}
	if len(value) > f.Width {
		value = value[:f.Width]
	}

	rawW := leftPad + labelLen + f.Width
	lead := fieldDisplayStyle.Render(strings.Repeat(" ", leftPad))
	tail := fieldDisplayStyle.Render(strings.Repeat(" ", max(0, boxW-rawW)))

	// Actively typing into this field
	if isActive && m.mode == modeEditField {
		return lead + fieldLabelStyle.Render(label) + m.textInput.View() + tail
	}

	// Highlighted field, ready to edit
	if isActive && m.mode == modeEdit {
		fillStr := strings.Repeat(string(fieldFillChar), max(0, f.Width-len(value)))
		return lead + fieldLabelStyle.Render(label) + fieldEditStyle.Render(value+fillStr) + tail
	}

	displayValue := padRight(value, f.Width)
	if f.Type == ftDisplay {
		return lead + fieldLabelStyle.Render(label) + editInfoValueStyle.Render(displayValue) + tail
	}
	return lead + fieldLabelStyle.Render(label) + fieldDisplayStyle.Render(displayValue) + tail
}

// recordPosition returns the 1-based list position of the record being
// edited and the collection size.
func (m Model) recordPosition() (int, int) {
	for i, r := range m.records {
		if r.ID == m.editID {
			return i + 1, len(m.records)
		}
	}
	return 1, len(m.records)
}
