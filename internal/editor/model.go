// Package editor implements the full-screen data-entry TUI for the
// image registry: a scrolling record list, a per-record form, and a
// file picker for registering new images.
package editor

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AlbertJQM/Proyecto-Final/internal/record"
	"github.com/AlbertJQM/Proyecto-Final/internal/registry"
	"github.com/AlbertJQM/Proyecto-Final/pkg/imginfo"
)

const (
	listVisible = 13 // Number of records visible in list
	minWidth    = 80
	minHeight   = 25
)

// ExternalChangeMsg is sent into the program when the metadata CSV is
// modified outside this process.
type ExternalChangeMsg struct{}

// editorMode represents the current interaction state.
type editorMode int

const (
	modeList          editorMode = iota // Main record browser
	modeEdit                           // Per-record field form
	modeEditField                      // Actively editing a field value
	modePickFile                       // Choosing a source image to register
	modeDeleteConfirm                  // Confirm record delete
	modeHelp                           // Help screen overlay
	modeFileChanged                    // Metadata modified externally
)

// Model is the BubbleTea model for the registry editor.
type Model struct {
	manager *registry.Manager

	// List mode state
	records      []*record.Record // Display snapshot
	cursor       int
	scrollOffset int
	listType     int  // Column view mode (1-3)
	listAlpha    bool // Alphabetical-by-patient sort active
	fileMtime    time.Time

	// Form state
	draft     *record.Record // Working copy being edited
	editID    string         // Empty while registering a new image
	srcPath   string         // Picked source for registration
	deleteID  string
	editField int
	fields    []fieldDef

	textInput textinput.Model
	picker    filepicker.Model

	confirmYes bool

	width   int
	height  int
	mode    editorMode
	message string // Flash message
}

// New creates the editor model over an already-bootstrapped manager.
func New(mgr *registry.Manager) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 80
	ti.Width = 40

	m := Model{
		manager:   mgr,
		listType:  1,
		fields:    editFields(),
		textInput: ti,
		width:     minWidth,
		height:    minHeight,
		mode:      modeList,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("Retinal Image Registry")
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width < minWidth {
			m.width = minWidth
		}
		if m.height < minHeight {
			m.height = minHeight
		}
		return m, nil

	case ExternalChangeMsg:
		if mtime, ok := m.manager.CSVModTime(); ok && mtime.Equal(m.fileMtime) {
			// Our own write looping back through the watcher.
			return m, nil
		}
		if m.mode == modeList {
			m.mode = modeFileChanged
			m.confirmYes = false
		} else {
			m.message = "Metadata file changed on disk"
		}
		return m, nil
	}

	// The file picker consumes non-key messages while active.
	if m.mode == modePickFile {
		return m.updatePicker(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.mode {
		case modeList:
			return m.updateList(key)
		case modeEdit:
			return m.updateEdit(key)
		case modeEditField:
			return m.updateEditField(key)
		case modeDeleteConfirm, modeFileChanged:
			return m.updateConfirm(key)
		case modeHelp:
			return m.updateHelp(key)
		}
	}
	return m, nil
}

// --- List Mode ---

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	total := len(m.records)

	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < total-1 {
			m.cursor++
		}
	case tea.KeyHome:
		m.cursor = 0
	case tea.KeyEnd:
		if total > 0 {
			m.cursor = total - 1
		}
	case tea.KeyPgUp:
		m.cursor -= listVisible
		if m.cursor < 0 {
			m.cursor = 0
		}
	case tea.KeyPgDown:
		m.cursor += listVisible
		if m.cursor >= total {
			m.cursor = total - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
	case tea.KeyEnter:
		// Open the form for the highlighted record
		if total == 0 {
			return m, nil
		}
		rec := m.records[m.cursor]
		m.draft = rec.Clone()
		m.editID = rec.ID
		m.srcPath = rec.FilePath
		m.editField = m.firstEditableField()
		m.mode = modeEdit
		return m, nil
	case tea.KeyInsert:
		return m.startPicker()
	case tea.KeyEscape:
		return m, tea.Quit
	case tea.KeyF2:
		if total == 0 {
			return m, nil
		}
		m.deleteID = m.records[m.cursor].ID
		m.mode = modeDeleteConfirm
		m.confirmYes = false
		return m, nil
	case tea.KeyF3:
		m.toggleSort()
		return m, nil
	default:
		switch msg.String() {
		case "left":
			if m.listType > 1 {
				m.listType--
			}
		case "right":
			if m.listType < 3 {
				m.listType++
			}
		case "i":
			return m.startPicker()
		case "alt+h":
			m.mode = modeHelp
			return m, nil
		}
	}
	m.clampScroll()
	return m, nil
}

// --- File Picker Mode ---

func (m Model) startPicker() (tea.Model, tea.Cmd) {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".png", ".jpg", ".jpeg"}
	if cwd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = cwd
	}
	fp.Height = listVisible
	m.picker = fp
	m.mode = modePickFile
	m.message = ""
	return m, fp.Init()
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEscape {
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m.startRegistration(path)
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.message = fmt.Sprintf("Not an image file: %s", path)
		return m, cmd
	}
	return m, cmd
}

// startRegistration opens the form on a fresh draft for the picked file.
// Pixel dimensions are pre-filled from the image header when readable.
func (m Model) startRegistration(path string) (tea.Model, tea.Cmd) {
	draft := &record.Record{
		FilePath:        path,
		AcquisitionDate: time.Now(),
		Split:           record.SplitTrain,
	}
	if w, h, err := imginfo.Probe(path); err == nil {
		draft.Dims = &record.Dims{W: w, H: h}
	}

	m.draft = draft
	m.editID = ""
	m.srcPath = path
	m.editField = m.firstEditableField()
	m.mode = modeEdit
	m.message = ""
	return m, nil
}

// --- Form Mode (field navigation) ---

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyEnter:
		f := m.fields[m.editField]
		if f.Type == ftDisplay {
			m.editField = m.nextEditableField(1)
			return m, nil
		}
		if f.Type == ftChoice {
			m.cycleChoice(f)
			return m, nil
		}
		return m.startFieldEdit()

	case tea.KeyDown:
		m.editField = m.nextEditableField(1)

	case tea.KeyUp:
		m.editField = m.nextEditableField(-1)

	case tea.KeySpace:
		if m.fields[m.editField].Type == ftChoice {
			m.cycleChoice(m.fields[m.editField])
		}

	case tea.KeyEscape:
		// Commit and return to list
		return m.commitDraft()

	case tea.KeyF2:
		if m.editID != "" {
			m.deleteID = m.editID
			m.mode = modeDeleteConfirm
			m.confirmYes = false
		}
		return m, nil

	case tea.KeyF10:
		// Abort without saving
		m.draft = nil
		m.mode = modeList
		m.message = ""
		return m, nil

	default:
		switch msg.String() {
		case "ctrl+home":
			m.editField = m.firstEditableField()
		case "ctrl+end":
			m.editField = m.lastEditableField()
		}
	}
	return m, nil
}

// cycleChoice advances a choice field to its next allowed value.
func (m *Model) cycleChoice(f fieldDef) {
	cur := f.Get(m.draft)
	next := f.Choices[0]
	for i, c := range f.Choices {
		if c == cur {
			next = f.Choices[(i+1)%len(f.Choices)]
			break
		}
	}
	if err := f.Set(m.draft, next); err == nil {
		m.message = ""
	}
}

// nextEditableField finds the next non-display field in the given direction.
func (m Model) nextEditableField(dir int) int {
	n := len(m.fields)
	idx := m.editField
	for i := 0; i < n; i++ {
		idx += dir
		if idx > n-1 {
			idx = 0
		} else if idx < 0 {
			idx = n - 1
		}
		if m.fields[idx].Type != ftDisplay {
			return idx
		}
	}
	return m.editField
}

func (m Model) firstEditableField() int {
	for i, f := range m.fields {
		if f.Type != ftDisplay {
			return i
		}
	}
	return 0
}

func (m Model) lastEditableField() int {
	for i := len(m.fields) - 1; i >= 0; i-- {
		if m.fields[i].Type != ftDisplay {
			return i
		}
	}
	return len(m.fields) - 1
}

// startFieldEdit enters field editing mode for the current field.
func (m Model) startFieldEdit() (Model, tea.Cmd) {
	f := m.fields[m.editField]
	val := f.Get(m.draft)

	m.mode = modeEditField
	m.textInput.SetValue(val)
	m.textInput.CharLimit = f.Width
	m.textInput.Width = f.Width
	m.textInput.Placeholder = ""
	m.textInput.CursorEnd()
	m.textInput.Focus()

	return m, textinput.Blink
}

// --- Field Editing Mode ---

func (m Model) updateEditField(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.fields[m.editField]

	switch msg.Type {
	case tea.KeyEnter, tea.KeyTab, tea.KeyDown:
		if err := m.applyFieldValue(f); err != nil {
			m.message = fmt.Sprintf("Invalid: %v", err)
			return m, nil
		}
		m.textInput.Blur()
		m.mode = modeEdit
		m.editField = m.nextEditableField(1)
		return m, nil

	case tea.KeyUp:
		if err := m.applyFieldValue(f); err != nil {
			m.message = fmt.Sprintf("Invalid: %v", err)
			return m, nil
		}
		m.textInput.Blur()
		m.mode = modeEdit
		m.editField = m.nextEditableField(-1)
		return m, nil

	case tea.KeyEscape:
		// Cancel edit, don't apply
		m.textInput.Blur()
		m.mode = modeEdit
		return m, nil

	default:
		// Filter input for numeric field types
		if len(msg.Runes) == 1 {
			ch := msg.Runes[0]
			switch f.Type {
			case ftInteger:
				if (ch < '0' || ch > '9') && ch != '-' {
					return m, nil
				}
			case ftFloat:
				if (ch < '0' || ch > '9') && ch != '.' && ch != '-' {
					return m, nil
				}
			case ftDate:
				if (ch < '0' || ch > '9') && ch != '-' {
					return m, nil
				}
			}
		}

		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
}

// applyFieldValue validates and applies the current input to the draft.
func (m *Model) applyFieldValue(f fieldDef) error {
	val := m.textInput.Value()

	if f.Type == ftInteger && strings.TrimSpace(val) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("not a number")
		}
		if n < f.Min || n > f.Max {
			return fmt.Errorf("must be %d-%d", f.Min, f.Max)
		}
	}

	if f.Set != nil {
		if err := f.Set(m.draft, val); err != nil {
			return err
		}
		m.message = ""
	}
	return nil
}

// --- Commit ---

// commitDraft pushes the form through the manager: a registration when
// editing a fresh draft, a field merge plus possible relocation when
// editing an existing record. The manager rejects incomplete drafts and
// the form stays open with the reason flashed.
func (m Model) commitDraft() (tea.Model, tea.Cmd) {
	if m.draft == nil {
		m.mode = modeList
		return m, nil
	}

	if m.editID == "" {
		meta := registry.Metadata{
			PatientID:       m.draft.PatientID,
			AcquisitionDate: m.draft.AcquisitionDate,
			Diagnosis:       m.draft.Diagnosis,
			Split:           m.draft.Split,
			Fovea:           m.draft.Fovea,
			Dims:            m.draft.Dims,
		}
		rec, err := m.manager.Register(m.srcPath, meta)
		if err != nil {
			m.message = fmt.Sprintf("Register failed: %v", err)
			return m, nil
		}
		m.message = fmt.Sprintf("Registered %s", rec.ID)
	} else {
		cs := record.ChangeSet{
			FilePath:        m.draft.FilePath,
			Split:           m.draft.Split,
			PatientID:       &m.draft.PatientID,
			AcquisitionDate: &m.draft.AcquisitionDate,
			Diagnosis:       &m.draft.Diagnosis,
			SetFovea:        true,
			Fovea:           m.draft.Fovea,
			SetDims:         true,
			Dims:            m.draft.Dims,
		}
		if err := m.manager.Update(m.editID, cs); err != nil {
			m.message = fmt.Sprintf("Update failed: %v", err)
			return m, nil
		}
		m.message = fmt.Sprintf("Updated %s", m.editID)
	}

	m.draft = nil
	m.refresh()
	m.mode = modeList
	return m, nil
}

// --- Confirm Dialog ---

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyLeft, tea.KeyRight:
		m.confirmYes = !m.confirmYes
	case tea.KeyEnter:
		if m.confirmYes {
			return m.executeConfirm()
		}
		return m.rejectConfirm()
	case tea.KeyEscape:
		m.mode = modeList
	default:
		switch msg.String() {
		case "y", "Y":
			m.confirmYes = true
			return m.executeConfirm()
		case "n", "N":
			return m.rejectConfirm()
		}
	}
	return m, nil
}

func (m Model) rejectConfirm() (tea.Model, tea.Cmd) {
	if m.mode == modeFileChanged {
		m.message = "Keeping in-memory records"
	}
	m.mode = modeList
	return m, nil
}

func (m Model) executeConfirm() (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeDeleteConfirm:
		if err := m.manager.Delete(m.deleteID); err != nil {
			m.message = fmt.Sprintf("Delete failed: %v", err)
		} else {
			m.message = fmt.Sprintf("Deleted %s", m.deleteID)
		}
		m.deleteID = ""
		m.draft = nil
		m.refresh()
		m.mode = modeList
		return m, nil

	case modeFileChanged:
		m.manager.Reload()
		m.refresh()
		m.message = "Reloaded from disk"
		m.mode = modeList
		return m, nil
	}

	m.mode = modeList
	return m, nil
}

// --- Help Mode ---

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key dismisses help
	m.mode = modeList
	return m, nil
}

// --- Helper Methods ---

// refresh re-snapshots the collection for display and records the CSV
// mtime so the watcher can tell our own writes from external ones.
func (m *Model) refresh() {
	m.records = m.manager.List()
	if m.listAlpha {
		sortRecords(m.records, true)
	}
	if mtime, ok := m.manager.CSVModTime(); ok {
		m.fileMtime = mtime
	}
	if m.cursor >= len(m.records) {
		m.cursor = len(m.records) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampScroll()
}

func (m *Model) toggleSort() {
	m.listAlpha = !m.listAlpha
	if m.listAlpha {
		m.message = "Sorting by patient id"
		sortRecords(m.records, true)
	} else {
		m.message = "Restoring registration order"
		m.records = m.manager.List()
	}
	m.cursor = 0
	m.scrollOffset = 0
}

// clampScroll adjusts scrollOffset so the cursor is always visible,
// with the lightbar stopping at ~2/3 of the visible area before scrolling.
func (m *Model) clampScroll() {
	total := len(m.records)
	scrollThreshold := listVisible * 2 / 3

	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+scrollThreshold {
		m.scrollOffset = m.cursor - scrollThreshold
	}

	maxOffset := total - listVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// sortRecords sorts records by case-folded patient id in place, keeping
// registration order among equal patients.
func sortRecords(records []*record.Record, alpha bool) {
	if !alpha {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		return strings.ToLower(records[i].PatientID) < strings.ToLower(records[j].PatientID)
	})
}
