package editor

// Up moves the primary cursor up one visual row.
func (e *Editor) Up(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().Up(e.Doc, selecting))
}

// Down moves the primary cursor down one visual row.
func (e *Editor) Down(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().Down(e.Doc, selecting))
}

// Left moves the primary cursor left one character.
func (e *Editor) Left(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().Left(e.Doc, selecting))
}

// Right moves the primary cursor right one character.
func (e *Editor) Right(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().Right(e.Doc, selecting))
}

// JumpLeft skips the alphabetic run to the left.
func (e *Editor) JumpLeft(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().JumpLeft(e.Doc, selecting))
}

// JumpRight skips the alphabetic run to the right.
func (e *Editor) JumpRight(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().JumpRight(e.Doc, selecting))
}

// StartOfLine moves to the first non-whitespace character.
func (e *Editor) StartOfLine(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().StartOfLine(e.Doc, selecting))
}

// EndOfLine moves to char_count.
func (e *Editor) EndOfLine(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().EndOfLine(e.Doc, selecting))
}

// ScreenUp scrolls the viewport and cursor up by MaxRows.
func (e *Editor) ScreenUp(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().ScreenUp(e.Doc, selecting))
}

// ScreenDown scrolls the viewport and cursor down by MaxRows.
func (e *Editor) ScreenDown(selecting bool) {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().ScreenDown(e.Doc, selecting))
}

// SelectWord extends the primary cursor's selection to the word under it.
func (e *Editor) SelectWord() {
	e.FlushActionBuffer()
	e.Cursors.SetPrimary(e.Cursors.Primary().SelectWord(e.Doc))
}

// NewCursorUp adds a secondary cursor one line above the primary.
func (e *Editor) NewCursorUp() {
	e.FlushActionBuffer()
	e.Cursors.NewCursorUp(e.Doc)
}

// NewCursorDown adds a secondary cursor one line below the primary.
func (e *Editor) NewCursorDown() {
	e.FlushActionBuffer()
	e.Cursors.NewCursorDown(e.Doc)
}
