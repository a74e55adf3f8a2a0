package deck

// Table is an ordered sequence of rows
type Table interface {
	Rows() []Row
	// CloneRow returns a deep, detached copy of the row at index i.
	CloneRow(i int) (Row, error)
	// AppendRow attaches a detached row (usually from CloneRow) at the end of the table.
	AppendRow(r Row) error
	// RemoveRow detaches the row at index i.
	RemoveRow(i int) error
}

// Row is an ordered sequence of cells
type Row interface {
	Cells() []Cell
}

// Cell is a table cell. Its content is a regular text container.
type Cell interface {
	TextContainer
}
