package ptrtext

// Report summarises how a pointer blob lines up with a text blob. A value
// matching a record start is not proof it is a text pointer, and a real
// pointer into the middle of a record is never counted as one; MidString
// and OutOfRange show how much of the table was ignored.
type Report struct {
	TextSize    int
	PointerSize int
	Records     int
	Slots       int
	Trailing    int // bytes after the last full slot
	Valid       int // slots landing on a record start
	Targets     int // distinct record starts referenced
	FanIn       int // targets referenced by more than one slot
	MidString   int // slots inside the text but not on a record start
	OutOfRange  int // slots at or past the end of the text
}

// Inspect builds a Report for the two blobs.
func Inspect(text, pointers []byte) Report {
	index := ScanRecords(text)
	table := ParsePointerTable(pointers)

	r := Report{
		TextSize:    len(text),
		PointerSize: len(pointers),
		Records:     index.Len(),
		Slots:       len(table.Slots()),
		Trailing:    table.Trailing(),
	}
	for _, s := range table.Slots() {
		switch {
		case index.Contains(s.Value):
			r.Valid++
		case uint64(s.Value) < uint64(len(text)):
			r.MidString++
		default:
			r.OutOfRange++
		}
	}
	for _, v := range ValidTargets(table, index) {
		r.Targets++
		if len(table.Positions(v)) > 1 {
			r.FanIn++
		}
	}
	return r
}
