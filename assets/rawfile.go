package assets

import "github.com/goopsie/xfileTools/xstream"

type rawRawFile struct { // RawFile
	Name   xstream.XString
	Len    int32
	Buffer xstream.Ptr32[byte] // Len+1 bytes, NUL terminated
}

type RawFile struct {
	Name     string
	Contents []byte
}

func (f *RawFile) AssetType() AssetType { return AssetRawFile }
func (f *RawFile) AssetName() string    { return f.Name }

func (raw rawRawFile) convert(r *xstream.Reader) (RawFile, error) {
	var (
		f   RawFile
		err error
	)
	if f.Name, err = raw.Name.Resolve(r, "RawFile.name"); err != nil {
		return f, err
	}
	n, err := xstream.Count(r, raw.Len, "RawFile.len")
	if err != nil {
		return f, err
	}
	buf, err := xstream.ResolveArray(r, raw.Buffer, n+1, "RawFile.buffer")
	if err != nil {
		return f, err
	}
	if buf != nil {
		f.Contents = buf[:n]
	}
	return f, nil
}

func (f *RawFile) encode(w *xstream.Writer) error {
	raw := rawRawFile{
		Name:   xstream.StringPtr(f.Name),
		Len:    int32(len(f.Contents)),
		Buffer: xstream.PtrIf[byte](f.Contents != nil),
	}
	if err := w.StoreFixed(raw, "RawFile"); err != nil {
		return err
	}
	w.StoreString(f.Name)
	if f.Contents != nil {
		w.StoreBytes(f.Contents)
		w.StoreBytes([]byte{0})
	}
	return nil
}

type rawStringTable struct { // StringTable
	Name        xstream.XString
	ColumnCount int32
	RowCount    int32
	Values      xstream.Ptr32[xstream.XString] // ColumnCount*RowCount
}

// StringTable is a row-major grid of strings.
type StringTable struct {
	Name        string
	ColumnCount int32
	RowCount    int32
	Values      []string
}

func (t *StringTable) AssetType() AssetType { return AssetStringTable }
func (t *StringTable) AssetName() string    { return t.Name }

// Cell returns the value at row, col or "" when out of range.
func (t *StringTable) Cell(row, col int) string {
	if row < 0 || col < 0 || col >= int(t.ColumnCount) {
		return ""
	}
	i := row*int(t.ColumnCount) + col
	if i >= len(t.Values) {
		return ""
	}
	return t.Values[i]
}

func (raw rawStringTable) convert(r *xstream.Reader) (StringTable, error) {
	t := StringTable{
		ColumnCount: raw.ColumnCount,
		RowCount:    raw.RowCount,
	}
	var err error
	if t.Name, err = raw.Name.Resolve(r, "StringTable.name"); err != nil {
		return t, err
	}
	n, err := xstream.CountProduct(r, raw.ColumnCount, raw.RowCount, "StringTable.values")
	if err != nil {
		return t, err
	}
	t.Values, err = xstream.ConvertArray(r, raw.Values, n, "StringTable.values", resolveString("StringTable.values"))
	return t, err
}

func (t *StringTable) encode(w *xstream.Writer) error {
	if len(t.Values) != int(t.ColumnCount)*int(t.RowCount) {
		return xstream.Errorf(xstream.KindBadLength, "StringTable.values", w.Len(),
			"%d values for %dx%d table", len(t.Values), t.ColumnCount, t.RowCount)
	}
	raw := rawStringTable{
		Name:        xstream.StringPtr(t.Name),
		ColumnCount: t.ColumnCount,
		RowCount:    t.RowCount,
		Values:      xstream.PtrIf[xstream.XString](len(t.Values) > 0),
	}
	if err := w.StoreFixed(raw, "StringTable"); err != nil {
		return err
	}
	w.StoreString(t.Name)
	return storeStrings(w, t.Values, "StringTable.values")
}

type rawLocalizeEntry struct { // LocalizeEntry
	Value xstream.XString
	Name  xstream.XString
}

type LocalizeEntry struct {
	Value string
	Name  string
}

func (e *LocalizeEntry) AssetType() AssetType { return AssetLocalizeEntry }
func (e *LocalizeEntry) AssetName() string    { return e.Name }

func (raw rawLocalizeEntry) convert(r *xstream.Reader) (LocalizeEntry, error) {
	var (
		e   LocalizeEntry
		err error
	)
	if e.Value, err = raw.Value.Resolve(r, "LocalizeEntry.value"); err != nil {
		return e, err
	}
	e.Name, err = raw.Name.Resolve(r, "LocalizeEntry.name")
	return e, err
}

func (e *LocalizeEntry) encode(w *xstream.Writer) error {
	raw := rawLocalizeEntry{
		Value: xstream.StringPtr(e.Value),
		Name:  xstream.StringPtr(e.Name),
	}
	if err := w.StoreFixed(raw, "LocalizeEntry"); err != nil {
		return err
	}
	w.StoreString(e.Value)
	w.StoreString(e.Name)
	return nil
}

type rawMapEnts struct { // MapEnts
	Name         xstream.XString
	EntityString xstream.FatPtrCountLastU32[byte] // entityString, numEntityChars
}

type MapEnts struct {
	Name         string
	EntityString string
}

func (m *MapEnts) AssetType() AssetType { return AssetMapEnts }
func (m *MapEnts) AssetName() string    { return m.Name }

func (raw rawMapEnts) convert(r *xstream.Reader) (MapEnts, error) {
	var (
		m   MapEnts
		err error
	)
	if m.Name, err = raw.Name.Resolve(r, "MapEnts.name"); err != nil {
		return m, err
	}
	chars, err := xstream.ResolveFat[byte](r, raw.EntityString, "MapEnts.entityString")
	if err != nil {
		return m, err
	}
	if n := len(chars); n > 0 && chars[n-1] == 0 {
		chars = chars[:n-1]
	}
	m.EntityString = string(chars)
	return m, nil
}

func (m *MapEnts) encode(w *xstream.Writer) error {
	n := 0
	if m.EntityString != "" {
		n = len(m.EntityString) + 1
	}
	raw := rawMapEnts{
		Name:         xstream.StringPtr(m.Name),
		EntityString: xstream.CountLast[byte](n),
	}
	if err := w.StoreFixed(raw, "MapEnts"); err != nil {
		return err
	}
	w.StoreString(m.Name)
	w.StoreString(m.EntityString)
	return nil
}
