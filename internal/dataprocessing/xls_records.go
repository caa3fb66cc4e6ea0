package dataprocessing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"unicode/utf16"

	"github.com/extrame/ole2"
)

// BIFF8 record identifiers
const (
	recEOF        = 0x000A
	recDateMode   = 0x0022
	recBoundSheet = 0x0085
	recMulRK      = 0x00BD
	recXF         = 0x00E0
	recNumber     = 0x0203
	recBoolErr    = 0x0205
	recString     = 0x0207
	recRK         = 0x027E
	recFormat     = 0x041E
	recBOF        = 0x0809
	recFormula    = 0x0006
)

// xlsCells holds the first-sheet cells decoded from the raw records,
// keyed by row then column
type xlsCells struct {
	cells  map[int]map[int]string
	maxRow int
}

func (x *xlsCells) set(row, col int, text string) {
	if x.cells[row] == nil {
		x.cells[row] = make(map[int]string)
	}
	x.cells[row][col] = text
	if row > x.maxRow {
		x.maxRow = row
	}
}

func (x *xlsCells) row(i int) map[int]string {
	return x.cells[i]
}

// width is one past the last decoded column of row i
func (x *xlsCells) width(i int) int {
	w := 0
	for col := range x.cells[i] {
		if col+1 > w {
			w = col + 1
		}
	}
	return w
}

// xlsGlobals is what the workbook globals say about cell formatting
type xlsGlobals struct {
	date1904   bool
	xfFormats  []uint16
	formats    map[uint16]string
	sheetStart int
}

func (g *xlsGlobals) isDateXF(xf uint16) bool {
	if int(xf) >= len(g.xfFormats) {
		return false
	}
	id := g.xfFormats[xf]
	return isDateNumFmt(int(id), g.formats[id])
}

// scanXLSCells decodes the first sheet's boolean, formula and RK cells and
// its date-formatted numbers
func scanXLSCells(data []byte) (*xlsCells, error) {
	stream, err := workbookStream(data)
	if err != nil {
		return nil, err
	}

	globals, err := readXLSGlobals(stream)
	if err != nil {
		return nil, err
	}

	out := &xlsCells{cells: make(map[int]map[int]string), maxRow: -1}
	number := func(row, col int, xf uint16, v float64) {
		if globals.isDateXF(xf) {
			if text, ok := excelDateText(v, globals.date1904); ok {
				out.set(row, col, text)
				return
			}
		}
		out.set(row, col, FormatNumber(v))
	}

	pendingRow, pendingCol := -1, -1
	for off := globals.sheetStart; ; {
		id, body, next, ok := nextRecord(stream, off)
		if !ok || id == recEOF {
			break
		}
		off = next

		switch id {
		case recNumber:
			if len(body) < 14 {
				continue
			}
			row, col, xf := int(le16(body)), int(le16(body[2:])), le16(body[4:])
			if globals.isDateXF(xf) {
				number(row, col, xf, math.Float64frombits(binary.LittleEndian.Uint64(body[6:])))
			}
		case recRK:
			if len(body) < 10 {
				continue
			}
			number(int(le16(body)), int(le16(body[2:])), le16(body[4:]), rkValue(le32(body[6:])))
		case recMulRK:
			if len(body) < 6 {
				continue
			}
			row, first := int(le16(body)), int(le16(body[2:]))
			for i, p := 0, 4; p+6 <= len(body)-2; i, p = i+1, p+6 {
				number(row, first+i, le16(body[p:]), rkValue(le32(body[p+2:])))
			}
		case recBoolErr:
			if len(body) < 8 {
				continue
			}
			row, col := int(le16(body)), int(le16(body[2:]))
			switch {
			case body[7] != 0:
				out.set(row, col, "")
			case body[6] != 0:
				out.set(row, col, "TRUE")
			default:
				out.set(row, col, "FALSE")
			}
		case recFormula:
			if len(body) < 14 {
				continue
			}
			row, col, xf := int(le16(body)), int(le16(body[2:])), le16(body[4:])
			result := body[6:14]
			if result[6] != 0xFF || result[7] != 0xFF {
				number(row, col, xf, math.Float64frombits(binary.LittleEndian.Uint64(result)))
				continue
			}
			switch result[0] {
			case 0: // text in the following STRING record
				pendingRow, pendingCol = row, col
			case 1:
				if result[2] != 0 {
					out.set(row, col, "TRUE")
				} else {
					out.set(row, col, "FALSE")
				}
			default:
				out.set(row, col, "")
			}
		case recString:
			if pendingRow < 0 || len(body) < 3 {
				continue
			}
			out.set(pendingRow, pendingCol, xlsString(body[2:], int(le16(body))))
			pendingRow, pendingCol = -1, -1
		}
	}
	return out, nil
}

// workbookStream reads the Workbook stream out of the compound document
func workbookStream(data []byte) ([]byte, error) {
	doc, err := ole2.Open(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	dir, err := doc.ListDir()
	if err != nil {
		return nil, err
	}

	var book, root *ole2.File
	for _, f := range dir {
		switch f.Name() {
		case "Workbook", "Book":
			book = f
		case "Root Entry":
			root = f
		}
	}
	if book == nil || root == nil {
		return nil, errors.New("no workbook stream")
	}
	return io.ReadAll(io.LimitReader(doc.OpenFile(book, root), int64(book.Size)))
}

func readXLSGlobals(stream []byte) (*xlsGlobals, error) {
	g := &xlsGlobals{formats: make(map[uint16]string), sheetStart: -1}

	id, _, off, ok := nextRecord(stream, 0)
	if !ok || id != recBOF {
		return nil, errors.New("workbook stream does not start with BOF")
	}
	for {
		id, body, next, ok := nextRecord(stream, off)
		if !ok || id == recEOF {
			break
		}
		off = next

		switch id {
		case recDateMode:
			if len(body) >= 2 {
				g.date1904 = le16(body) == 1
			}
		case recXF:
			if len(body) >= 4 {
				g.xfFormats = append(g.xfFormats, le16(body[2:]))
			}
		case recFormat:
			if len(body) >= 5 {
				g.formats[le16(body)] = xlsString(body[4:], int(le16(body[2:])))
			}
		case recBoundSheet:
			if len(body) >= 4 && g.sheetStart < 0 {
				g.sheetStart = int(le32(body))
			}
		}
	}

	if g.sheetStart < 0 || g.sheetStart >= len(stream) {
		return nil, errors.New("workbook has no sheets")
	}
	if id, _, _, ok := nextRecord(stream, g.sheetStart); !ok || id != recBOF {
		return nil, errors.New("sheet offset does not point at BOF")
	}
	return g, nil
}

// nextRecord returns the record at off and the offset of the one after it
func nextRecord(stream []byte, off int) (id uint16, body []byte, next int, ok bool) {
	if off < 0 || off+4 > len(stream) {
		return 0, nil, 0, false
	}
	id = le16(stream[off:])
	size := int(le16(stream[off+2:]))
	end := off + 4 + size
	if end > len(stream) {
		return 0, nil, 0, false
	}
	return id, stream[off+4 : end], end, true
}

// xlsString decodes an unformatted BIFF8 string of cch characters: an option
// byte followed by compressed Latin-1 or UTF-16LE characters
func xlsString(b []byte, cch int) string {
	if len(b) == 0 {
		return ""
	}
	flags, p := b[0], 1
	if flags&0x08 != 0 {
		p += 2
	}
	if flags&0x04 != 0 {
		p += 4
	}
	if p > len(b) {
		return ""
	}
	b = b[p:]

	if flags&0x01 == 0 {
		if cch > len(b) {
			cch = len(b)
		}
		runes := make([]rune, cch)
		for i, c := range b[:cch] {
			runes[i] = rune(c)
		}
		return string(runes)
	}

	if 2*cch > len(b) {
		cch = len(b) / 2
	}
	units := make([]uint16, cch)
	for i := range units {
		units[i] = le16(b[2*i:])
	}
	return string(utf16.Decode(units))
}

// rkValue decodes an RK number: a signed 30-bit integer or the high bits of
// a double, optionally scaled by 1/100
func rkValue(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

func le16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
