package intcode

import (
	"iter"
)

// Line represents a line of assembled code with its source location and
// generated memory words.
type Line struct {
	LineNo int
	Ip     int
	Words  []string
	Codes  []int64
	Links  map[int]string // Code index to label.
}

type Program struct {
	Lines []Line
}

type Debug struct {
	*Line
	Index int
}

func (prog *Program) Debug(ip int64) (dbg Debug) {
	for n, line := range prog.Lines {
		if ip >= int64(line.Ip) && ip < int64(line.Ip+len(line.Codes)) {
			dbg = Debug{
				Line:  &prog.Lines[n],
				Index: int(ip - int64(line.Ip)),
			}
			break
		}
	}

	return
}

func (prog *Program) Binary() (bins []int64) {
	for _, code := range prog.Codes() {
		bins = append(bins, code)
	}

	return
}

func (prog *Program) Codes() iter.Seq2[int64, int64] {
	return func(yield func(ip int64, code int64) bool) {
		for _, line := range prog.Lines {
			ip := int64(line.Ip)
			for n, code := range line.Codes {
				if !yield(ip+int64(n), code) {
					return
				}
			}
		}
	}
}

// Disassemble decodes an image into instructions. Words that do not
// decode as an instruction are yielded as single word `.data` codes.
func Disassemble(image []int64) iter.Seq2[int64, Code] {
	return func(yield func(ip int64, code Code) bool) {
		for ip := 0; ip < len(image); {
			code := Code{Word: image[ip]}
			ins, err := Lookup(code.Opcode())
			if err == nil && ip+ins.Width() <= len(image) {
				code.Parameters = image[ip+1 : ip+ins.Width()]
				if !code.Valid() {
					code.Parameters = nil
				}
			}
			if !yield(int64(ip), code) {
				return
			}
			ip += len(code.Parameters) + 1
		}
	}
}
