package mojopatch

import "fmt"

// Signature is the fixed 46-byte ASCII marker at offset 0 of every
// mojopatch archive, trailing CR LF NUL included.
const Signature = "mojopatch 0.6: http://icculus.org/mojopatch\r\n\x00"

// Opcode tags one operation record in the archive body.
type Opcode byte

const (
	OpDelete Opcode = iota
	OpDeleteDir
	OpAdd
	OpAddDir
	OpPatch
	OpReplace
	OpDone
)

// String returns the opcode's archive-format name.
func (op Opcode) String() string {
	switch op {
	case OpDelete:
		return "DELETE"
	case OpDeleteDir:
		return "DELETEDIRECTORY"
	case OpAdd:
		return "ADD"
	case OpAddDir:
		return "ADDDIRECTORY"
	case OpPatch:
		return "PATCH"
	case OpReplace:
		return "REPLACE"
	case OpDone:
		return "DONE"
	}
	return fmt.Sprintf("opcode(%d)", byte(op))
}

// OperationRecord is one parsed operation. Which fields are meaningful
// depends on Op:
//
//	Delete, DeleteDir  Path
//	AddDir             Path, Mode
//	Add, Replace       Path, Size, MD5, Mode, PayloadOffset
//	Done               nothing
//
// Records are immutable once parsed; Add/Replace payload bytes stay in the
// underlying stream and are located through PayloadOffset.
type OperationRecord struct {
	Op   Opcode
	Path string
	Size uint32
	MD5  string
	Mode uint32

	// PayloadOffset is the absolute stream offset of the first payload byte
	// for Add and Replace records.
	PayloadOffset int64
}

// String renders the record for listings.
func (r OperationRecord) String() string {
	switch r.Op {
	case OpAdd, OpReplace:
		return fmt.Sprintf("%s %s (%d bytes, md5 %s, mode %04o)", r.Op, r.Path, r.Size, r.MD5, r.Mode)
	case OpAddDir:
		return fmt.Sprintf("%s %s (mode %04o)", r.Op, r.Path, r.Mode)
	case OpDelete, OpDeleteDir:
		return fmt.Sprintf("%s %s", r.Op, r.Path)
	default:
		return r.Op.String()
	}
}
