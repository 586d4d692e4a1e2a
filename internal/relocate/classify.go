package relocate

import "bytes"

// Mode tells how a file's prefix occurrences were rewritten.
type Mode string

const (
	ModeText   Mode = "text"
	ModeBinary Mode = "binary"
)

// classifyWindow bounds how far into a file the NUL scan looks. Binary
// markers sit at the start; a NUL anywhere early is decisive.
const classifyWindow = 8192

// binaryMagics are the file signatures treated as binary regardless of
// content: ELF, Mach-O (both endiannesses, 32/64-bit, fat) and PE.
var binaryMagics = [][]byte{
	{0x7f, 'E', 'L', 'F'},
	{0xfe, 0xed, 0xfa, 0xce},
	{0xfe, 0xed, 0xfa, 0xcf},
	{0xce, 0xfa, 0xed, 0xfe},
	{0xcf, 0xfa, 0xed, 0xfe},
	{0xca, 0xfe, 0xba, 0xbe},
	{'M', 'Z'},
}

// Classify decides whether file content is rewritten in text or binary
// mode. Binary is indicated by a known file-format marker or by the
// presence of NUL bytes in the scan window.
func Classify(data []byte) Mode {
	for _, magic := range binaryMagics {
		if bytes.HasPrefix(data, magic) {
			return ModeBinary
		}
	}
	window := data
	if len(window) > classifyWindow {
		window = window[:classifyWindow]
	}
	if bytes.IndexByte(window, 0) >= 0 {
		return ModeBinary
	}
	return ModeText
}
