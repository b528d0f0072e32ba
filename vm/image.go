package vm

// magic is the fixed 7-byte prefix ".meta\0\0" of the 8-byte header
// every compiled META II program begins with; the eighth byte is the
// address width.
var magic = [7]byte{'.', 'm', 'e', 't', 'a', 0, 0}

const headerSize = 8

// Image is an immutable, loaded META II program: a header-declared
// address width plus the code bytes that follow it. It is never
// mutated after LoadImage returns.
type Image struct {
	AddrSize int
	Code     []byte
}

// LoadImage validates the 8-byte header of a compiled META II program
// and splits it from the code region that follows.
//
// The header is the literal sequence ".meta\0\0" followed by a single
// byte giving the address width, in bytes, of every address operand
// in the code that follows. Known images use width 8; this loader
// accepts any width from 1 to 8 and decodes address operands
// zero-extended to a machine word.
func LoadImage(data []byte) (*Image, error) {
	if len(data) < headerSize {
		return nil, ErrTruncatedHeader
	}

	var header [7]byte
	copy(header[:], data[:7])
	if header != magic {
		return nil, ErrBadMagic
	}

	addrSize := int(data[7])
	if addrSize < 1 || addrSize > 8 {
		return nil, ErrBadAddrWidth
	}

	return &Image{
		AddrSize: addrSize,
		Code:     data[headerSize:],
	}, nil
}
