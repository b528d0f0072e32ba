package vm

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of the image's code
// region to w: one line per instruction, offset-prefixed, operand
// decoded according to its kind. This is static introspection only —
// it never touches the input cursor or output buffer, and it does not
// execute the program.
func (img *Image) Disassemble(w io.Writer) error {
	ip := uint64(0)
	code := img.Code
	for ip < uint64(len(code)) {
		instrIP := ip
		op := Opcode(code[ip])
		meta, ok := op.Meta()
		if !ok {
			if _, err := fmt.Fprintf(w, "%6d\t%s\n", instrIP, op.String()); err != nil {
				return err
			}
			ip++
			continue
		}
		ip++

		switch meta.Operand {
		case operandAddr:
			addr, nextIP, err := decodeAddr(code, ip, img.AddrSize)
			if err != nil {
				return err
			}
			ip = nextIP
			if _, err := fmt.Fprintf(w, "%6d\t%s %d\n", instrIP, meta.Name, addr); err != nil {
				return err
			}
		case operandLiteral:
			literal, nextIP, err := decodeLiteral(code, ip)
			if err != nil {
				return err
			}
			ip = nextIP
			if _, err := fmt.Fprintf(w, "%6d\t%s %q\n", instrIP, meta.Name, literal); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(w, "%6d\t%s\n", instrIP, meta.Name); err != nil {
				return err
			}
		}
	}
	return nil
}
