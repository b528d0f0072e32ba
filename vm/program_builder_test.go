package vm

import "encoding/binary"

// programBuilder assembles raw META II bytecode by hand for tests,
// standing in for the META II compiler (out of scope here). It emits
// wire-format bytes directly rather than parsing a textual assembly
// syntax.
type programBuilder struct {
	addrSize int
	code     []byte
}

func newProgramBuilder() *programBuilder {
	return &programBuilder{addrSize: 8}
}

func (b *programBuilder) here() uint64 {
	return uint64(len(b.code))
}

func (b *programBuilder) op(code Opcode) *programBuilder {
	b.code = append(b.code, byte(code))
	return b
}

func (b *programBuilder) addr(a uint64) *programBuilder {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], a)
	b.code = append(b.code, buf[:b.addrSize]...)
	return b
}

func (b *programBuilder) literal(s string) *programBuilder {
	b.code = append(b.code, s...)
	b.code = append(b.code, 0)
	return b
}

func (b *programBuilder) adr(a uint64) *programBuilder  { return b.op(OpADR).addr(a) }
func (b *programBuilder) tst(s string) *programBuilder  { return b.op(OpTST).literal(s) }
func (b *programBuilder) bf(a uint64) *programBuilder   { return b.op(OpBF).addr(a) }
func (b *programBuilder) id() *programBuilder           { return b.op(OpID) }
func (b *programBuilder) be() *programBuilder           { return b.op(OpBE) }
func (b *programBuilder) cl(s string) *programBuilder   { return b.op(OpCL).literal(s) }
func (b *programBuilder) ci() *programBuilder           { return b.op(OpCI) }
func (b *programBuilder) out() *programBuilder          { return b.op(OpOUT) }
func (b *programBuilder) cll(a uint64) *programBuilder  { return b.op(OpCLL).addr(a) }
func (b *programBuilder) bt(a uint64) *programBuilder   { return b.op(OpBT).addr(a) }
func (b *programBuilder) set() *programBuilder          { return b.op(OpSET) }
func (b *programBuilder) ret() *programBuilder          { return b.op(OpR) }
func (b *programBuilder) end() *programBuilder          { return b.op(OpEND) }
func (b *programBuilder) str() *programBuilder          { return b.op(OpSTR) }
func (b *programBuilder) num() *programBuilder          { return b.op(OpNUM) }
func (b *programBuilder) lb() *programBuilder           { return b.op(OpLB) }
func (b *programBuilder) gn1() *programBuilder          { return b.op(OpGN1) }
func (b *programBuilder) gn2() *programBuilder          { return b.op(OpGN2) }
func (b *programBuilder) b(a uint64) *programBuilder    { return b.op(OpB).addr(a) }

// image returns the full wire-format bytes: header plus code.
func (b *programBuilder) image() []byte {
	out := make([]byte, 0, headerSize+len(b.code))
	out = append(out, magic[:]...)
	out = append(out, byte(b.addrSize))
	out = append(out, b.code...)
	return out
}
