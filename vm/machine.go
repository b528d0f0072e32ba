package vm

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
)

const defaultMaxDepth = 1 << 20

// ExecResult is the outcome of running a program to completion: an
// exit code matching spec.md's §6 convention, and the Go error (if
// any) that produced it. cmd/metaiivm is the only caller that turns
// this into an actual process exit.
type ExecResult struct {
	ExitCode int
	Err      error
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithNumericRecognizer gates the conforming NUM digit-recognizer
// behavior described in spec.md §4.3. Off by default, matching the
// reference implementation's no-op NUM.
func WithNumericRecognizer(enabled bool) Option {
	return func(m *Machine) { m.numericRecognizer = enabled }
}

// WithMaxDepth overrides the call-stack depth ceiling that converts
// runaway left recursion into ErrStackOverflow instead of unbounded
// memory growth.
func WithMaxDepth(n int) Option {
	return func(m *Machine) { m.maxDepth = n }
}

// WithTrace attaches a logger that receives one debug-level record
// per dispatched opcode. Tracing never touches stdout.
func WithTrace(logger *slog.Logger) Option {
	return func(m *Machine) { m.trace = logger }
}

// Machine is the META II bytecode interpreter: the dispatch loop plus
// all of the implicit state spec.md §3 describes.
type Machine struct {
	image *Image

	ip         uint64
	switchFlag bool
	token      string

	cursor *Cursor
	stack  *CallStack

	labelCounter int

	line        []byte
	outputLabel bool
	stdout      *bufio.Writer

	numericRecognizer bool
	maxDepth          int
	trace             *slog.Logger
}

// NewMachine builds a Machine ready to run image against input,
// writing translated output to stdout.
func NewMachine(image *Image, input []byte, stdout io.Writer, opts ...Option) *Machine {
	m := &Machine{
		image:    image,
		cursor:   NewCursor(input),
		maxDepth: defaultMaxDepth,
		stdout:   bufio.NewWriter(stdout),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.stack = NewCallStack(m.maxDepth)
	return m
}

// Run executes the loaded program to completion: until END, until a
// return unwinds the sentinel frame, until BE fires with SWITCH
// false, or until a format error or resource exhaustion halts
// dispatch.
func (m *Machine) Run() ExecResult {
	for {
		result, done := m.step()
		if done {
			m.stdout.Flush()
			return result
		}
	}
}

// step decodes and executes exactly one instruction. done is true iff
// the program has terminated (successfully or not); result is only
// meaningful when done is true.
func (m *Machine) step() (result ExecResult, done bool) {
	code := m.image.Code
	if m.ip >= uint64(len(code)) {
		return ExecResult{ExitCode: 2, Err: ErrTruncatedOperand}, true
	}

	op := Opcode(code[m.ip])
	meta, ok := op.Meta()
	if !ok {
		return ExecResult{ExitCode: 2, Err: fmt.Errorf("%w: 0x%02x at %d", ErrUnknownOpcode, byte(op), m.ip)}, true
	}
	opIP := m.ip
	m.ip++

	var (
		addr    uint64
		literal string
		err     error
	)
	switch meta.Operand {
	case operandAddr:
		addr, m.ip, err = decodeAddr(code, m.ip, m.image.AddrSize)
	case operandLiteral:
		literal, m.ip, err = decodeLiteral(code, m.ip)
	}
	if err != nil {
		return ExecResult{ExitCode: 2, Err: err}, true
	}

	m.traceStep(opIP, op)

	switch op {
	case OpADR, OpB:
		m.ip = addr

	case OpTST:
		m.switchFlag = m.cursor.Match(literal)
		if m.switchFlag {
			m.token = literal
		}

	case OpBF:
		if !m.switchFlag {
			m.ip = addr
		}

	case OpID:
		tok, ok := m.cursor.Identifier()
		m.switchFlag = ok
		if ok {
			m.token = tok
		}

	case OpBE:
		if !m.switchFlag {
			return ExecResult{ExitCode: 1, Err: ErrSyntaxFailure}, true
		}

	case OpCL:
		m.emit(literal)

	case OpCI:
		m.emit(m.token)

	case OpOUT:
		m.flushLine()

	case OpCLL:
		if err := m.stack.Call(m.ip); err != nil {
			return ExecResult{ExitCode: 2, Err: err}, true
		}
		m.ip = addr

	case OpBT:
		if m.switchFlag {
			m.ip = addr
		}

	case OpSET:
		m.switchFlag = true

	case OpR:
		retAddr, terminated, err := m.stack.Return()
		if err != nil {
			return ExecResult{ExitCode: 2, Err: err}, true
		}
		if terminated {
			return ExecResult{ExitCode: 0}, true
		}
		m.ip = retAddr

	case OpEND:
		return ExecResult{ExitCode: 0}, true

	case OpSTR:
		tok, ok := m.cursor.QuotedString()
		m.switchFlag = ok
		if ok {
			m.token = tok
		}

	case OpNUM:
		if m.numericRecognizer {
			tok, ok := m.cursor.Number()
			m.switchFlag = ok
			if ok {
				m.token = tok
			}
		} else {
			m.switchFlag = false
		}

	case OpLB:
		m.outputLabel = true

	case OpGN1:
		var v string
		v, m.labelCounter = m.stack.Label1(m.labelCounter)
		m.emit(v)

	case OpGN2:
		var v string
		v, m.labelCounter = m.stack.Label2(m.labelCounter)
		m.emit(v)
	}

	return ExecResult{}, false
}

// emit appends s followed by a single space to the current output
// line, as CL/CI/GN1/GN2 all do.
func (m *Machine) emit(s string) {
	m.line = append(m.line, s...)
	m.line = append(m.line, ' ')
}

// flushLine writes the accumulated output line, tab-indented unless
// the output-label flag was set, then resets both.
func (m *Machine) flushLine() {
	if !m.outputLabel {
		m.stdout.WriteByte('\t')
	}
	m.stdout.Write(m.line)
	m.stdout.WriteByte('\n')
	m.line = m.line[:0]
	m.outputLabel = false
}

func (m *Machine) traceStep(ip uint64, op Opcode) {
	if m.trace == nil {
		return
	}
	m.trace.Debug("dispatch", "ip", ip, "op", op.String(), "dp", m.cursor.off, "switch", m.switchFlag)
}
