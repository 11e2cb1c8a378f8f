package ir

import "fmt"

// Op identifies the machine operation a node performs.
type Op string

// Opcodes of the SPARC-style target. String values are the spelling used in
// routine descriptions.
const (
	OpLd         Op = "ld"
	OpSt         Op = "st"
	OpCmp        Op = "cmp"
	OpBicc       Op = "bicc"
	OpBa         Op = "ba"
	OpReturn     Op = "return"
	OpAdd        Op = "add"
	OpSub        Op = "sub"
	OpAnd        Op = "and"
	OpOr         Op = "or"
	OpXor        Op = "xor"
	OpSll        Op = "sll"
	OpSrl        Op = "srl"
	OpSra        Op = "sra"
	OpMov        Op = "mov"
	OpSetHi      Op = "sethi"
	OpSMul       Op = "smul"
	OpSMulCCZero Op = "smulcczero"
	OpSMulh      Op = "smulh"
	OpUMulh      Op = "umulh"
	OpSDiv       Op = "sdiv"
	OpUDiv       Op = "udiv"
	OpProj       Op = "proj"
)

// AllOps lists every known opcode in declaration order.
var AllOps = []Op{
	OpLd, OpSt, OpCmp, OpBicc, OpBa, OpReturn,
	OpAdd, OpSub, OpAnd, OpOr, OpXor, OpSll, OpSrl, OpSra, OpMov, OpSetHi,
	OpSMul, OpSMulCCZero, OpSMulh, OpUMulh, OpSDiv, OpUDiv,
	OpProj,
}

var knownOps = func() map[Op]bool {
	m := make(map[Op]bool, len(AllOps))
	for _, op := range AllOps {
		m[op] = true
	}
	return m
}()

// ParseOp converts a textual opcode to an Op.
func ParseOp(s string) (Op, error) {
	op := Op(s)
	if !knownOps[op] {
		return "", fmt.Errorf("unknown opcode %q", s)
	}
	return op, nil
}

// IsLoad reports whether op reads memory into a register.
func (op Op) IsLoad() bool {
	return op == OpLd
}

// IsStore reports whether op writes a register to memory. Operand 0 of a
// store is the value being stored; the remaining operands form the address.
func (op Op) IsStore() bool {
	return op == OpSt
}

// IsCompare reports whether op sets the integer condition codes.
func (op Op) IsCompare() bool {
	return op == OpCmp
}

// IsCondBranch reports whether op is the conditional branch on integer
// condition codes.
func (op Op) IsCondBranch() bool {
	return op == OpBicc
}

// IsMulDiv reports whether op is one of the multiply/divide variants whose
// result arrives late.
func (op Op) IsMulDiv() bool {
	switch op {
	case OpSMul, OpSMulCCZero, OpSMulh, OpUMulh, OpSDiv, OpUDiv:
		return true
	default:
		return false
	}
}

// IsProj reports whether op extracts one result of a multi-result node.
func (op Op) IsProj() bool {
	return op == OpProj
}

// IsControlFlow reports whether op ends a block.
func (op Op) IsControlFlow() bool {
	switch op {
	case OpBicc, OpBa, OpReturn:
		return true
	default:
		return false
	}
}

// IsScheduled reports whether nodes with this op occupy a slot in the
// schedule.
func (op Op) IsScheduled() bool {
	return !op.IsProj()
}
