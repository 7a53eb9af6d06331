package expr

import "fmt"

// Context resolves leaf operands during evaluation. Implementations are
// supplied by consumers that know final addresses; the codec itself never
// evaluates.
type Context interface {
	SymbolAddress(number uint16) (uint32, error)
	SectionBase(id uint16) (uint32, error)
	SectionStart(id uint16) (uint32, error)
	SectionEnd(id uint16) (uint32, error)
}

// EvalError reports an expression that cannot be evaluated against the
// given context.
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string { return "evaluate: " + e.Msg }

// Evaluate computes the value of e. Operand order is the format's order:
// the left operand of every operator is evaluated first, so non-commutative
// operators (subtract, divide, shift) behave as encoded.
func Evaluate(e Expression, ctx Context) (int64, error) {
	switch n := e.(type) {
	case Constant:
		return int64(uint32(n)), nil

	case Ref:
		var v uint32
		var err error
		switch n.Kind {
		case RefSymbol:
			v, err = ctx.SymbolAddress(n.Index)
		case RefSectionBase:
			v, err = ctx.SectionBase(n.Index)
		case RefSectionStart:
			v, err = ctx.SectionStart(n.Index)
		case RefSectionEnd:
			v, err = ctx.SectionEnd(n.Index)
		default:
			return 0, &EvalError{Msg: fmt.Sprintf("unresolvable operand %s", n)}
		}
		if err != nil {
			return 0, err
		}
		return int64(v), nil

	case Binary:
		if n.Op.saturnOnly() {
			return 0, &EvalError{Msg: fmt.Sprintf("operator %q is a link-time check, not arithmetic", n.Op)}
		}
		l, err := Evaluate(n.Left, ctx)
		if err != nil {
			return 0, err
		}
		r, err := Evaluate(n.Right, ctx)
		if err != nil {
			return 0, err
		}
		return apply(n.Op, l, r)
	}
	return 0, &EvalError{Msg: "unknown expression node"}
}

func apply(op Op, l, r int64) (int64, error) {
	boolVal := func(b bool) int64 {
		if b {
			return 1
		}
		return 0
	}

	switch op {
	case OpEq:
		return boolVal(l == r), nil
	case OpNe:
		return boolVal(l != r), nil
	case OpLe:
		return boolVal(l <= r), nil
	case OpLt:
		return boolVal(l < r), nil
	case OpGe:
		return boolVal(l >= r), nil
	case OpGt:
		return boolVal(l > r), nil
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, &EvalError{Msg: "division by zero"}
		}
		return l / r, nil
	case OpAnd:
		return l & r, nil
	case OpOr:
		return l | r, nil
	case OpXor:
		return l ^ r, nil
	case OpShl:
		if r < 0 || r > 63 {
			return 0, &EvalError{Msg: fmt.Sprintf("shift amount %d out of range", r)}
		}
		return l << uint(r), nil
	case OpShr:
		if r < 0 || r > 63 {
			return 0, &EvalError{Msg: fmt.Sprintf("shift amount %d out of range", r)}
		}
		return l >> uint(r), nil
	case OpMod:
		if r == 0 {
			return 0, &EvalError{Msg: "modulo by zero"}
		}
		return l % r, nil
	}
	return 0, &EvalError{Msg: fmt.Sprintf("operator %q has no defined value", op)}
}
