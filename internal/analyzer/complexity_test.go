package analyzer

import (
	"testing"

	"github.com/ludo-technologies/refscan/internal/parser"
)

func parseFunc(t *testing.T, code string) *parser.Node {
	t.Helper()

	ast, err := parser.ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	funcs := ast.Functions()
	if len(funcs) == 0 {
		t.Fatal("Expected at least one function")
	}
	return funcs[0]
}

func TestCyclomaticComplexity_StraightLine(t *testing.T) {
	fn := parseFunc(t, `def simple():
    a = 1
    b = 2
    return a + b
`)

	complexity := CalculateCyclomaticComplexity(fn)
	if complexity != 1 {
		t.Errorf("Expected complexity 1 for straight-line code, got %d", complexity)
	}
}

func TestCyclomaticComplexity_IfElsePlusLoop(t *testing.T) {
	// One if (else adds no decision point) and one loop: 1 + 1 + 1 = 3
	fn := parseFunc(t, `def branchy(items):
    if items:
        result = 1
    else:
        result = 2
    for item in items:
        result += item
    return result
`)

	complexity := CalculateCyclomaticComplexity(fn)
	if complexity != 3 {
		t.Errorf("Expected complexity 3 for if/else plus loop, got %d", complexity)
	}
}

func TestCyclomaticComplexity_ElifCounts(t *testing.T) {
	fn := parseFunc(t, `def pick(x):
    if x == 1:
        return "a"
    elif x == 2:
        return "b"
    else:
        return "c"
`)

	complexity := CalculateCyclomaticComplexity(fn)
	if complexity != 3 {
		t.Errorf("Expected complexity 3 for if/elif/else, got %d", complexity)
	}
}

func TestCyclomaticComplexity_BooleanOperators(t *testing.T) {
	fn := parseFunc(t, `def gate(a, b, c):
    if a and b or c:
        return True
    return False
`)

	// if (+1) plus two boolean operators (+2)
	complexity := CalculateCyclomaticComplexity(fn)
	if complexity != 4 {
		t.Errorf("Expected complexity 4, got %d", complexity)
	}
}

func TestCyclomaticComplexity_ExceptAndWith(t *testing.T) {
	fn := parseFunc(t, `def guarded(path):
    try:
        with open(path) as f:
            return f.read()
    except OSError:
        return None
`)

	// with (+1), except (+1)
	complexity := CalculateCyclomaticComplexity(fn)
	if complexity != 3 {
		t.Errorf("Expected complexity 3, got %d", complexity)
	}
}

func TestCyclomaticComplexity_ComprehensionIf(t *testing.T) {
	fn := parseFunc(t, `def evens(items):
    return [x for x in items if x % 2 == 0]
`)

	complexity := CalculateCyclomaticComplexity(fn)
	if complexity != 2 {
		t.Errorf("Expected complexity 2 for comprehension filter, got %d", complexity)
	}
}

func TestCyclomaticComplexity_NestedFunctionExcluded(t *testing.T) {
	code := `def outer(items):
    def inner(x):
        if x > 0:
            return x
        return -x
    return [inner(i) for i in items]
`

	ast, err := parser.ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	funcs := ast.Functions()
	if len(funcs) != 2 {
		t.Fatalf("Expected 2 functions, got %d", len(funcs))
	}

	// Outer function's complexity must not include inner's if statement
	if c := CalculateCyclomaticComplexity(funcs[0]); c != 1 {
		t.Errorf("Expected outer complexity 1, got %d", c)
	}
	if c := CalculateCyclomaticComplexity(funcs[1]); c != 2 {
		t.Errorf("Expected inner complexity 2, got %d", c)
	}
}

func TestCyclomaticComplexity_Idempotent(t *testing.T) {
	fn := parseFunc(t, `def repeat(x):
    if x:
        while x > 0:
            x -= 1
    return x
`)

	first := CalculateCyclomaticComplexity(fn)
	second := CalculateCyclomaticComplexity(fn)
	if first != second {
		t.Errorf("Complexity should be stable across runs: %d vs %d", first, second)
	}
}

func TestCognitiveComplexity_Flat(t *testing.T) {
	fn := parseFunc(t, `def flat(a, b):
    x = a + b
    return x
`)

	if c := CalculateCognitiveComplexity(fn); c != 0 {
		t.Errorf("Expected cognitive complexity 0 for flat code, got %d", c)
	}
}

func TestCognitiveComplexity_NestingWeighted(t *testing.T) {
	// if at depth 0 (+1), for inside it at depth 1 (+2), if inside that
	// at depth 2 (+3): total 6
	fn := parseFunc(t, `def nested(items):
    if items:
        for item in items:
            if item > 0:
                return item
    return None
`)

	if c := CalculateCognitiveComplexity(fn); c != 6 {
		t.Errorf("Expected cognitive complexity 6, got %d", c)
	}
}

func TestCognitiveComplexity_SequentialCheaperThanNested(t *testing.T) {
	sequential := parseFunc(t, `def sequential(a, b, c):
    if a:
        pass
    if b:
        pass
    if c:
        pass
`)

	nested := parseFunc(t, `def deep(a, b, c):
    if a:
        if b:
            if c:
                pass
`)

	seqScore := CalculateCognitiveComplexity(sequential)
	nestedScore := CalculateCognitiveComplexity(nested)
	if seqScore >= nestedScore {
		t.Errorf("Sequential branches (%d) should score lower than nested branches (%d)", seqScore, nestedScore)
	}
}

func TestCognitiveComplexity_ElseIsFlat(t *testing.T) {
	// if (+1), else (+1 flat)
	fn := parseFunc(t, `def either(x):
    if x:
        return 1
    else:
        return 2
`)

	if c := CalculateCognitiveComplexity(fn); c != 2 {
		t.Errorf("Expected cognitive complexity 2, got %d", c)
	}
}

func TestNestingDepth_Flat(t *testing.T) {
	fn := parseFunc(t, `def flat():
    return 1
`)

	if d := CalculateNestingDepth(fn); d != 0 {
		t.Errorf("Expected nesting depth 0, got %d", d)
	}
}

func TestNestingDepth_FourLevels(t *testing.T) {
	fn := parseFunc(t, `def deep(items):
    for a in items:
        if a:
            while a > 0:
                with open("f") as f:
                    a -= 1
`)

	if d := CalculateNestingDepth(fn); d != 4 {
		t.Errorf("Expected nesting depth 4, got %d", d)
	}
}

func TestNestingDepth_ElifMatchesElse(t *testing.T) {
	elifFn := parseFunc(t, `def branchy(a):
    if a == 1:
        pass
    elif a == 2:
        if a:
            pass
`)
	elseFn := parseFunc(t, `def branchy(a):
    if a == 1:
        pass
    else:
        if a:
            pass
`)

	elifDepth := CalculateNestingDepth(elifFn)
	elseDepth := CalculateNestingDepth(elseFn)
	if elifDepth != elseDepth {
		t.Errorf("elif branch depth = %d, else branch depth = %d; structurally equivalent code must measure the same", elifDepth, elseDepth)
	}
	if elifDepth != 2 {
		t.Errorf("Expected nesting depth 2, got %d", elifDepth)
	}
}

func TestNestingDepth_TryCounts(t *testing.T) {
	fn := parseFunc(t, `def guarded():
    try:
        if True:
            pass
    except ValueError:
        pass
`)

	if d := CalculateNestingDepth(fn); d != 2 {
		t.Errorf("Expected nesting depth 2, got %d", d)
	}
}

func TestNestingDepth_NestedFunctionExcluded(t *testing.T) {
	code := `def outer():
    def inner():
        if True:
            if True:
                pass
    return inner
`

	ast, err := parser.ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	outer := ast.Functions()[0]
	if d := CalculateNestingDepth(outer); d != 0 {
		t.Errorf("Expected outer nesting depth 0, got %d", d)
	}
}
