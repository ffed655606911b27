package timeline

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

func span(id string, start, end int64, children ...*trace.Span) *trace.Span {
	return &trace.Span{SpanID: id, ServiceName: "svc-" + id, OperationName: "op-" + id, StartTime: start, EndTime: end, Children: children}
}

func ids(res Result) []string {
	out := make([]string, len(res.Positioned))
	for i, p := range res.Positioned {
		out[i] = p.SpanID
	}
	return out
}

func TestComputeSortsChildren(t *testing.T) {
	root := span("root", 0, 160,
		span("a", 110, 150),
		span("b", 50, 90),
		span("c", 10, 40),
	)

	res, err := Compute(root)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if res.RowCount != 4 {
		t.Errorf("RowCount = %d, want 4", res.RowCount)
	}
	if got, want := ids(res), []string{"root", "c", "b", "a"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	for i, p := range res.Positioned {
		if p.Row != i {
			t.Errorf("%s.Row = %d, want %d", p.SpanID, p.Row, i)
		}
	}
	if res.Domain != (Domain{Start: 0, End: 160}) {
		t.Errorf("Domain = %+v", res.Domain)
	}
	if res.Positioned[0].ParentRow != -1 || res.Positioned[0].ChildCount != 3 {
		t.Errorf("root = %+v", res.Positioned[0])
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	a, b, c := span("a", 110, 150), span("b", 50, 90), span("c", 10, 40)
	root := span("root", 0, 160, a, b, c)

	if _, err := Compute(root); err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if root.Children[0] != a || root.Children[1] != b || root.Children[2] != c {
		t.Error("Compute reordered the input children")
	}
}

func TestComputeStableTies(t *testing.T) {
	root := span("root", 0, 100,
		span("late", 50, 60),
		span("first", 10, 20),
		span("second", 10, 30),
		span("third", 10, 15),
	)

	res, err := Compute(root)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got, want := ids(res), []string{"root", "first", "second", "third", "late"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestComputePreOrderBlocks(t *testing.T) {
	root := span("root", 0, 100,
		span("b", 40, 90, span("b2", 60, 70), span("b1", 45, 50)),
		span("a", 10, 30, span("a1", 12, 20, span("a1x", 13, 14))),
	)

	res, err := Compute(root)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	want := []string{"root", "a", "a1", "a1x", "b", "b1", "b2"}
	if got := ids(res); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	wantDepth := []int{0, 1, 2, 3, 1, 2, 2}
	wantParent := []int{-1, 0, 1, 2, 0, 4, 4}
	for i, p := range res.Positioned {
		if p.Depth != wantDepth[i] || p.ParentRow != wantParent[i] {
			t.Errorf("%s: depth=%d parent=%d, want %d %d", p.SpanID, p.Depth, p.ParentRow, wantDepth[i], wantParent[i])
		}
	}
}

func TestComputeSingleRoot(t *testing.T) {
	res, err := Compute(span("only", 5, 9))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if res.RowCount != 1 || len(res.Positioned) != 1 {
		t.Fatalf("RowCount = %d, len = %d, want 1", res.RowCount, len(res.Positioned))
	}
	if p := res.Positioned[0]; p.Row != 0 || p.ChildCount != 0 {
		t.Errorf("root = %+v", p)
	}
}

func TestComputeInvertedSpan(t *testing.T) {
	res, err := Compute(span("root", 0, 200, span("bad", 100, 80)))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	_, w := Extent(res.Positioned[1], res.Domain, Range{Min: 400, Max: 1010})
	if w != 0 {
		t.Errorf("width = %v, want 0", w)
	}
}

func TestComputeSkipsNilChildren(t *testing.T) {
	res, err := Compute(span("root", 0, 10, nil, span("a", 1, 2), nil))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if res.RowCount != 2 || res.Positioned[0].ChildCount != 1 {
		t.Errorf("RowCount = %d, ChildCount = %d", res.RowCount, res.Positioned[0].ChildCount)
	}
}

func TestComputeInvalidTrace(t *testing.T) {
	if _, err := Compute(nil); !errs.Is(err, errs.ErrCodeInvalidTrace) {
		t.Errorf("Compute(nil) error = %v, want %s", err, errs.ErrCodeInvalidTrace)
	}

	root, err := trace.Parse([]byte(`{"span_id":"r","end_time":5}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	res, err := Compute(root)
	if !errs.Is(err, errs.ErrCodeInvalidTrace) {
		t.Errorf("Compute(no start) error = %v, want %s", err, errs.ErrCodeInvalidTrace)
	}
	if res.Positioned != nil || res.RowCount != 0 {
		t.Errorf("partial result returned: %+v", res)
	}
}

func TestComputeCycleGuard(t *testing.T) {
	t.Run("self reference", func(t *testing.T) {
		root := span("root", 0, 10)
		child := span("child", 1, 2)
		root.Children = []*trace.Span{child}
		child.Children = []*trace.Span{root}
		if _, err := Compute(root); !errs.Is(err, errs.ErrCodeCyclicTrace) {
			t.Errorf("error = %v, want %s", err, errs.ErrCodeCyclicTrace)
		}
	})

	t.Run("shared subtree", func(t *testing.T) {
		shared := span("shared", 1, 2)
		root := span("root", 0, 10, shared, shared)
		if _, err := Compute(root); !errs.Is(err, errs.ErrCodeCyclicTrace) {
			t.Errorf("error = %v, want %s", err, errs.ErrCodeCyclicTrace)
		}
	})

	t.Run("max depth", func(t *testing.T) {
		root := chain(5)
		if _, err := Compute(root, WithMaxDepth(3)); !errs.Is(err, errs.ErrCodeCyclicTrace) {
			t.Errorf("error = %v, want %s", err, errs.ErrCodeCyclicTrace)
		}
		if _, err := Compute(root, WithMaxDepth(5)); err != nil {
			t.Errorf("depth 5 should be allowed: %v", err)
		}
	})

	t.Run("max spans", func(t *testing.T) {
		root := span("root", 0, 10, span("a", 1, 2), span("b", 3, 4))
		if _, err := Compute(root, WithMaxSpans(2)); !errs.Is(err, errs.ErrCodeCyclicTrace) {
			t.Errorf("error = %v, want %s", err, errs.ErrCodeCyclicTrace)
		}
		if _, err := Compute(root, WithMaxSpans(3)); err != nil {
			t.Errorf("3 spans should be allowed: %v", err)
		}
	})
}

func TestComputeDeepChain(t *testing.T) {
	const depth = 50_000
	res, err := Compute(chain(depth), WithMaxDepth(depth))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if res.RowCount != depth+1 {
		t.Errorf("RowCount = %d, want %d", res.RowCount, depth+1)
	}
	if last := res.Positioned[depth]; last.Depth != depth {
		t.Errorf("last depth = %d", last.Depth)
	}
}

func TestComputeRowCounterIsPerCall(t *testing.T) {
	root := span("root", 0, 10, span("a", 1, 2))
	for range 3 {
		res, err := Compute(root)
		if err != nil {
			t.Fatalf("Compute() error: %v", err)
		}
		if res.Positioned[0].Row != 0 || res.Positioned[1].Row != 1 {
			t.Fatalf("rows = %d,%d", res.Positioned[0].Row, res.Positioned[1].Row)
		}
	}
}

func TestComputeRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 50 {
		root, n := randomTree(rng, 200)
		res, err := Compute(root)
		if err != nil {
			t.Fatalf("tree %d: Compute() error: %v", i, err)
		}
		if res.RowCount != n || len(res.Positioned) != n {
			t.Fatalf("tree %d: RowCount = %d, want %d", i, res.RowCount, n)
		}
		for row, p := range res.Positioned {
			if p.Row != row {
				t.Fatalf("tree %d: span %s row %d at index %d", i, p.SpanID, p.Row, row)
			}
			if row > 0 && p.ParentRow >= p.Row {
				t.Fatalf("tree %d: span %s row %d not after parent %d", i, p.SpanID, p.Row, p.ParentRow)
			}
		}
		checkSubtreeBlocks(t, res)
		checkSiblingOrder(t, res)
	}
}

// checkSubtreeBlocks verifies that each span's descendants directly follow it.
func checkSubtreeBlocks(t *testing.T, res Result) {
	t.Helper()
	size := make([]int, res.RowCount)
	for i := res.RowCount - 1; i >= 0; i-- {
		size[i]++
		if p := res.Positioned[i].ParentRow; p >= 0 {
			size[p] += size[i]
		}
	}
	for i, p := range res.Positioned {
		for j := i + 1; j < i+size[i]; j++ {
			if res.Positioned[j].Depth <= p.Depth {
				t.Fatalf("row %d inside subtree of %d has depth %d <= %d", j, i, res.Positioned[j].Depth, p.Depth)
			}
		}
	}
}

func checkSiblingOrder(t *testing.T, res Result) {
	t.Helper()
	last := map[int]int64{}
	for _, p := range res.Positioned {
		if prev, ok := last[p.ParentRow]; ok && p.StartTime < prev {
			t.Fatalf("span %s starts at %d before previous sibling at %d", p.SpanID, p.StartTime, prev)
		}
		last[p.ParentRow] = p.StartTime
	}
}

func randomTree(rng *rand.Rand, maxNodes int) (*trace.Span, int) {
	root := span("0", 0, 1000)
	nodes := []*trace.Span{root}
	n := 1 + rng.IntN(maxNodes)
	for len(nodes) < n {
		parent := nodes[rng.IntN(len(nodes))]
		start := rng.Int64N(1000)
		child := span("s"+strconv.Itoa(len(nodes)), start, start+rng.Int64N(100))
		parent.Children = append(parent.Children, child)
		nodes = append(nodes, child)
	}
	return root, len(nodes)
}

func chain(depth int) *trace.Span {
	root := span("0", 0, int64(depth))
	cur := root
	for i := 1; i <= depth; i++ {
		next := span(strconv.Itoa(i), int64(i), int64(depth))
		cur.Children = []*trace.Span{next}
		cur = next
	}
	return root
}
