package budget

import "strings"

// Context is the result of assembling ranked lines under a budget.
type Context struct {
	Lines  []string `json:"lines" yaml:"lines"`
	Used   int      `json:"tokens_used" yaml:"tokens_used"`
	Budget int      `json:"tokens_budget" yaml:"tokens_budget"`
	// Dropped counts the ranked lines left out once the budget was hit.
	Dropped int `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// Text joins the accepted lines with newlines. Separators are not charged
// against the budget.
func (c *Context) Text() string {
	return strings.Join(c.Lines, "\n")
}

// Assembler accepts lines in rank order until the first one that would
// overflow the budget. After that every Add is refused, so a cheaper
// low-ranked line never displaces a costlier higher-ranked one.
type Assembler struct {
	est    Estimator
	ctx    Context
	closed bool
}

// NewAssembler creates an assembler with the given budget. A nil estimator
// selects DefaultEstimator.
func NewAssembler(limit int, est Estimator) *Assembler {
	if est == nil {
		est = DefaultEstimator
	}
	return &Assembler{
		est: est,
		ctx: Context{Lines: []string{}, Budget: limit},
	}
}

// Add appends line if it fits. It reports whether the line was accepted.
func (a *Assembler) Add(line string) bool {
	if a.closed {
		a.ctx.Dropped++
		return false
	}
	cost := a.est.Estimate(line)
	if a.ctx.Used+cost > a.ctx.Budget {
		a.closed = true
		a.ctx.Dropped++
		return false
	}
	a.ctx.Used += cost
	a.ctx.Lines = append(a.ctx.Lines, line)
	return true
}

// Full reports whether a line has been refused.
func (a *Assembler) Full() bool { return a.closed }

// Remaining returns the unspent budget.
func (a *Assembler) Remaining() int { return a.ctx.Budget - a.ctx.Used }

// Context returns a snapshot of the lines accepted so far.
func (a *Assembler) Context() *Context {
	c := a.ctx
	c.Lines = append([]string(nil), a.ctx.Lines...)
	if c.Lines == nil {
		c.Lines = []string{}
	}
	return &c
}

// Assemble selects lines, which must already be in descending rank order,
// until the candidates run out or the next line would exceed limit.
func Assemble(lines []string, limit int, est Estimator) *Context {
	a := NewAssembler(limit, est)
	for _, line := range lines {
		a.Add(line)
	}
	return a.Context()
}
