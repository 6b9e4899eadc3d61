package callbacks

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ProgbarValue is a named value displayed alongside the progress bar.
type ProgbarValue struct {
	Name  string
	Value float64
}

// Progbar renders an in-place progress bar of the form
//
//	  123/10000 [==>..........] - ETA: 12s - reward: 1.000
//
// redrawing the same line on every update and finishing it with the total
// elapsed time once the target is reached.
type Progbar struct {
	Target int
	Width  int

	out      io.Writer
	start    time.Time
	now      func() time.Time
	lastLine int
}

// NewProgbar returns a bar counting up to target, writing to out.
func NewProgbar(target int, out io.Writer) *Progbar {
	return &Progbar{
		Target: target,
		Width:  30,
		out:    out,
		start:  time.Now(),
		now:    time.Now,
	}
}

// Update redraws the bar at position current with the given trailing values.
func (p *Progbar) Update(current int, values []ProgbarValue) {
	if current > p.Target {
		current = p.Target
	}

	digits := len(strconv.Itoa(p.Target))
	var b strings.Builder
	fmt.Fprintf(&b, "%*d/%d [", digits, current, p.Target)

	filled := 0
	if p.Target > 0 {
		filled = current * p.Width / p.Target
	}
	for i := 0; i < p.Width; i++ {
		switch {
		case i < filled-1:
			b.WriteByte('=')
		case i == filled-1 && current < p.Target:
			b.WriteByte('>')
		case i <= filled-1:
			b.WriteByte('=')
		default:
			b.WriteByte('.')
		}
	}
	b.WriteByte(']')

	elapsed := p.now().Sub(p.start)
	if current < p.Target {
		eta := time.Duration(0)
		if current > 0 {
			eta = elapsed / time.Duration(current) * time.Duration(p.Target-current)
		}
		fmt.Fprintf(&b, " - ETA: %ds", int(eta.Seconds()))
	} else {
		fmt.Fprintf(&b, " - %.0fs", elapsed.Seconds())
	}

	for _, v := range values {
		fmt.Fprintf(&b, " - %s: %.3f", v.Name, v.Value)
	}

	line := b.String()
	pad := p.lastLine - len(line)
	p.lastLine = len(line)
	if pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	fmt.Fprintf(p.out, "\r%s", line)
	if current >= p.Target {
		fmt.Fprintln(p.out)
	}
}
