package callbacks

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgbarUpdate(t *testing.T) {
	var out bytes.Buffer
	p := NewProgbar(10, &out)
	p.now = func() time.Time { return p.start.Add(time.Second) }

	p.Update(5, []ProgbarValue{{Name: "reward", Value: 1}})

	output := out.String()
	assert.True(t, strings.HasPrefix(output, "\r"))
	assert.Contains(t, output, " 5/10 [")
	assert.Contains(t, output, ">")
	assert.Contains(t, output, "ETA: 1s")
	assert.Contains(t, output, "reward: 1.000")
	assert.NotContains(t, output, "\n")
}

func TestProgbarFinishes(t *testing.T) {
	var out bytes.Buffer
	p := NewProgbar(10, &out)
	p.now = func() time.Time { return p.start.Add(3 * time.Second) }

	p.Update(10, nil)

	output := out.String()
	assert.Contains(t, output, "10/10 [")
	assert.NotContains(t, output, "ETA")
	assert.Contains(t, output, "3s")
	assert.True(t, strings.HasSuffix(output, "\n"))
}

func TestProgbarClampsOvershoot(t *testing.T) {
	var out bytes.Buffer
	p := NewProgbar(10, &out)
	p.Update(15, nil)
	assert.Contains(t, out.String(), "10/10 [")
}

func TestProgbarPadsShorterLines(t *testing.T) {
	var out bytes.Buffer
	p := NewProgbar(10, &out)
	p.now = func() time.Time { return p.start }

	p.Update(1, []ProgbarValue{{Name: "reward", Value: 1}, {Name: "loss", Value: 2}})
	long := out.Len()
	out.Reset()
	p.Update(2, nil)

	// The redraw blanks out the leftovers of the longer previous line.
	assert.GreaterOrEqual(t, out.Len(), long)
}
