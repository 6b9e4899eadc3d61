package callbacks

import (
	"fmt"
	"io"
	"os"
)

// TestLogger prints a one-line summary after every test episode.
type TestLogger struct {
	Base
	Out io.Writer
}

func NewTestLogger() *TestLogger {
	return &TestLogger{Out: os.Stdout}
}

func (l *TestLogger) OnEpisodeEnd(episode int, logs EpisodeLogs) {
	fmt.Fprintf(l.Out, "Episode %d: reward: %.3f, steps: %d\n", episode+1, logs.EpisodeReward, logs.Steps)
}
