package media

import (
	"context"
	"fmt"
	"os/exec"
)

// CommandPlayer runs an external player with the cached file appended to
// its arguments, e.g. ["afplay"] or ["mpv", "--no-video"].
type CommandPlayer struct {
	library *Library
	command []string
}

func NewCommandPlayer(library *Library, command []string) *CommandPlayer {
	return &CommandPlayer{
		library: library,
		command: command,
	}
}

func (p *CommandPlayer) Play(ctx context.Context, key string) error {
	if len(p.command) == 0 {
		return nil
	}
	path, err := p.library.Path(ctx, key)
	if err != nil {
		return fmt.Errorf("library.Path(%s) > %w", key, err)
	}

	args := append(append([]string{}, p.command[1:]...), path)
	if output, err := exec.CommandContext(ctx, p.command[0], args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s > %w: %s", p.command[0], err, output)
	}
	return nil
}

type NopPlayer struct{}

func (NopPlayer) Play(context.Context, string) error {
	return nil
}
