// Package cli runs a study session in the terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/media"
	"github.com/at-ishikawa/flashdeck/internal/session"
)

var errEnd = errors.New("end")

//go:generate mockgen -source=study_cli.go -destination=../mocks/cli/mock_session.go -package=mock_cli Session

// Session is what the study loop needs from a session.Session.
type Session interface {
	View() session.View
	Catalog() catalog.Catalog
	Reveal() session.View
	Grade(ctx context.Context, correct bool) (session.View, error)
	Answer(ctx context.Context, input string) (session.View, error)
	Next(ctx context.Context) session.View
	ToggleRow(ctx context.Context, rowID string) (session.View, error)
	UnlockNext(ctx context.Context, kind string) (catalog.Row, session.View, error)
	SwitchMode(ctx context.Context, mode string) (session.View, error)
	Close(ctx context.Context)
}

// StudyCLI reads one command per line:
//
//	<enter>   reveal the answer
//	y / n     grade the card right or wrong
//	s         skip to another card
//	p         play the audio again
//	+[kind]   unlock the next batch
//	t <row>   toggle a row
//	m <mode>  switch mode
//	rows      list rows
//	q         quit
//
// With typed answers, any other input is checked against the answer.
type StudyCLI struct {
	session      Session
	player       media.Player
	typedAnswers bool
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	green        *color.Color
	red          *color.Color

	// guards stdoutWriter and answerShown; reveals are printed from a timer
	// goroutine
	mu          sync.Mutex
	answerShown bool
}

func NewStudyCLI(s Session, player media.Player, typedAnswers bool, stdin io.Reader, stdout io.Writer) *StudyCLI {
	if player == nil {
		player = media.NopPlayer{}
	}
	return &StudyCLI{
		session:      s,
		player:       player,
		typedAnswers: typedAnswers,
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
	}
}

func (cli *StudyCLI) printf(format string, args ...any) {
	cli.mu.Lock()
	defer cli.mu.Unlock()
	_, _ = fmt.Fprintf(cli.stdoutWriter, format, args...)
}

// Run loops until q, the end of input or an interrupt. Progress is saved on
// exit.
func (cli *StudyCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()
	defer cli.session.Close(context.WithoutCancel(ctx))

	cli.showCard(cli.session.View())

	errCh := make(chan error)
	go func() {
		defer close(errCh)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := cli.Step(ctx); err != nil {
				if !errors.Is(err, errEnd) {
					errCh <- err
				}
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		cli.printf("Received interrupt signal, exiting...\n")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// Step reads and runs one command.
func (cli *StudyCLI) Step(ctx context.Context) error {
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return errEnd
		}
		return fmt.Errorf("error reading input: %w", err)
	}
	input := strings.TrimSpace(line)

	switch command, arg, _ := strings.Cut(input, " "); {
	case input == "":
		view := cli.session.Reveal()
		if view.State == session.StateRevealed {
			cli.ShowAnswer(ctx, view)
		}
		return nil
	case input == "q":
		cli.showScore(cli.session.View())
		return errEnd
	case input == "y" || input == "n":
		view, err := cli.session.Grade(ctx, input == "y")
		if err != nil {
			return fmt.Errorf("session.Grade() > %w", err)
		}
		cli.showOutcome(view)
		cli.showCard(view)
		return nil
	case input == "s":
		cli.showCard(cli.session.Next(ctx))
		return nil
	case input == "p":
		if card := cli.session.View().Card; card != nil {
			cli.play(ctx, card.Entry.AudioKey)
		}
		return nil
	case input == "rows":
		cli.showRows()
		return nil
	case input == "?" || input == "h":
		cli.showHelp()
		return nil
	case strings.HasPrefix(input, "+"):
		row, view, err := cli.session.UnlockNext(ctx, strings.TrimPrefix(input, "+"))
		if errors.Is(err, session.ErrNothingToUnlock) {
			cli.printf("Nothing left to unlock.\n")
			return nil
		}
		if err != nil {
			return fmt.Errorf("session.UnlockNext() > %w", err)
		}
		cli.printf("Unlocked %s\n", cli.bold.Sprint(row.Label))
		cli.showCard(view)
		return nil
	case command == "t" && arg != "":
		view, err := cli.session.ToggleRow(ctx, strings.TrimSpace(arg))
		if errors.Is(err, session.ErrUnknownRow) {
			cli.printf("Unknown row %q. Type `rows` to list them.\n", arg)
			return nil
		}
		if err != nil {
			return fmt.Errorf("session.ToggleRow() > %w", err)
		}
		cli.showCard(view)
		return nil
	case command == "m" && arg != "":
		view, err := cli.session.SwitchMode(ctx, strings.TrimSpace(arg))
		if err != nil {
			cli.printf("%s\n", cli.red.Sprint(err.Error()))
			return nil
		}
		cli.printf("Mode: %s\n", view.Mode)
		cli.showCard(view)
		return nil
	case cli.typedAnswers:
		view, err := cli.session.Answer(ctx, input)
		if err != nil {
			return fmt.Errorf("session.Answer() > %w", err)
		}
		cli.showOutcome(view)
		cli.showCard(view)
		return nil
	default:
		cli.showHelp()
		return nil
	}
}

// ShowAnswer prints the answer of a revealed card and plays its audio, once
// per displayed card. Use it as the session's reveal hook.
func (cli *StudyCLI) ShowAnswer(ctx context.Context, view session.View) {
	if view.Card == nil {
		return
	}
	cli.mu.Lock()
	shown := cli.answerShown
	cli.answerShown = true
	cli.mu.Unlock()
	if shown {
		return
	}

	entry := view.Card.Entry
	cli.printf("%s\n", formatAnswer(entry, cli.italic))
	cli.play(ctx, entry.AudioKey)
}

func (cli *StudyCLI) play(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := cli.player.Play(ctx, key); err != nil {
		slog.Default().Debug("failed to play audio",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

func (cli *StudyCLI) showCard(view session.View) {
	cli.mu.Lock()
	cli.answerShown = false
	cli.mu.Unlock()

	if view.Card == nil {
		cli.printf("Nothing selected. Toggle a row with `t <row>` or unlock one with `+`.\n")
		return
	}
	hint := "[enter] reveal, y/n grade"
	if cli.typedAnswers {
		hint = "type the answer"
	}
	cli.printf("\n%s  %s\n", cli.bold.Sprint(view.Card.Entry.Prompt), hint)
}

func (cli *StudyCLI) showOutcome(view session.View) {
	if view.Previous == nil {
		return
	}
	entry := view.Previous.Entry
	if view.Previous.Correct {
		cli.printf("✅ %s\n", cli.green.Sprintf("Right: %s", formatAnswer(entry, nil)))
	} else {
		cli.printf("❌ %s\n", cli.red.Sprintf("Wrong: %s", formatAnswer(entry, nil)))
	}
	cli.showScore(view)
}

func (cli *StudyCLI) showScore(view session.View) {
	cli.printf("Score: %d right, %d wrong, streak %d, accuracy %d%%\n",
		view.Stats.Right, view.Stats.Wrong, view.Stats.Streak, view.Accuracy())
}

func (cli *StudyCLI) showRows() {
	view := cli.session.View()
	enabled := make(map[string]struct{}, len(view.Selection))
	for _, id := range view.Selection {
		enabled[id] = struct{}{}
	}
	for _, line := range FormatRows(cli.session.Catalog(), enabled) {
		cli.printf("%s\n", line)
	}
}

func (cli *StudyCLI) showHelp() {
	cli.printf("Commands: [enter] reveal, y right, n wrong, s skip, p play, +[kind] unlock, t <row> toggle, m <mode> mode, rows, q quit\n")
}

func formatAnswer(entry catalog.Entry, italic *color.Color) string {
	answer := entry.Answer
	if italic != nil {
		answer = italic.Sprint(answer)
	}
	parts := []string{entry.Prompt + " = " + answer}
	if entry.Reading != "" && entry.Reading != entry.Answer {
		parts = append(parts, "("+entry.Reading+")")
	}
	if entry.Alternate != "" {
		parts = append(parts, entry.Alternate)
	}
	return strings.Join(parts, " ")
}

// FormatRows lists the rows of a catalog grouped by section, marking the
// enabled ones.
func FormatRows(cat catalog.Catalog, enabled map[string]struct{}) []string {
	var lines []string
	for _, section := range cat.Sections {
		lines = append(lines, section.Label+":")
		for _, row := range section.Rows {
			mark := " "
			if _, ok := enabled[row.ID]; ok {
				mark = "x"
			}
			prompts := make([]string, 0, len(row.Entries))
			for i, entry := range row.Entries {
				if i == 5 {
					prompts = append(prompts, "...")
					break
				}
				prompts = append(prompts, entry.Prompt)
			}
			lines = append(lines, fmt.Sprintf("  [%s] %-12s %s", mark, row.ID, strings.Join(prompts, " ")))
		}
	}
	return lines
}
