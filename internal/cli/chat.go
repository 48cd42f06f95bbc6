package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/khanglvm/speakeasy/internal/engine"
	"github.com/spf13/cobra"
)

// maxLineSize bounds a single chat line.
const maxLineSize = 1024 * 1024

// NewChatCmd creates the 'chat' command, an interactive reply loop.
func NewChatCmd(opts *GlobalOptions) *cobra.Command {
	var train bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively, optionally rating each reply",
		Long: `Read prompts line by line and print a reply to each.

With --train, every reply is followed by a feedback prompt:
  y / n        learn the reply with score 1 / 0
  0.0 - 1.0    learn the reply with that score
  =TEXT        learn TEXT as a good reply instead
  (blank)      skip

Type /quit or send EOF to stop.`,
		Example: `  speakeasy chat
  speakeasy chat --train
  printf 'hello\nbye\n' | speakeasy chat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			return runChat(sess.engine, cmd.InOrStdin(), cmd.OutOrStdout(), train)
		},
	}

	cmd.Flags().BoolVarP(&train, "train", "t", false, "Ask for feedback after every reply and learn from it")

	return cmd
}

// runChat drives the reply loop until /quit or end of input.
func runChat(eng *engine.Engine, in io.Reader, out io.Writer, train bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		prompt := strings.TrimRight(scanner.Text(), "\r")
		switch strings.TrimSpace(prompt) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		response, err := eng.Reply(prompt)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, response)

		if !train {
			continue
		}

		fmt.Fprint(out, "  rate [y/n, 0-1, =better reply, blank to skip]: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fb, err := parseFeedback(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "  ✗ %v (not learned)\n", err)
			continue
		}
		if fb.skip {
			continue
		}

		learned := response
		if fb.correction != "" {
			learned = fb.correction
		}
		if err := eng.Learn(prompt, learned, fb.score); err != nil {
			return err
		}
		fmt.Fprintf(out, "  ✓ learned %q (score %.2f)\n", learned, engine.Clamp(fb.score))
	}
}

// feedback is a parsed rating line.
type feedback struct {
	skip       bool
	score      float64
	correction string
}

// parseFeedback interprets a rating line. Booleans map to 1 and 0 here,
// before reaching the engine.
func parseFeedback(line string) (feedback, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return feedback{skip: true}, nil
	}
	if strings.HasPrefix(line, "=") {
		correction := strings.TrimSpace(line[1:])
		if correction == "" {
			return feedback{}, fmt.Errorf("empty correction")
		}
		return feedback{score: 1, correction: correction}, nil
	}

	switch strings.ToLower(line) {
	case "y", "yes", "+":
		return feedback{score: 1}, nil
	case "n", "no", "-":
		return feedback{score: 0}, nil
	}

	score, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return feedback{}, fmt.Errorf("unrecognized feedback %q", line)
	}
	return feedback{score: score}, nil
}
