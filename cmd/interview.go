package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/topics"
	"github.com/highlog/interviewer/internal/ui/theme"
	"github.com/spf13/cobra"
)

const quitCommand = "/quit"

// errQuit ends the loop after the candidate abandoned the session.
var errQuit = errors.New("interview abandoned")

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interview in the terminal",
	Long: "Run an interview in the terminal. Type each answer on one line; the time you take " +
		"counts against the session budget. Type /quit to abandon.",
	RunE: func(cmd *cobra.Command, args []string) error {
		recordID, _ := cmd.Flags().GetString("record")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		user, _ := cmd.Flags().GetString("user")
		withReport, _ := cmd.Flags().GetBool("report")
		deterministic, _ := cmd.Flags().GetBool("deterministic")

		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		var opts []interview.Option
		if deterministic {
			opts = append(opts, interview.WithPicker(topics.FirstPicker{}))
		}
		ctrl, err := d.controller(opts...)
		if err != nil {
			return err
		}

		r := &repl{
			driver: ctrl,
			in:     newAnswerScanner(cmd.InOrStdin()),
			out:    cmd.OutOrStdout(),
			now:    time.Now,
		}
		id, finished, err := r.run(cmd.Context(), interview.StartParams{
			UserID:     user,
			RecordID:   recordID,
			Difficulty: interview.Difficulty(difficulty),
		})
		if err != nil || !finished || !withReport {
			return err
		}

		fmt.Fprintln(r.out, "\nScoring the interview...")
		rep, err := d.reports().Generate(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
		printReport(r.out, id, rep)
		return nil
	},
}

func init() {
	interviewCmd.Flags().StringP("record", "r", "", "Student record id (see ingest)")
	interviewCmd.Flags().StringP("difficulty", "d", "Normal", "Easy, Normal or Hard")
	interviewCmd.Flags().String("user", "local", "User id recorded on the session")
	interviewCmd.Flags().Bool("report", true, "Generate the report when the interview ends")
	interviewCmd.Flags().Bool("deterministic", false, "Visit topics in catalog order instead of at random")
	_ = interviewCmd.MarkFlagRequired("record")
}

// turnDriver is the part of the controller the terminal loop uses.
type turnDriver interface {
	Start(ctx context.Context, p interview.StartParams) (*interview.TurnResult, error)
	ProcessTurn(ctx context.Context, id, answer string, responseTime int) (*interview.TurnResult, error)
	Abandon(ctx context.Context, id string) (*interview.Session, error)
	OpeningQuestion() string
}

// repl runs one interview over line-based input.
type repl struct {
	driver turnDriver
	in     *bufio.Scanner
	out    io.Writer
	now    func() time.Time
}

// run conducts the interview and returns the session id and whether it
// reached its natural end.
func (r *repl) run(ctx context.Context, p interview.StartParams) (string, bool, error) {
	question := r.driver.OpeningQuestion()
	id := ""
	for {
		fmt.Fprintf(r.out, "\n%s %s\n> ", theme.Interviewer.Render("Interviewer:"), question)
		asked := r.now()
		answer, ok, err := r.readLine()
		if err != nil {
			return id, false, err
		}
		if !ok || answer == quitCommand {
			return id, false, r.quit(ctx, id)
		}
		rt := int(r.now().Sub(asked).Seconds())

		res, err := r.submit(ctx, &id, p, answer, rt)
		if errors.Is(err, errQuit) {
			return id, false, nil
		}
		if err != nil {
			return id, false, err
		}
		if res.Finished {
			fmt.Fprintf(r.out, "\n%s\n", theme.Closing.Render(res.Question))
			return id, true, nil
		}
		question = res.Question
	}
}

// submit sends one answer. While the engine is temporarily unavailable it
// offers to resend the same answer.
func (r *repl) submit(ctx context.Context, id *string, p interview.StartParams, answer string, rt int) (*interview.TurnResult, error) {
	for {
		var (
			res *interview.TurnResult
			err error
		)
		if *id == "" {
			p.Answer, p.ResponseTime = answer, rt
			res, err = r.driver.Start(ctx, p)
			if res != nil {
				*id = res.SessionID
			}
		} else {
			res, err = r.driver.ProcessTurn(ctx, *id, answer, rt)
		}
		if !errors.Is(err, interview.ErrTransient) {
			return res, err
		}
		fmt.Fprintf(r.out, "\n%s\n> ", theme.Hint.Render("The interviewer is busy right now. Press Enter to resend your answer, or type /quit."))
		line, ok, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if !ok || line == quitCommand {
			if err := r.quit(ctx, *id); err != nil {
				return nil, err
			}
			return nil, errQuit
		}
	}
}

func (r *repl) quit(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := r.driver.Abandon(ctx, id); err != nil && !errors.Is(err, interview.ErrSessionFinished) {
		return fmt.Errorf("abandon session: %w", err)
	}
	fmt.Fprintf(r.out, "\nInterview %s abandoned.\n", id)
	return nil
}

// readLine returns the next trimmed line. ok is false at end of input. A
// read failure, such as an answer over maxAnswerBytes, is returned as an
// error and leaves the session in progress.
func (r *repl) readLine() (line string, ok bool, err error) {
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", false, fmt.Errorf("read answer: %w", err)
		}
		return "", false, nil
	}
	return strings.TrimSpace(r.in.Text()), true, nil
}

// maxAnswerBytes bounds a single answer line.
const maxAnswerBytes = 1 << 20

func newAnswerScanner(in io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxAnswerBytes)
	return sc
}
