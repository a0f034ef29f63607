package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/xdsai/persephone"
	"github.com/xdsai/persephone/pkg/domain"
	"github.com/xdsai/persephone/pkg/ports"
)

// CommandPrefix marks hidden command input at the prompt, e.g. "/ghost".
const CommandPrefix = "/"

const helpText = `Commands:
  <number>   pick a choice
  back, b    step back (while the run can roam)
  lore       list discovered lore
  save       store the run
  load       restore the stored run
  reset      start over
  help, ?    show this help
  quit, q    leave
  /<name>    whisper a hidden command`

// Player runs an interactive play loop over a reader and a writer.
type Player struct {
	engine *persephone.Engine
	in     *bufio.Scanner
	w      io.Writer
	out    *termenv.Output

	render      RenderFunc
	store       ports.SaveStore
	interactive bool
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithRenderer sets the markdown renderer for node text.
func WithRenderer(r RenderFunc) PlayerOption {
	return func(p *Player) {
		if r != nil {
			p.render = r
		}
	}
}

// WithStore enables the save and load commands.
func WithStore(store ports.SaveStore) PlayerOption {
	return func(p *Player) {
		p.store = store
	}
}

// WithInteractive shows the prompt before each read.
func WithInteractive(interactive bool) PlayerOption {
	return func(p *Player) {
		p.interactive = interactive
	}
}

// NewPlayer creates a play loop for engine.
func NewPlayer(engine *persephone.Engine, r io.Reader, w io.Writer, opts ...PlayerOption) *Player {
	p := &Player{
		engine: engine,
		in:     bufio.NewScanner(r),
		w:      w,
		out:    termenv.NewOutput(w),
		render: PlainRenderer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run shows the current node and processes input until quit, EOF or ctx is done.
func (p *Player) Run(ctx context.Context) error {
	p.show()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.interactive {
			fmt.Fprint(p.w, "> ")
		}
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		}

		line, err := SanitizeInput(p.in.Text())
		if err != nil {
			fmt.Fprintf(p.w, "Error: %v. Please try again.\n", err)
			continue
		}
		if line == "" {
			continue
		}

		quit, err := p.handle(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

func (p *Player) handle(ctx context.Context, line string) (bool, error) {
	if name, ok := strings.CutPrefix(line, CommandPrefix); ok {
		p.invoke(name)
		return false, nil
	}

	switch strings.ToLower(line) {
	case "q", "quit", "exit":
		return true, nil
	case "?", "help":
		fmt.Fprintln(p.w, helpText)
	case "b", "back":
		if p.engine.Back() {
			p.show()
		} else {
			p.notice("There is no way back.")
		}
	case "lore":
		p.showLore()
	case "reset":
		p.engine.Reset()
		p.show()
	case "save":
		return false, p.save(ctx)
	case "load":
		return false, p.load(ctx)
	default:
		n, err := strconv.Atoi(line)
		if err != nil {
			p.notice("Unknown command. Type help for options.")
			return false, nil
		}
		offered := p.engine.OfferedIndices()
		if n >= 1 && n <= len(offered) && p.engine.Choose(offered[n-1]) {
			p.show()
		} else {
			p.notice("That choice is not available.")
		}
	}
	return false, nil
}

func (p *Player) invoke(name string) {
	res, ok := p.engine.Invoke(name)
	switch {
	case !ok:
		p.notice("Nothing answers.")
	case res.Moved:
		p.show()
	default:
		fmt.Fprintln(p.w, p.out.String(res.Message).Italic())
	}
}

func (p *Player) save(ctx context.Context) error {
	if p.store == nil {
		p.notice("Saving is not configured.")
		return nil
	}
	if err := p.engine.Save(ctx, p.store); err != nil {
		return err
	}
	p.notice("Run saved.")
	return nil
}

func (p *Player) load(ctx context.Context) error {
	if p.store == nil {
		p.notice("Saving is not configured.")
		return nil
	}
	ok, err := p.engine.Load(ctx, p.store)
	if err != nil {
		return err
	}
	if !ok {
		p.notice("No usable save. Starting over.")
	}
	p.show()
	return nil
}

func (p *Player) show() {
	node := p.engine.Current()
	fmt.Fprintln(p.w)
	if node.IsEnding() {
		title := node.Title
		if title == "" {
			title = node.EndingID
		}
		fmt.Fprintln(p.w, p.out.String("THE END: "+title).Bold())
	}

	text, err := p.render(node.Text)
	if err != nil {
		text = node.Text
	}
	fmt.Fprintln(p.w, strings.TrimSpace(text))

	if p.engine.Meta().UX.ShowStats {
		fmt.Fprintln(p.w, p.out.String(statsLine(p.engine.State())).Faint())
	}

	if node.IsEnding() {
		fmt.Fprintln(p.w, p.out.String("Type reset to play again or quit to leave.").Faint())
		return
	}

	fmt.Fprintln(p.w)
	n := 0
	for _, rc := range p.engine.RenderableChoices() {
		if rc.Enabled {
			n++
			fmt.Fprintf(p.w, "  %d. %s\n", n, rc.Choice.Text)
			continue
		}
		locked := fmt.Sprintf("  -  %s (%s)", rc.Choice.Text, rc.Reason)
		fmt.Fprintln(p.w, p.out.String(locked).Faint())
	}
}

func (p *Player) showLore() {
	lore := p.engine.Lore()
	if len(lore) == 0 {
		p.notice("No lore discovered yet.")
		return
	}
	for _, item := range lore {
		fmt.Fprintf(p.w, "  %s", p.out.String(item.Title).Bold())
		if item.Summary != "" {
			fmt.Fprintf(p.w, ": %s", item.Summary)
		}
		fmt.Fprintln(p.w)
	}
}

func (p *Player) notice(msg string) {
	fmt.Fprintln(p.w, p.out.String(msg).Foreground(p.out.Color("#f472b6")))
}

func statsLine(s domain.State) string {
	parts := make([]string, 0, len(domain.StatNames))
	for _, name := range domain.StatNames {
		v, _ := s.Stat(name)
		parts = append(parts, fmt.Sprintf("%s %d", name, v))
	}
	return strings.Join(parts, " | ")
}
