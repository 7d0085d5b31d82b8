package inspect

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/oisee/utf-transcoder/pkg/coder"
)

// TUI is the interactive register inspector.
type TUI struct {
	Coder *coder.Coder
	App   *tview.Application

	MainLayout *tview.Flex

	RegisterView *tview.TextView
	FlagsView    *tview.TextView
	PointerView  *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField
}

// NewTUI creates the inspector around an existing coder.
func NewTUI(c *coder.Coder) *TUI {
	t := &TUI{
		Coder: c,
		App:   tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	t.refresh()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Register ")

	t.FlagsView = tview.NewTextView().SetDynamicColors(true)
	t.FlagsView.SetBorder(true).SetTitle(" Flags ")

	t.PointerView = tview.NewTextView().SetDynamicColors(true)
	t.PointerView.SetBorder(true).SetTitle(" Pointers ")

	t.OutputView = tview.NewTextView().
		SetScrollable(true).
		SetMaxLines(500)
	t.OutputView.SetBorder(true).SetTitle(" Transcript ")

	t.CommandInput = tview.NewInputField().SetLabel("> ")
	t.CommandInput.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := t.CommandInput.GetText()
		t.CommandInput.SetText("")
		t.execute(line)
	})
}

func (t *TUI) buildLayout() {
	top := tview.NewFlex().
		AddItem(t.RegisterView, 0, 1, false).
		AddItem(t.FlagsView, 0, 2, false).
		AddItem(t.PointerView, 0, 2, false)

	t.MainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 7, 0, false).
		AddItem(t.OutputView, 0, 1, false).
		AddItem(t.CommandInput, 1, 0, true)
}

func (t *TUI) execute(line string) {
	out, err := Execute(t.Coder, line)
	switch {
	case errors.Is(err, ErrQuit):
		t.App.Stop()
		return
	case err != nil:
		fmt.Fprintf(t.OutputView, "error: %v\n", err)
	case out != "":
		fmt.Fprintln(t.OutputView, out)
	}
	t.refresh()
}

func (t *TUI) refresh() {
	t.RegisterView.SetText(FormatRegister(t.Coder))
	t.FlagsView.SetText(FormatFlags(t.Coder))
	t.PointerView.SetText(FormatPointers(t.Coder))
}

// Run starts the interface and blocks until quit.
func (t *TUI) Run() error {
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}
