// Package notify 用户提示：消息条、登录弹窗、确认框
package notify

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level 提示级别
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// 弹窗 ID
const (
	ModalLogin = "login"
)

// Notifier 展示提示
type Notifier interface {
	ShowMessage(text string, level Level)
	ShowModal(id string)
}

// Confirmer 需要用户确认的操作（如删除）
type Confirmer interface {
	Confirm(prompt string) bool
}

// Terminal 终端实现，使用 lipgloss 着色
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	in     *bufio.Reader
	styles map[Level]lipgloss.Style
	modal  lipgloss.Style
}

var (
	_ Notifier  = (*Terminal)(nil)
	_ Confirmer = (*Terminal)(nil)
)

// NewTerminal 创建终端提示；in 为 nil 时 Confirm 总是返回 false
func NewTerminal(out io.Writer, in io.Reader) *Terminal {
	r := lipgloss.NewRenderer(out)
	t := &Terminal{
		out: out,
		styles: map[Level]lipgloss.Style{
			LevelInfo:    r.NewStyle().Foreground(lipgloss.Color("12")),
			LevelSuccess: r.NewStyle().Foreground(lipgloss.Color("10")),
			LevelWarning: r.NewStyle().Foreground(lipgloss.Color("11")),
			LevelError:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		},
		modal: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 2),
	}
	if in != nil {
		t.in = bufio.NewReader(in)
	}
	return t
}

// ShowMessage 输出一行提示
func (t *Terminal) ShowMessage(text string, level Level) {
	t.mu.Lock()
	defer t.mu.Unlock()

	style, ok := t.styles[level]
	if !ok {
		style = t.styles[LevelInfo]
	}
	fmt.Fprintln(t.out, style.Render(levelIcon(level)+" "+text))
}

// ShowModal 输出弹窗
func (t *Terminal) ShowModal(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	body := modalText(id)
	fmt.Fprintln(t.out, t.modal.Render(body))
}

// Confirm 读取 y/yes 为确认
func (t *Terminal) Confirm(prompt string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprint(t.out, t.styles[LevelWarning].Render(prompt+" [y/N] "))
	if t.in == nil {
		fmt.Fprintln(t.out)
		return false
	}
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func levelIcon(level Level) string {
	switch level {
	case LevelSuccess:
		return "✔"
	case LevelWarning:
		return "!"
	case LevelError:
		return "✖"
	}
	return "i"
}

func modalText(id string) string {
	switch id {
	case ModalLogin:
		return "Login required\nPlease login to continue."
	}
	return id
}
