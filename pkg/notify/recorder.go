package notify

import "sync"

// Message 一条已展示的提示
type Message struct {
	Text  string
	Level Level
}

// Recorder 记录所有提示，用于测试
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	modals   []string
	prompts  []string
	answer   bool
}

var (
	_ Notifier  = (*Recorder)(nil)
	_ Confirmer = (*Recorder)(nil)
)

// NewRecorder answer 为 Confirm 的固定返回值
func NewRecorder(answer bool) *Recorder {
	return &Recorder{answer: answer}
}

func (r *Recorder) ShowMessage(text string, level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: text, Level: level})
}

func (r *Recorder) ShowModal(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modals = append(r.modals, id)
}

func (r *Recorder) Confirm(prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	return r.answer
}

// SetAnswer 修改 Confirm 的返回值
func (r *Recorder) SetAnswer(answer bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answer = answer
}

// Messages 已展示的提示
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last 最后一条提示
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Modals 已打开的弹窗
func (r *Recorder) Modals() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.modals...)
}

// Prompts 已询问的确认
func (r *Recorder) Prompts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prompts...)
}
