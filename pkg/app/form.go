package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"katydid-storefront/pkg/api"
	"katydid-storefront/pkg/cache"
	"katydid-storefront/pkg/notify"
	"katydid-storefront/pkg/validator"
	"katydid-storefront/pkg/validator/forms"
)

// FormSubmitter 表单提交目标
type FormSubmitter interface {
	SubmitForm(ctx context.Context, form, scene string, values map[string]any) (api.FormResult, error)
}

// FormController 表单页面：实时校验与提交
type FormController struct {
	submitter FormSubmitter
	notifier  notify.Notifier
	logger    *zap.Logger
	opts      []forms.Option

	mu       sync.Mutex
	inflight map[string]bool
}

// FormController 使用 App 的客户端提交
func (a *App) FormController(opts ...forms.Option) *FormController {
	return NewFormController(a.client, a.notifier, a.logger, opts...)
}

// NewFormController 创建表单控制器，opts 作用于每次构造的规则集
func NewFormController(submitter FormSubmitter, notifier notify.Notifier, logger *zap.Logger, opts ...forms.Option) *FormController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormController{
		submitter: submitter,
		notifier:  notifier,
		logger:    logger,
		opts:      opts,
		inflight:  make(map[string]bool),
	}
}

func (c *FormController) orchestrator(form string, scene validator.ValidateScene) (*validator.Orchestrator, error) {
	opts := append([]forms.Option{forms.WithLogger(c.logger)}, c.opts...)
	opts = append(opts, forms.WithScene(scene))
	return forms.Lookup(form, opts...)
}

// ValidateField 单个字段失焦/输入时的校验，values 用于跨字段规则
func (c *FormController) ValidateField(form, field string, values validator.Values, scene validator.ValidateScene) (validator.ValidationResult, error) {
	o, err := c.orchestrator(form, scene)
	if err != nil {
		return validator.ValidationResult{}, err
	}
	return o.ValidateFieldIn(field, values), nil
}

// Validate 校验整个表单
func (c *FormController) Validate(form string, values validator.Values, scene validator.ValidateScene) (*validator.FormValidationReport, error) {
	o, err := c.orchestrator(form, scene)
	if err != nil {
		return nil, err
	}
	return o.ValidateForm(values), nil
}

// Submit 校验通过后提交
//
// 校验失败时不发请求，展示第一条错误并返回报告；
// 同一表单上一次提交未完成时返回 ErrBusy。
func (c *FormController) Submit(ctx context.Context, form string, values validator.Values, scene validator.ValidateScene) (api.FormResult, *validator.FormValidationReport, error) {
	report, err := c.Validate(form, values, scene)
	if err != nil {
		return api.FormResult{}, nil, err
	}
	if !report.IsValid {
		first, _ := report.FirstError()
		c.notifier.ShowMessage(first.Message, notify.LevelError)
		return api.FormResult{}, report, report.Err()
	}

	if !c.begin(form) {
		return api.FormResult{}, report, ErrBusy
	}
	defer c.end(form)

	result, err := c.submitter.SubmitForm(ctx, form, scene.String(), values)
	if err != nil {
		var rejected *api.RejectedError
		if errors.As(err, &rejected) && len(rejected.Fields) > 0 {
			c.logger.Info("form rejected by server",
				zap.String("form", form), zap.Any("fields", rejected.Fields))
		}
		if errors.Is(err, api.ErrUnauthorized) {
			c.notifier.ShowModal(notify.ModalLogin)
		}
		c.notifier.ShowMessage(cache.UserMessage(err), notify.LevelError)
		return api.FormResult{}, report, err
	}

	message := result.Message
	if message == "" {
		message = "Saved successfully"
	}
	c.notifier.ShowMessage(message, notify.LevelSuccess)
	return result, report, nil
}

func (c *FormController) begin(form string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[form] {
		return false
	}
	c.inflight[form] = true
	return true
}

func (c *FormController) end(form string) {
	c.mu.Lock()
	delete(c.inflight, form)
	c.mu.Unlock()
}
