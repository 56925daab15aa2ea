package api

import (
	"context"
	"net/http"
	"net/url"
)

// FormResult 表单提交结果
type FormResult struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// SubmitForm 提交表单，values 为字段名到当前值；scene 为空时由服务端按新建处理
// 服务端校验失败时返回 *RejectedError，Fields 为各字段的错误提示
func (c *Client) SubmitForm(ctx context.Context, form, scene string, values map[string]any) (FormResult, error) {
	path := "/api/forms/" + url.PathEscape(form)
	if scene != "" {
		path += "?" + url.Values{"scene": {scene}}.Encode()
	}
	var result FormResult
	if err := c.do(ctx, http.MethodPost, path, values, &result); err != nil {
		return FormResult{}, err
	}
	return result, nil
}

// Login 登录并保存 token
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return Session{}, err
	}
	if err := c.SetToken(resp.Token); err != nil {
		return Session{}, err
	}
	return c.Session(), nil
}

// Logout 清除 token，之后按游客身份调用
func (c *Client) Logout() {
	_ = c.SetToken("")
}
