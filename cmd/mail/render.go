package main

import (
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

// incomingMail 与 domain.MailMessage 相同，只是 Data 延迟到确定类型之后再解析
type incomingMail struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

type mailTemplate struct {
	subject string
	tmpl    *template.Template
}

func loadTemplates(dir string) (map[string]mailTemplate, error) {
	tmpl, err := template.ParseFiles(dir + "/schedule_assigned_email.html")
	if err != nil {
		return nil, err
	}

	return map[string]mailTemplate{
		domain.MailTypeScheduleAssigned: {subject: "排班系统 - 排班通知", tmpl: tmpl},
	}, nil
}

// buildMail 根据消息内容构建邮件，返回的错误说明消息本身有问题，重试也不会成功
func buildMail(from string, templates map[string]mailTemplate, body []byte) (*mail.Msg, error) {
	var in incomingMail
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	mt, ok := templates[in.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型: %q", in.Type)
	}

	var data any
	switch in.Type {
	case domain.MailTypeScheduleAssigned:
		d := domain.ScheduleAssignedMailData{}
		if err := json.Unmarshal(in.Data, &d); err != nil {
			return nil, fmt.Errorf("邮件数据反序列化失败: %w", err)
		}
		data = d
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(in.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	m.Subject(mt.subject)
	if err := m.SetBodyHTMLTemplate(mt.tmpl, data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}

	return m, nil
}
