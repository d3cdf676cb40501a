package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

// scheduleAssignedMails 为排班表中每个分到班次的员工准备一封通知邮件，顺序与 staff 一致
func scheduleAssignedMails(staff []*domain.Staff, schedule *domain.Schedule) []domain.MailMessage {
	mails := make([]domain.MailMessage, 0, len(staff))

	visited := make(map[int64]bool, len(staff))
	for _, s := range staff {
		if visited[s.ID] {
			continue
		}
		visited[s.ID] = true

		shifts := schedule.ShiftsByStaff(s.ID)
		if len(shifts) == 0 {
			continue
		}

		data := domain.ScheduleAssignedMailData{
			FullName:    s.FullName,
			ScheduleID:  schedule.ID,
			PeriodStart: schedule.PeriodStart.Format(time.DateOnly),
			Shifts:      make([]domain.ScheduleAssignedMailShift, 0, len(shifts)),
		}
		for _, shift := range shifts {
			data.Shifts = append(data.Shifts, domain.ScheduleAssignedMailShift{
				StartTime: shift.StartTime,
				EndTime:   shift.EndTime,
			})
		}

		mails = append(mails, domain.MailMessage{
			Type: domain.MailTypeScheduleAssigned,
			To:   s.Email,
			Data: data,
		})
	}

	return mails
}

func (h *Handler) publishMail(mail domain.MailMessage) error {
	mailData, err := json.Marshal(mail)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         mailData,
		},
	)
}

// notifyAssignedStaff 排班表已经提交，邮件发送失败只记录日志
func (h *Handler) notifyAssignedStaff(staff []*domain.Staff, schedule *domain.Schedule) {
	if h.mailChannel == nil {
		return
	}

	for _, mail := range scheduleAssignedMails(staff, schedule) {
		if err := h.publishMail(mail); err != nil {
			slog.Error("无法发送排班通知邮件", "scheduleID", schedule.ID, "to", mail.To, "error", err)
		}
	}
}
