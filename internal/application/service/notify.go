package service

import (
	"context"

	"github.com/lmasson/course-management/internal/application/port"
	"github.com/lmasson/course-management/internal/domain/entity"
)

// fanOutToStudents sends the same message to every STUDENT user in the
// directory, one send per recipient. There is no batching and no
// ordering guarantee between recipients; a failed send is logged and
// counted but never aborts the remaining sends. Students without an
// email address are skipped.
func fanOutToStudents(ctx context.Context, userRepo port.UserRepository, notifier port.Notifier, logger Logger, subject, body string) port.Delivery {
	var delivery port.Delivery

	students, err := userRepo.FindByRole(ctx, entity.RoleStudent)
	if err != nil {
		logger.Error("Failed to resolve student recipients", "error", err, "subject", subject)
		return delivery
	}

	for _, student := range students {
		if student.Email == "" {
			logger.Info("Student has no email address, skipping notification",
				"student_id", student.ID, "student_name", student.FullName)
			continue
		}
		sendErr := notifier.Send(student.Email, subject, body)
		if sendErr != nil {
			logger.Error("Failed to notify student", "error", sendErr, "student_id", student.ID, "subject", subject)
		}
		delivery.Add(sendErr)
	}

	logger.Info("Student notification fan-out finished",
		"subject", subject, "attempted", delivery.Attempted, "failed", delivery.Failed)
	return delivery
}
