package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/wkarobia/cantera/core/group"
	"github.com/wkarobia/cantera/core/notification"
	"github.com/wkarobia/cantera/core/payment"
	"github.com/wkarobia/cantera/core/student"
	"github.com/wkarobia/cantera/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateGroup(t *testing.T, repo group.Repository, name, ageBracket, coachID string) group.Group {
	t.Helper()

	now := time.Now().UTC()
	grp, err := repo.CreateGroup(context.Background(), group.Group{
		Name:       name,
		AgeBracket: ageBracket,
		CoachID:    coachID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

func CreateStudent(t *testing.T, repo student.Repository, name, groupID string) student.Student {
	t.Helper()

	now := time.Now().UTC()
	stu, err := repo.CreateStudent(context.Background(), student.Student{
		Name:        name,
		BirthDate:   now.AddDate(-10, 0, 0),
		GroupID:     groupID,
		ParentName:  name + " Senior",
		ParentPhone: "+254700000000",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreateFeeType(t *testing.T, repo payment.Repository, name string, amount float64, interval string) payment.FeeType {
	t.Helper()

	now := time.Now().UTC()
	ft, err := repo.CreateFeeType(context.Background(), payment.FeeType{
		Name:      name,
		Amount:    amount,
		Interval:  interval,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateFeeType() failed: %v", err)
	}
	return ft
}

func CreatePayment(t *testing.T, repo payment.Repository, studentID string, ft payment.FeeType, due time.Time) payment.Payment {
	t.Helper()

	now := time.Now().UTC()
	p, err := repo.CreatePayment(context.Background(), payment.Payment{
		StudentID: studentID,
		FeeTypeID: ft.ID,
		Amount:    ft.Amount,
		Status:    payment.StatusPending,
		DueDate:   due,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return p
}

func CreateNotification(
	t *testing.T,
	repo notification.Repository,
	method notification.Method,
	status notification.Status,
	email, phone string,
	scheduledAt time.Time,
) notification.Notification {
	t.Helper()

	now := time.Now().UTC()
	n, err := repo.CreateNotification(context.Background(), notification.Notification{
		RecipientEmail: email,
		RecipientPhone: phone,
		Subject:        "Test subject",
		Body:           "Test body",
		Method:         method,
		Status:         status,
		ScheduledAt:    scheduledAt.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("CreateNotification() failed: %v", err)
	}
	return n
}
