package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/internal/notifications"
	"github.com/glowcall/glowcall-backend/pkg/db/dbtest"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	"github.com/glowcall/glowcall-backend/pkg/logger"
)

func TestNotificationCleanupJobDeletesOnlyOldReadRows(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-100 * 24 * time.Hour)
	recent := now.Add(-10 * 24 * time.Hour)

	oldRead := seedNotification(t, conn, old, &old)
	recentRead := seedNotification(t, conn, recent, &recent)
	oldUnread := seedNotification(t, conn, old, nil)

	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     testLogger(),
		DB:         client,
		Repository: notifications.NewRepository(conn),
	})
	require.NoError(t, err)
	job := jobIface.(*notificationCleanupJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	var remaining []models.Notification
	require.NoError(t, conn.Find(&remaining).Error)
	ids := map[uuid.UUID]bool{}
	for _, row := range remaining {
		ids[row.ID] = true
	}
	assert.False(t, ids[oldRead.ID])
	assert.True(t, ids[recentRead.ID])
	assert.True(t, ids[oldUnread.ID])
}

func TestNotificationCleanupJobPropagatesErrors(t *testing.T) {
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     testLogger(),
		DB:         failingTxRunner{err: errors.New("boom")},
		Repository: notifications.NewRepository(nil),
	})
	require.NoError(t, err)

	err = jobIface.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notification cleanup")
}

func TestNotificationCleanupJobDefaultsRetention(t *testing.T) {
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     testLogger(),
		DB:         failingTxRunner{},
		Repository: notifications.NewRepository(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, notificationRetentionDays, jobIface.(*notificationCleanupJob).retention)

	_, err = NewNotificationCleanupJob(NotificationCleanupJobParams{Logger: testLogger(), DB: failingTxRunner{}})
	assert.Error(t, err)
}

func seedNotification(t *testing.T, conn *gorm.DB, createdAt time.Time, readAt *time.Time) *models.Notification {
	t.Helper()
	row := &models.Notification{
		ID:            uuid.New(),
		RecipientType: enums.RecipientCustomer,
		RecipientID:   uuid.New(),
		Type:          enums.NotificationTypeBookingConfirmed,
		Title:         "Booking confirmed",
		Message:       "See you soon",
		ReadAt:        readAt,
		CreatedAt:     createdAt,
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

type failingTxRunner struct {
	err error
}

func (f failingTxRunner) WithTx(context.Context, func(tx *gorm.DB) error) error {
	return f.err
}
