package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, error) {
	return append([]models.ActivityLog(nil), m.entries...), nil
}

func TestActivityServiceRecordMasksSecrets(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "Lecturer",
		Action:     "Assignment.Created",
		EntityType: "assignment",
		EntityID:   uintPtr(5),
		Metadata: map[string]interface{}{
			"password":     "hunter2",
			"access_token": "abc",
			"topic_name":   "Sorting",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "***", entry.Metadata["password"])
	require.Equal(t, "***", entry.Metadata["access_token"])
	require.Equal(t, "Sorting", entry.Metadata["topic_name"])
	require.Equal(t, "lecturer", entry.ActorRole)
	require.Equal(t, "assignment.created", entry.Action)
	require.Len(t, repo.entries, 1)
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "assignment"})
	require.Error(t, err)

	_, err = svc.Record(context.Background(), ActivityEntry{Action: "assignment.created"})
	require.Error(t, err)
	require.Empty(t, repo.entries)
}

func TestActivityServiceDefaultsRole(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{Action: "seed", EntityType: "course"})
	require.NoError(t, err)
	require.Equal(t, "system", entry.ActorRole)
	require.NotNil(t, entry.Metadata)
}
