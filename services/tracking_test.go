package services

import (
	"testing"

	"creator-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecordActionCreatesAndCounts(t *testing.T) {
	db := newTestDB(t)
	tracking := NewTrackingService(db)

	prog, err := tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionView, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), prog.ViewCount)

	prog, err = tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionView, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), prog.ViewCount)

	// One progress row, two log entries.
	var rows int64
	require.NoError(t, db.Model(&models.ContentProgress{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
	require.NoError(t, db.Model(&models.TrackingAction{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}

func TestRecordActionWatchTimeMonotonic(t *testing.T) {
	db := newTestDB(t)
	tracking := NewTrackingService(db)

	prog, err := tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionWatchTime,
		map[string]interface{}{"seconds": float64(120)})
	require.NoError(t, err)
	assert.Equal(t, int64(120), prog.WatchTimeSec)

	// Negative deltas are ignored; the counter never moves backwards.
	prog, err = tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionWatchTime,
		map[string]interface{}{"seconds": float64(-30)})
	require.NoError(t, err)
	assert.Equal(t, int64(120), prog.WatchTimeSec)

	prog, err = tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionWatchTime,
		map[string]interface{}{"seconds": float64(60)})
	require.NoError(t, err)
	assert.Equal(t, int64(180), prog.WatchTimeSec)
}

func TestRecordActionCompleteIsOneWay(t *testing.T) {
	db := newTestDB(t)
	tracking := NewTrackingService(db)

	prog, err := tracking.RecordAction("u-1", models.ContentChallenge, "ch-1", models.ActionComplete, nil)
	require.NoError(t, err)
	require.True(t, prog.IsCompleted)
	require.NotNil(t, prog.CompletedAt)
	firstCompletion := *prog.CompletedAt

	prog, err = tracking.RecordAction("u-1", models.ContentChallenge, "ch-1", models.ActionComplete, nil)
	require.NoError(t, err)
	assert.True(t, prog.IsCompleted)
	assert.Equal(t, firstCompletion.Unix(), prog.CompletedAt.Unix())
}

func TestRecordActionRate(t *testing.T) {
	db := newTestDB(t)
	tracking := NewTrackingService(db)

	prog, err := tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionRate,
		map[string]interface{}{"rating": float64(4), "review": "solid"})
	require.NoError(t, err)
	assert.Equal(t, 4, prog.Rating)
	assert.Equal(t, "solid", prog.Review)

	// Out-of-range ratings are dropped.
	prog, err = tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionRate,
		map[string]interface{}{"rating": float64(9)})
	require.NoError(t, err)
	assert.Equal(t, 4, prog.Rating)
}

func TestRecordActionBookmarkSetLike(t *testing.T) {
	db := newTestDB(t)
	tracking := NewTrackingService(db)

	meta := map[string]interface{}{"bookmark_id": "lesson-3"}
	_, err := tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionBookmark, meta)
	require.NoError(t, err)
	prog, err := tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionBookmark, meta)
	require.NoError(t, err)

	assert.Equal(t, []string{"lesson-3"}, prog.Bookmarks)
}

func TestRecordActionUnknownType(t *testing.T) {
	db := newTestDB(t)
	tracking := NewTrackingService(db)

	_, err := tracking.RecordAction("u-1", models.ContentCourse, "c-1", models.ActionType("teleport"), nil)
	assert.Error(t, err)
}

func TestGetProgressMissingRow(t *testing.T) {
	db := newTestDB(t)
	tracking := NewTrackingService(db)

	_, err := tracking.GetProgress("u-1", models.ContentCourse, "never-touched")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetRecentActionsLimit(t *testing.T) {
	db := newTestDB(t)
	tracking := NewTrackingService(db)

	for i := 0; i < 5; i++ {
		_, err := tracking.RecordAction("u-1", models.ContentPost, "p-1", models.ActionView, nil)
		require.NoError(t, err)
	}
	_, err := tracking.RecordAction("u-2", models.ContentPost, "p-1", models.ActionView, nil)
	require.NoError(t, err)

	actions, err := tracking.GetRecentActions("u-1", 3)
	require.NoError(t, err)
	assert.Len(t, actions, 3)
	for _, a := range actions {
		assert.Equal(t, "u-1", a.UserID)
	}

	// Out-of-range limits fall back to the default.
	actions, err = tracking.GetRecentActions("u-1", -1)
	require.NoError(t, err)
	assert.Len(t, actions, 5)
}
