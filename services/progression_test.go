package services

import (
	"testing"
	"time"

	"creator-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProgress(t *testing.T, db *gorm.DB, userID string, contentType models.ContentType, contentID string, mutate func(*models.ContentProgress)) {
	t.Helper()
	prog := models.ContentProgress{
		UserID:         userID,
		ContentType:    contentType,
		ContentID:      contentID,
		LastAccessedAt: time.Now(),
	}
	if mutate != nil {
		mutate(&prog)
	}
	require.NoError(t, db.Create(&prog).Error)
}

func TestOverviewStatusDerivation(t *testing.T) {
	db := newTestDB(t)
	progression := NewProgressionService(db)

	creator := seedUser(t, db, "creator@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	done := seedCourse(t, db, community.ID, creator.ID, 0)
	watching := seedCourse(t, db, community.ID, creator.ID, 0)
	opened := seedCourse(t, db, community.ID, creator.ID, 0)

	now := time.Now()
	seedProgress(t, db, "u-1", models.ContentCourse, done.ID, func(p *models.ContentProgress) {
		p.IsCompleted = true
		p.CompletedAt = &now
	})
	seedProgress(t, db, "u-1", models.ContentCourse, watching.ID, func(p *models.ContentProgress) {
		p.WatchTimeSec = 300
	})
	seedProgress(t, db, "u-1", models.ContentCourse, opened.ID, nil)

	overview, err := progression.GetUserProgressOverview("u-1", nil, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, overview.Items, 3)

	statuses := map[string]string{}
	for _, item := range overview.Items {
		statuses[item.ContentID] = item.Status
	}
	assert.Equal(t, StatusCompleted, statuses[done.ID])
	assert.Equal(t, StatusInProgress, statuses[watching.ID])
	assert.Equal(t, StatusNotStarted, statuses[opened.ID])

	assert.Equal(t, 3, overview.Summary.Total)
	assert.Equal(t, 1, overview.Summary.Completed)
	assert.Equal(t, 1, overview.Summary.InProgress)
	assert.Equal(t, 1, overview.Summary.NotStarted)
	assert.Equal(t, 3, overview.Summary.ByType["course"].Total)
	assert.Equal(t, 1, overview.Summary.ByType["course"].Completed)
}

func TestOverviewMetadataProgressCountsAsInProgress(t *testing.T) {
	db := newTestDB(t)
	progression := NewProgressionService(db)

	seedProgress(t, db, "u-1", models.ContentCourse, "c-1", func(p *models.ContentProgress) {
		p.Metadata = map[string]interface{}{"progressPercent": 40}
	})

	overview, err := progression.GetUserProgressOverview("u-1", nil, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, overview.Items, 1)
	assert.Equal(t, StatusInProgress, overview.Items[0].Status)
}

func TestOverviewDenormalizesContent(t *testing.T) {
	db := newTestDB(t)
	progression := NewProgressionService(db)

	creator := seedUser(t, db, "creator@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 0)

	post := models.Post{CommunityID: community.ID, AuthorID: creator.ID, Title: "Hello", Body: "First post"}
	require.NoError(t, db.Create(&post).Error)

	seedProgress(t, db, "u-1", models.ContentCourse, course.ID, nil)
	seedProgress(t, db, "u-1", models.ContentPost, post.ID, nil)

	overview, err := progression.GetUserProgressOverview("u-1", nil, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, overview.Items, 2)

	byID := map[string]OverviewItem{}
	for _, item := range overview.Items {
		byID[item.ContentID] = item
	}
	assert.Equal(t, "Test Course", byID[course.ID].Title)
	assert.Equal(t, "Hello", byID[post.ID].Title)
	// Posts surface their body as the description.
	assert.Equal(t, "First post", byID[post.ID].Description)
}

func TestOverviewTypeFilterAndPagination(t *testing.T) {
	db := newTestDB(t)
	progression := NewProgressionService(db)

	base := time.Now()
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		accessed := base.Add(time.Duration(i) * time.Minute)
		seedProgress(t, db, "u-1", models.ContentCourse, "course-"+id, func(p *models.ContentProgress) {
			p.LastAccessedAt = accessed
		})
	}
	seedProgress(t, db, "u-1", models.ContentPost, "post-x", nil)

	overview, err := progression.GetUserProgressOverview("u-1", []models.ContentType{models.ContentCourse}, 1, 2, "")
	require.NoError(t, err)

	assert.Equal(t, int64(5), overview.Pagination.TotalItems)
	assert.Equal(t, 3, overview.Pagination.TotalPages)
	require.Len(t, overview.Items, 2)
	// Newest first.
	assert.Equal(t, "course-e", overview.Items[0].ContentID)
	assert.Equal(t, "course-d", overview.Items[1].ContentID)

	// Page-scoped summary counts only what is on this page.
	assert.Equal(t, 2, overview.Summary.Total)

	page3, err := progression.GetUserProgressOverview("u-1", []models.ContentType{models.ContentCourse}, 3, 2, "")
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.Equal(t, "course-a", page3.Items[0].ContentID)
}

func TestOverviewCommunityFilter(t *testing.T) {
	db := newTestDB(t)
	progression := NewProgressionService(db)

	creator := seedUser(t, db, "creator@test.tn")
	home := seedCommunity(t, db, creator.ID, 0)
	other := seedCommunity(t, db, creator.ID, 0)
	inCourse := seedCourse(t, db, home.ID, creator.ID, 0)
	outCourse := seedCourse(t, db, other.ID, creator.ID, 0)

	seedProgress(t, db, "u-1", models.ContentCourse, inCourse.ID, nil)
	seedProgress(t, db, "u-1", models.ContentCourse, outCourse.ID, nil)

	overview, err := progression.GetUserProgressOverview("u-1", nil, 1, 20, home.ID)
	require.NoError(t, err)
	require.Len(t, overview.Items, 1)
	assert.Equal(t, inCourse.ID, overview.Items[0].ContentID)
}

func TestOverviewCommunityWithNoContent(t *testing.T) {
	db := newTestDB(t)
	progression := NewProgressionService(db)

	seedProgress(t, db, "u-1", models.ContentCourse, "somewhere-else", nil)

	overview, err := progression.GetUserProgressOverview("u-1", nil, 1, 20, "empty-community")
	require.NoError(t, err)
	assert.Empty(t, overview.Items)
	assert.Equal(t, 0, overview.Summary.Total)
}

func TestOverviewIsolatedPerUser(t *testing.T) {
	db := newTestDB(t)
	progression := NewProgressionService(db)

	seedProgress(t, db, "u-1", models.ContentCourse, "c-1", nil)
	seedProgress(t, db, "u-2", models.ContentCourse, "c-2", nil)

	overview, err := progression.GetUserProgressOverview("u-1", nil, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, overview.Items, 1)
	assert.Equal(t, "c-1", overview.Items[0].ContentID)
}
