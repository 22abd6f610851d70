package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/elan/internal/models"
)

func TestUserEmailUniqueIndexIsCaseInsensitive(t *testing.T) {
	database := openTestSQLite(t, "elan-email-index.db")
	createUser(t, database, "QA-Test@Elan.Local")

	duplicate := models.User{Email: "qa-test@elan.local", Role: models.RoleUser}
	err := database.Create(&duplicate).Error
	require.Error(t, err)
	assert.True(t, IsDuplicate(err), "expected translated duplicate error, got %v", err)
}

func TestUserRepositoryLookupSkipsSoftDeletedUsers(t *testing.T) {
	ctx := context.Background()
	database := openTestSQLite(t, "elan-users.db")
	repo := NewUserRepository(database)
	user := createUser(t, database, "Learner@Example.com")

	found, ok, err := repo.FindActiveByNormalizedEmail(ctx, "learner@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, repo.SoftDeleteWithProgress(ctx, user.ID))

	_, ok, err = repo.FindActiveByNormalizedEmail(ctx, "learner@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := repo.ExistsByNormalizedEmail(ctx, "learner@example.com")
	require.NoError(t, err)
	assert.True(t, exists, "soft-deleted rows still reserve the email")
}

func TestSoftDeleteWithProgressRemovesLearningRecords(t *testing.T) {
	ctx := context.Background()
	database := openTestSQLite(t, "elan-delete.db")
	repos := NewRepositories(database)
	user := createUser(t, database, "gone@example.com")
	other := createUser(t, database, "stay@example.com")

	for _, userID := range []uint{user.ID, other.ID} {
		require.NoError(t, repos.Enrollments.Create(ctx, &models.Enrollment{
			UserID: userID, ProgramSlug: "reset-7", Status: models.EnrollmentActive, StartedAt: time.Now().UTC(),
		}))
		require.NoError(t, repos.DayStates.Upsert(ctx, &models.DayState{UserID: userID, ProgramSlug: "reset-7", Day: 1}))
	}

	require.NoError(t, repos.Users.SoftDeleteWithProgress(ctx, user.ID))

	var enrollments, states int64
	require.NoError(t, database.Model(&models.Enrollment{}).Count(&enrollments).Error)
	require.NoError(t, database.Model(&models.DayState{}).Count(&states).Error)
	assert.Equal(t, int64(1), enrollments)
	assert.Equal(t, int64(1), states)

	assert.True(t, IsNotFound(repos.Users.SoftDeleteWithProgress(ctx, 9999)))
}

func TestEnrollmentUniquePerUserAndProgram(t *testing.T) {
	ctx := context.Background()
	database := openTestSQLite(t, "elan-enrollments.db")
	repo := NewEnrollmentRepository(database)
	user := createUser(t, database, "enroll@example.com")

	first := models.Enrollment{UserID: user.ID, ProgramSlug: "reset-7", Status: models.EnrollmentActive, StartedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, &first))
	assert.Nil(t, first.CurrentDay)

	second := models.Enrollment{UserID: user.ID, ProgramSlug: "reset-7", Status: models.EnrollmentActive, StartedAt: time.Now().UTC()}
	err := repo.Create(ctx, &second)
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
}

func TestEnrollmentMostRecentOrdersByUpdatedAtThenID(t *testing.T) {
	ctx := context.Background()
	database := openTestSQLite(t, "elan-recent.db")
	repo := NewEnrollmentRepository(database)
	user := createUser(t, database, "recent@example.com")

	stamp := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	older := models.Enrollment{UserID: user.ID, ProgramSlug: "alpha", Status: models.EnrollmentActive, StartedAt: stamp}
	newer := models.Enrollment{UserID: user.ID, ProgramSlug: "beta", Status: models.EnrollmentActive, StartedAt: stamp}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))
	require.NoError(t, database.Model(&models.Enrollment{}).Where("user_id = ?", user.ID).Update("updated_at", stamp).Error)

	recent, ok, err := repo.FindMostRecentByUser(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "beta", recent.ProgramSlug, "equal timestamps fall back to the highest id")

	require.NoError(t, repo.Touch(ctx, user.ID, "alpha", stamp.Add(time.Minute)))
	recent, ok, err = repo.FindMostRecentByUser(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alpha", recent.ProgramSlug)

	_, ok, err = repo.FindMostRecentByUser(ctx, user.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnrollmentProgressUpdates(t *testing.T) {
	ctx := context.Background()
	database := openTestSQLite(t, "elan-progress.db")
	repo := NewEnrollmentRepository(database)
	user := createUser(t, database, "progress@example.com")

	enrollment := models.Enrollment{UserID: user.ID, ProgramSlug: "reset-7", Status: models.EnrollmentActive, StartedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, &enrollment))
	require.NoError(t, repo.UpdateCurrentDay(ctx, enrollment.ID, 3))

	found, ok, err := repo.FindByUserAndProgram(ctx, user.ID, "reset-7")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, found.CurrentDay)
	assert.Equal(t, 3, *found.CurrentDay)
	assert.Equal(t, models.EnrollmentActive, found.Status)

	require.NoError(t, repo.MarkCompleted(ctx, enrollment.ID, time.Now().UTC()))

	found, ok, err = repo.FindByUserAndProgram(ctx, user.ID, "reset-7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.EnrollmentCompleted, found.Status)
	assert.NotNil(t, found.CompletedAt)
	assert.True(t, found.GrantsAccess())

	_, ok, err = repo.FindByUserAndProgram(ctx, user.ID, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDayStateUpsertIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	database := openTestSQLite(t, "elan-day-states.db")
	repo := NewDayStateRepository(database)
	user := createUser(t, database, "days@example.com")

	energy := 4
	require.NoError(t, repo.Upsert(ctx, &models.DayState{
		UserID: user.ID, ProgramSlug: "reset-7", Day: 1, Energy: &energy, Answers: map[string]string{"q1": "first"},
	}))

	stored, ok, err := repo.Find(ctx, user.ID, "reset-7", 1)
	require.NoError(t, err)
	require.True(t, ok)

	focus := 9
	stored.Focus = &focus
	stored.Completed = true
	stored.Answers = map[string]string{"q1": "second"}
	require.NoError(t, repo.Upsert(ctx, &stored))

	var rows int64
	require.NoError(t, database.Model(&models.DayState{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	updated, ok, err := repo.Find(ctx, user.ID, "reset-7", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, updated.Energy)
	require.NotNil(t, updated.Focus)
	assert.Equal(t, 4, *updated.Energy)
	assert.Equal(t, 9, *updated.Focus)
	assert.True(t, updated.Completed)
	assert.Equal(t, "second", updated.Answers["q1"])

	completed, err := repo.CountCompleted(ctx, user.ID, "reset-7")
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed)

	exists, err := repo.Exists(ctx, user.ID, "reset-7", 2)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDayStateRatingsAreCheckedByTheSchema(t *testing.T) {
	database := openTestSQLite(t, "elan-ratings.db")
	user := createUser(t, database, "ratings@example.com")

	tooHigh := 11
	err := database.Create(&models.DayState{UserID: user.ID, ProgramSlug: "reset-7", Day: 1, Peace: &tooHigh}).Error
	assert.Error(t, err)
}

func TestUnitRepositoryListsPublishedDaysInOrder(t *testing.T) {
	ctx := context.Background()
	database := openTestSQLite(t, "elan-units.db")
	repo := NewUnitRepository(database)

	for _, unit := range []models.Unit{
		{ProgramSlug: "reset-7", UnitType: models.UnitTypeDay, UnitIndex: 2, Title: "Two", Status: models.PublicationPublished},
		{ProgramSlug: "reset-7", UnitType: models.UnitTypeDay, UnitIndex: 1, Title: "One", Status: models.PublicationPublished},
		{ProgramSlug: "reset-7", UnitType: models.UnitTypeDay, UnitIndex: 3, Title: "Three", Status: models.PublicationDraft},
		{ProgramSlug: "other", UnitType: models.UnitTypeDay, UnitIndex: 1, Title: "Other", Status: models.PublicationPublished},
	} {
		unit := unit
		require.NoError(t, repo.Upsert(ctx, &unit))
	}

	days, err := repo.ListPublishedDays(ctx, "reset-7")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].UnitIndex)
	assert.Equal(t, 2, days[1].UnitIndex)


	require.NoError(t, repo.Upsert(ctx, &models.Unit{
		ProgramSlug: "reset-7", UnitType: models.UnitTypeDay, UnitIndex: 3, Title: "Three", Status: models.PublicationPublished,
	}))
	days, err = repo.ListPublishedDays(ctx, "reset-7")
	require.NoError(t, err)
	assert.Len(t, days, 3)

	all, err := repo.ListByProgram(ctx, "reset-7")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProgramRepositoryUpsertBySlug(t *testing.T) {
	ctx := context.Background()
	database := openTestSQLite(t, "elan-programs.db")
	repo := NewProgramRepository(database)

	require.NoError(t, repo.Upsert(ctx, &models.Program{Slug: "reset-7", Title: "Reset", Status: models.PublicationDraft}))
	require.NoError(t, repo.Upsert(ctx, &models.Program{Slug: "reset-7", Title: "Reset 7", Status: models.PublicationPublished}))

	published, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "Reset 7", published[0].Title)

	_, ok, err := repo.FindBySlug(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
