package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/elan/internal/models"
	"gorm.io/gorm"
)

var errStorageDown = errors.New("storage down")

type stubUsers struct {
	users  []models.User
	nextID uint
	err    error
}

func (repo *stubUsers) add(user models.User) models.User {
	repo.nextID++
	user.ID = repo.nextID
	repo.users = append(repo.users, user)
	return user
}

func (repo *stubUsers) FindActiveByNormalizedEmail(_ context.Context, email string) (models.User, bool, error) {
	if repo.err != nil {
		return models.User{}, false, repo.err
	}
	for _, user := range repo.users {
		if strings.ToLower(strings.TrimSpace(user.Email)) == email && !user.DeletedAt.Valid {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (repo *stubUsers) ExistsByNormalizedEmail(_ context.Context, email string) (bool, error) {
	for _, user := range repo.users {
		if strings.ToLower(strings.TrimSpace(user.Email)) == email {
			return true, nil
		}
	}
	return false, nil
}

func (repo *stubUsers) Create(ctx context.Context, user *models.User) error {
	if exists, _ := repo.ExistsByNormalizedEmail(ctx, user.Email); exists {
		return gorm.ErrDuplicatedKey
	}
	*user = repo.add(*user)
	return nil
}

func (repo *stubUsers) find(userID uint) *models.User {
	for index := range repo.users {
		if repo.users[index].ID == userID {
			return &repo.users[index]
		}
	}
	return nil
}

func (repo *stubUsers) UpdateName(_ context.Context, userID uint, name string) error {
	repo.find(userID).Name = name
	return nil
}

func (repo *stubUsers) UpdatePasswordHash(_ context.Context, userID uint, passwordHash string) error {
	repo.find(userID).PasswordHash = passwordHash
	return nil
}

func (repo *stubUsers) UpdateRole(_ context.Context, userID uint, role string) error {
	repo.find(userID).Role = role
	return nil
}

func (repo *stubUsers) TouchLastLogin(_ context.Context, userID uint, at time.Time) error {
	repo.find(userID).LastLoginAt = &at
	return nil
}

func (repo *stubUsers) SoftDeleteWithProgress(_ context.Context, userID uint) error {
	user := repo.find(userID)
	if user == nil {
		return gorm.ErrRecordNotFound
	}
	user.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

type stubEnrollments struct {
	rows    []models.Enrollment
	nextID  uint
	err     error
	touched []string
}

func (repo *stubEnrollments) add(enrollment models.Enrollment) models.Enrollment {
	repo.nextID++
	enrollment.ID = repo.nextID
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentActive
	}
	repo.rows = append(repo.rows, enrollment)
	return enrollment
}

func (repo *stubEnrollments) Create(_ context.Context, enrollment *models.Enrollment) error {
	for _, row := range repo.rows {
		if row.UserID == enrollment.UserID && row.ProgramSlug == enrollment.ProgramSlug {
			return gorm.ErrDuplicatedKey
		}
	}
	*enrollment = repo.add(*enrollment)
	return nil
}

func (repo *stubEnrollments) FindByUserAndProgram(_ context.Context, userID uint, programSlug string) (models.Enrollment, bool, error) {
	if repo.err != nil {
		return models.Enrollment{}, false, repo.err
	}
	for _, row := range repo.rows {
		if row.UserID == userID && row.ProgramSlug == programSlug {
			return row, true, nil
		}
	}
	return models.Enrollment{}, false, nil
}

func (repo *stubEnrollments) FindMostRecentByUser(ctx context.Context, userID uint) (models.Enrollment, bool, error) {
	rows, err := repo.ListByUser(ctx, userID)
	if err != nil || len(rows) == 0 {
		return models.Enrollment{}, false, err
	}
	return rows[0], true, nil
}

func (repo *stubEnrollments) ListByUser(_ context.Context, userID uint) ([]models.Enrollment, error) {
	if repo.err != nil {
		return nil, repo.err
	}
	rows := make([]models.Enrollment, 0)
	for _, row := range repo.rows {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].UpdatedAt.Equal(rows[j].UpdatedAt) {
			return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	return rows, nil
}

func (repo *stubEnrollments) byID(enrollmentID uint) *models.Enrollment {
	for index := range repo.rows {
		if repo.rows[index].ID == enrollmentID {
			return &repo.rows[index]
		}
	}
	return nil
}

func (repo *stubEnrollments) UpdateCurrentDay(_ context.Context, enrollmentID uint, day int) error {
	repo.byID(enrollmentID).CurrentDay = &day
	return nil
}

func (repo *stubEnrollments) MarkCompleted(_ context.Context, enrollmentID uint, at time.Time) error {
	row := repo.byID(enrollmentID)
	row.Status = models.EnrollmentCompleted
	row.CompletedAt = &at
	return nil
}

func (repo *stubEnrollments) Touch(_ context.Context, userID uint, programSlug string, at time.Time) error {
	repo.touched = append(repo.touched, programSlug)
	for index := range repo.rows {
		if repo.rows[index].UserID == userID && repo.rows[index].ProgramSlug == programSlug {
			repo.rows[index].UpdatedAt = at
		}
	}
	return nil
}

type dayKey struct {
	userID      uint
	programSlug string
	day         int
}

type stubDayStates struct {
	rows map[dayKey]models.DayState
	err  error
}

func newStubDayStates() *stubDayStates {
	return &stubDayStates{rows: make(map[dayKey]models.DayState)}
}

func (repo *stubDayStates) Find(_ context.Context, userID uint, programSlug string, day int) (models.DayState, bool, error) {
	if repo.err != nil {
		return models.DayState{}, false, repo.err
	}
	state, found := repo.rows[dayKey{userID, programSlug, day}]
	return state, found, nil
}

func (repo *stubDayStates) Exists(ctx context.Context, userID uint, programSlug string, day int) (bool, error) {
	_, found, err := repo.Find(ctx, userID, programSlug, day)
	return found, err
}

func (repo *stubDayStates) CountCompleted(_ context.Context, userID uint, programSlug string) (int64, error) {
	var count int64
	for key, state := range repo.rows {
		if key.userID == userID && key.programSlug == programSlug && state.Completed {
			count++
		}
	}
	return count, nil
}

func (repo *stubDayStates) Upsert(_ context.Context, state *models.DayState) error {
	if repo.err != nil {
		return repo.err
	}
	repo.rows[dayKey{state.UserID, state.ProgramSlug, state.Day}] = *state
	return nil
}

type stubPrograms struct {
	rows map[string]models.Program
}

func newStubPrograms(programs ...models.Program) *stubPrograms {
	repo := &stubPrograms{rows: make(map[string]models.Program)}
	for _, program := range programs {
		repo.rows[program.Slug] = program
	}
	return repo
}

func (repo *stubPrograms) ListPublished(context.Context) ([]models.Program, error) {
	programs := make([]models.Program, 0)
	for _, program := range repo.rows {
		if program.Status == models.PublicationPublished {
			programs = append(programs, program)
		}
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i].Slug < programs[j].Slug })
	return programs, nil
}

func (repo *stubPrograms) FindBySlug(_ context.Context, slug string) (models.Program, bool, error) {
	program, found := repo.rows[slug]
	return program, found, nil
}

func (repo *stubPrograms) Upsert(_ context.Context, program *models.Program) error {
	repo.rows[program.Slug] = *program
	return nil
}

type stubUnits struct {
	rows  []models.Unit
	calls int
	err   error
}

func (repo *stubUnits) ListPublishedDays(_ context.Context, programSlug string) ([]models.Unit, error) {
	repo.calls++
	if repo.err != nil {
		return nil, repo.err
	}
	units := make([]models.Unit, 0)
	for _, unit := range repo.rows {
		if unit.ProgramSlug == programSlug && unit.UnitType == models.UnitTypeDay && unit.Status == models.PublicationPublished {
			units = append(units, unit)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].UnitIndex < units[j].UnitIndex })
	return units, nil
}

func (repo *stubUnits) ListByProgram(_ context.Context, programSlug string) ([]models.Unit, error) {
	units := make([]models.Unit, 0)
	for _, unit := range repo.rows {
		if unit.ProgramSlug == programSlug {
			units = append(units, unit)
		}
	}
	return units, nil
}

func (repo *stubUnits) Upsert(_ context.Context, unit *models.Unit) error {
	for index := range repo.rows {
		row := repo.rows[index]
		if row.ProgramSlug == unit.ProgramSlug && row.UnitType == unit.UnitType && row.UnitIndex == unit.UnitIndex {
			repo.rows[index] = *unit
			return nil
		}
	}
	repo.rows = append(repo.rows, *unit)
	return nil
}

func publishedDays(programSlug string, count int) []models.Unit {
	units := make([]models.Unit, 0, count)
	for day := 1; day <= count; day++ {
		units = append(units, models.Unit{
			ProgramSlug: programSlug,
			UnitType:    models.UnitTypeDay,
			UnitIndex:   day,
			Title:       "Day",
			Status:      models.PublicationPublished,
		})
	}
	return units
}

type memoryCache struct {
	days        map[string][]models.Unit
	invalidated []string
	err         error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{days: make(map[string][]models.Unit)}
}

func (c *memoryCache) GetDays(_ context.Context, programSlug string) ([]models.Unit, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	units, found := c.days[programSlug]
	return units, found, nil
}

func (c *memoryCache) SetDays(_ context.Context, programSlug string, units []models.Unit) error {
	if c.err != nil {
		return c.err
	}
	c.days[programSlug] = units
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, programSlug string) error {
	c.invalidated = append(c.invalidated, programSlug)
	delete(c.days, programSlug)
	return nil
}

type stubSessions map[string]string

func (sessions stubSessions) Validate(token string) (string, error) {
	email, found := sessions[token]
	if !found {
		return "", errors.New("invalid session")
	}
	return email, nil
}

func intPtr(value int) *int {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}
