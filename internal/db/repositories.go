package db

import "gorm.io/gorm"

type Repositories struct {
	Users       *UserRepository
	Programs    *ProgramRepository
	Units       *UnitRepository
	Enrollments *EnrollmentRepository
	DayStates   *DayStateRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Programs:    NewProgramRepository(database),
		Units:       NewUnitRepository(database),
		Enrollments: NewEnrollmentRepository(database),
		DayStates:   NewDayStateRepository(database),
	}
}
