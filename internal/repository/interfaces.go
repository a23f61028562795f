package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atlasclinic/clinic-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SpecialtyRepository interface {
	Get(ctx context.Context, id int64) (*model.Specialty, error)
	ListActive(ctx context.Context) ([]*model.Specialty, error)
}

// PatientRepository resolves duplicate natural keys deterministically:
// GetOrCreate must return the existing row on a unique-violation race.
type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetOrCreate(ctx context.Context, patient *model.Patient) (*model.Patient, bool, error)
	List(ctx context.Context) ([]*model.Patient, error)
}

type InsuranceRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Insurance, error)
	GetOrCreate(ctx context.Context, ins *model.Insurance) (*model.Insurance, bool, error)
	List(ctx context.Context) ([]*model.Insurance, error)
}

type CatalogRepository interface {
	GetRoom(ctx context.Context, id int64) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
	CreateRoom(ctx context.Context, room *model.Room) error
	UpdateRoom(ctx context.Context, room *model.Room) error
	UpdateRoomStatus(ctx context.Context, id int64, status model.RoomStatus) error
	DeleteRoom(ctx context.Context, id int64) error

	GetAppointmentType(ctx context.Context, id int64) (*model.AppointmentType, error)
	ListAppointmentTypes(ctx context.Context) ([]*model.AppointmentType, error)
	CreateAppointmentType(ctx context.Context, t *model.AppointmentType) error
	UpdateAppointmentType(ctx context.Context, t *model.AppointmentType) error
	DeleteAppointmentType(ctx context.Context, id int64) error

	GetInterventionType(ctx context.Context, id int64) (*model.InterventionType, error)
	ListInterventionTypes(ctx context.Context) ([]*model.InterventionType, error)
	FindInterventionTypeByName(ctx context.Context, name string) (*model.InterventionType, error)

	GetUrgencyLevel(ctx context.Context, id int64) (*model.UrgencyLevel, error)
	ListUrgencyLevels(ctx context.Context) ([]*model.UrgencyLevel, error)
	FindUrgencyLevelByName(ctx context.Context, name string) (*model.UrgencyLevel, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	Update(ctx context.Context, apt *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type ReferralRepository interface {
	Create(ctx context.Context, ref *model.Referral) error
	Get(ctx context.Context, id uuid.UUID) (*model.Referral, error)
	List(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error)
	Update(ctx context.Context, ref *model.Referral) error
	Delete(ctx context.Context, id uuid.UUID) error

	CountByDay(ctx context.Context, from, to *time.Time) ([]*model.StatsPoint, error)
	CountByDoctor(ctx context.Context, from, to *time.Time) ([]*model.StatsBucket, error)
	CountBySpecialty(ctx context.Context, from, to *time.Time) ([]*model.StatsBucket, error)
	CountByInsurance(ctx context.Context, from, to *time.Time) ([]*model.StatsBucket, error)
	Count(ctx context.Context, from, to *time.Time) (int, error)
	CountByStatus(ctx context.Context, status model.ReferralStatus, from, to *time.Time) (int, error)
	Facets(ctx context.Context, from, to *time.Time) (*model.StatsFacets, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.ArrivalNotification) error
	Get(ctx context.Context, id uuid.UUID) (*model.ArrivalNotification, error)
	List(ctx context.Context, filters *model.NotificationFilters) ([]*model.ArrivalNotification, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus) error
	MarkAllRead(ctx context.Context, filters *model.NotificationFilters) (int, error)
}

type SecretaryReferralRepository interface {
	Create(ctx context.Context, row *model.SecretaryReferral) error
	GetByReferral(ctx context.Context, referralID uuid.UUID) (*model.SecretaryReferral, error)
	List(ctx context.Context) ([]*model.SecretaryReferral, error)
	UpdateByReferral(ctx context.Context, row *model.SecretaryReferral) error
	DeleteByReferral(ctx context.Context, referralID uuid.UUID) error
}
