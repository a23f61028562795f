package model

import (
	"github.com/atlasclinic/clinic-api/pkg/i18n"
)

// Room status values. Status is mutated only by the notification fan-out,
// never directly by clients on the booking path.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusCleaning    RoomStatus = "cleaning"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

type Room struct {
	ID     int64      `json:"id" db:"id"`
	NameFR string     `json:"name_fr" db:"name_fr"`
	NameEN string     `json:"name_en" db:"name_en"`
	Status RoomStatus `json:"status" db:"status"`
}

type RoomView struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	NameFR string     `json:"name_fr"`
	NameEN string     `json:"name_en"`
	Status RoomStatus `json:"status"`
}

func (r *Room) Localize(lang i18n.Lang) *RoomView {
	if r == nil {
		return nil
	}
	return &RoomView{
		ID:     r.ID,
		Name:   i18n.Pick(lang, r.NameFR, r.NameEN),
		NameFR: r.NameFR,
		NameEN: r.NameEN,
		Status: r.Status,
	}
}

// InterventionType name pair is always present in at least one language.
type InterventionType struct {
	ID            int64  `json:"id" db:"id"`
	NameFR        string `json:"name_fr" db:"name_fr"`
	NameEN        string `json:"name_en" db:"name_en"`
	DescriptionFR string `json:"description_fr" db:"description_fr"`
	DescriptionEN string `json:"description_en" db:"description_en"`
}

type InterventionTypeView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	NameFR      string `json:"name_fr"`
	NameEN      string `json:"name_en"`
	Description string `json:"description"`
}

func (t *InterventionType) Localize(lang i18n.Lang) *InterventionTypeView {
	if t == nil {
		return nil
	}
	return &InterventionTypeView{
		ID:          t.ID,
		Name:        i18n.Pick(lang, t.NameFR, t.NameEN),
		NameFR:      t.NameFR,
		NameEN:      t.NameEN,
		Description: i18n.Pick(lang, t.DescriptionFR, t.DescriptionEN),
	}
}

// UrgencyLevel ordering is by priority ascending, lower = more urgent.
type UrgencyLevel struct {
	ID       int64  `json:"id" db:"id"`
	NameFR   string `json:"name_fr" db:"name_fr"`
	NameEN   string `json:"name_en" db:"name_en"`
	Color    string `json:"color" db:"color"`
	Priority int    `json:"priority" db:"priority"`
}

type UrgencyLevelView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	NameFR   string `json:"name_fr"`
	NameEN   string `json:"name_en"`
	Color    string `json:"color"`
	Priority int    `json:"priority"`
}

func (u *UrgencyLevel) Localize(lang i18n.Lang) *UrgencyLevelView {
	if u == nil {
		return nil
	}
	return &UrgencyLevelView{
		ID:       u.ID,
		Name:     i18n.Pick(lang, u.NameFR, u.NameEN),
		NameFR:   u.NameFR,
		NameEN:   u.NameEN,
		Color:    u.Color,
		Priority: u.Priority,
	}
}

// AppointmentType is the bilingual visit-type catalog.
type AppointmentType struct {
	ID     int64  `json:"id" db:"id"`
	NameFR string `json:"name_fr" db:"name_fr"`
	NameEN string `json:"name_en" db:"name_en"`
}

type AppointmentTypeView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameFR string `json:"name_fr"`
	NameEN string `json:"name_en"`
}

func (t *AppointmentType) Localize(lang i18n.Lang) *AppointmentTypeView {
	if t == nil {
		return nil
	}
	return &AppointmentTypeView{
		ID:     t.ID,
		Name:   i18n.Pick(lang, t.NameFR, t.NameEN),
		NameFR: t.NameFR,
		NameEN: t.NameEN,
	}
}
