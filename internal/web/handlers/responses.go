package handlers

import (
	"net/url"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/status"
)

// UserResponse is a roster entry without the inline photo.
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
}

// RecordResponse is an attendance record whose user carries no photo.
type RecordResponse struct {
	ID       string                  `json:"id,omitempty"`
	User     UserResponse            `json:"user"`
	CheckIn  time.Time               `json:"checkIn"`
	CheckOut *time.Time              `json:"checkOut"`
	Status   attendance.RecordStatus `json:"status"`
}

// IntentResponse is returned by register, check-in and check-out.
type IntentResponse struct {
	Status status.Status   `json:"status"`
	User   *UserResponse   `json:"user,omitempty"`
	Record *RecordResponse `json:"record,omitempty"`
}

func toUserResponse(u attendance.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		PhotoURL: "/api/v1/users/" + url.PathEscape(u.ID) + "/photo",
	}
}

func toRecordResponse(r attendance.Record) RecordResponse {
	return RecordResponse{
		ID:       r.ID,
		User:     toUserResponse(r.User),
		CheckIn:  r.CheckIn,
		CheckOut: r.CheckOut,
		Status:   r.Status,
	}
}
