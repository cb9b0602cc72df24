// internal/models/schedule.go
package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// ScheduleSlot is one candidate recording slot.
type ScheduleSlot struct {
	Date     string `json:"date" validate:"required"`
	Time     string `json:"time" validate:"required"`
	Timezone string `json:"timezone" validate:"required"`
	Duration int    `json:"duration" validate:"required,min=1"` // minutes
}

// ScheduleSlots is the ordered slot list of a proposal, stored as JSON.
type ScheduleSlots []ScheduleSlot

func (s ScheduleSlots) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]ScheduleSlot{})
	}
	return json.Marshal(s)
}

func (s *ScheduleSlots) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, s)
}

type ScheduleProposal struct {
	BaseModel
	CollaborationID   uuid.UUID      `json:"collaboration_id" gorm:"type:uuid;not null;index"`
	ProposedBy        uuid.UUID      `json:"proposed_by" gorm:"type:uuid;not null;index"`
	ProposedByRole    PartyRole      `json:"proposed_by_role" gorm:"type:varchar(20);not null"`
	Slots             ScheduleSlots  `json:"slots" gorm:"type:jsonb;not null"`
	Message           string         `json:"message,omitempty" gorm:"type:text"`
	Status            ProposalStatus `json:"status" gorm:"type:varchar(20);default:'proposed';index"`
	AcceptedSlotIndex *int           `json:"accepted_slot_index,omitempty"`
	DeclineReason     string         `json:"decline_reason,omitempty" gorm:"type:text"`
	RespondedBy       *uuid.UUID     `json:"responded_by,omitempty" gorm:"type:uuid"`

	Collaboration Collaboration `json:"collaboration,omitempty" gorm:"foreignKey:CollaborationID"`
}

// RescheduleRequest has the shape of a proposal plus a mandatory reason and a
// snapshot of the schedule it wants to replace.
type RescheduleRequest struct {
	BaseModel
	CollaborationID   uuid.UUID      `json:"collaboration_id" gorm:"type:uuid;not null;index"`
	RequestedBy       uuid.UUID      `json:"requested_by" gorm:"type:uuid;not null;index"`
	RequestedByRole   PartyRole      `json:"requested_by_role" gorm:"type:varchar(20);not null"`
	Reason            string         `json:"reason" gorm:"type:text;not null"`
	Slots             ScheduleSlots  `json:"slots" gorm:"type:jsonb;not null"`
	PreviousSchedule  JSONB          `json:"previous_schedule" gorm:"type:jsonb"`
	Status            ProposalStatus `json:"status" gorm:"type:varchar(20);default:'proposed';index"`
	AcceptedSlotIndex *int           `json:"accepted_slot_index,omitempty"`
	DeclineReason     string         `json:"decline_reason,omitempty" gorm:"type:text"`
	RespondedBy       *uuid.UUID     `json:"responded_by,omitempty" gorm:"type:uuid"`

	Collaboration Collaboration `json:"collaboration,omitempty" gorm:"foreignKey:CollaborationID"`
}
