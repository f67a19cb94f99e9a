package services

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
)

type ReportDetail struct {
	ReportID         uuid.UUID `json:"report_id"`
	ReporterID       uuid.UUID `json:"reporter_id"`
	ReporterUsername string    `json:"reporter_username"`
	Rationale        string    `json:"rationale,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// FactView is the per-request projection of a fact. The annotation fields are nil when
// permissions were not requested.
type FactView struct {
	*types.Fact
	Permission *facts.Permission `json:"permission,omitempty"`
	Marked     *bool             `json:"marked,omitempty"`
	Suspended  *bool             `json:"suspended,omitempty"`
	Reported   *bool             `json:"reported,omitempty"`
	// Rationale is the requesting user's own report rationale.
	Rationale string         `json:"rationale,omitempty"`
	Reports   []ReportDetail `json:"reports,omitempty"`
}

// Redact drops report details the viewer may not see under perm. It runs after the base
// projection is assembled and mutates v in place.
func Redact(v *FactView, perm facts.Permission, viewer uuid.UUID) *FactView {
	if v == nil || facts.Visibility(perm).SeesAllReports {
		return v
	}
	kept := v.Reports[:0]
	for _, r := range v.Reports {
		if viewer != uuid.Nil && r.ReporterID == viewer {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		v.Reports = nil
	} else {
		v.Reports = kept
	}
	return v
}

func boolRef(b bool) *bool { return &b }
