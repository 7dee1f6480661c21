// Package domain defines the persistence models for profiles, surveys,
// groups, and compatibility reports. These types are mapped with GORM and
// form the core data layer of the compatibility-assessment application.
package domain

import (
	"time"
)

// Profile holds a user's identity and display data. The primary key is the
// user id supplied by the auth provider, so a profile is created (or
// replaced) via upsert on first submission.
//
// Fields:
//   - ID: stable user id (primary key, supplied by the auth layer).
//   - Name: display name shown in reports.
//   - BloodType / Birthdate / Zodiac: self-reported attributes used as
//     generation input.
//   - MBTI: optional personality type; empty when not provided.
type Profile struct {
	ID        string    `json:"id"         gorm:"type:varchar(64);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	BloodType string    `json:"blood_type" gorm:"type:varchar(8)"`
	Birthdate string    `json:"birthdate"  gorm:"type:varchar(32)"`
	Zodiac    string    `json:"zodiac"     gorm:"type:varchar(32)"`
	MBTI      string    `json:"mbti,omitempty" gorm:"type:varchar(8)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// SurveyResponse stores one user's Likert answers (question id → 1..5).
// There is at most one row per user; resubmitting replaces the previous
// answers via upsert on user_id.
type SurveyResponse struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id"   gorm:"type:varchar(64);not null;uniqueIndex:ux_survey_user"`
	Responses map[string]int `json:"responses" gorm:"serializer:json"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the database table name for SurveyResponse.
func (SurveyResponse) TableName() string { return "survey_responses" }

// PersonalityComment captures a user's free-text relationship preferences.
// One row per user, upsert-on-resubmit. Saving a comment invalidates all of
// the user's stored pairwise reports (handled at the service layer).
type PersonalityComment struct {
	ID                string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	UserID            string    `json:"user_id"            gorm:"type:varchar(64);not null;uniqueIndex:ux_comment_user"`
	DesiredTraits     string    `json:"desired_traits"     gorm:"type:text"`
	AvoidTraits       string    `json:"avoid_traits"       gorm:"type:text"`
	IdealRelationship string    `json:"ideal_relationship" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for PersonalityComment.
func (PersonalityComment) TableName() string { return "personality_comments" }

// Group is a set of users who score each other. GroupID is a generated
// opaque join code (timestamp + random suffix), not a database serial, so it
// can be shared and typed in by other users.
type Group struct {
	GroupID   string    `json:"group_id"   gorm:"type:varchar(64);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	CreatedBy string    `json:"created_by" gorm:"type:varchar(64);not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Group.
func (Group) TableName() string { return "groups" }

// Membership roles. The creator is always RoleAdmin and may only delete the
// whole group, never leave it; everyone else is RoleMember and may leave.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMember relates a user to a group with a role. The (group_id, user_id)
// pair is unique; a double join is a constraint violation surfaced to the
// caller.
type GroupMember struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	GroupID   string    `json:"group_id" gorm:"type:varchar(64);not null;index;uniqueIndex:ux_group_user"`
	UserID    string    `json:"user_id"  gorm:"type:varchar(64);not null;index;uniqueIndex:ux_group_user"`
	Role      string    `json:"role"     gorm:"type:varchar(16);not null;check:role IN ('admin','member')"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for GroupMember.
func (GroupMember) TableName() string { return "group_members" }

// CompatibilityResult is a stored pairwise report. The central invariant of
// this table: (user_a_id, user_b_id) is always the lexicographically sorted
// pair, so lookups for (X,Y) and (Y,X) hit the same row. The upsert conflict
// target is (user_a_id, user_b_id, group_id).
type CompatibilityResult struct {
	ID          string            `json:"id"          gorm:"type:char(36);primaryKey"`
	GroupID     string            `json:"group_id"    gorm:"type:varchar(64);not null;index;uniqueIndex:ux_pair_group,priority:3"`
	UserAID     string            `json:"user_a_id"   gorm:"type:varchar(64);not null;uniqueIndex:ux_pair_group,priority:1"`
	UserBID     string            `json:"user_b_id"   gorm:"type:varchar(64);not null;uniqueIndex:ux_pair_group,priority:2"`
	Degree      int               `json:"degree"      gorm:"not null"`
	Description ReportDescription `json:"description" gorm:"serializer:json"`
	Advice      ReportAdvice      `json:"advice"      gorm:"serializer:json"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName returns the database table name for CompatibilityResult.
func (CompatibilityResult) TableName() string { return "compatibility_results" }

// GroupCompatibilityResult is the single aggregate report for a group.
// Regenerating overwrites the existing row via upsert keyed on group_id.
type GroupCompatibilityResult struct {
	ID            string        `json:"id"             gorm:"type:varchar(64);primaryKey"`
	GroupID       string        `json:"group_id"       gorm:"type:varchar(64);not null;uniqueIndex:ux_group_result"`
	AverageDegree int           `json:"average_degree" gorm:"not null"`
	BestPair      PairStat      `json:"best_pair"      gorm:"serializer:json"`
	WorstPair     PairStat      `json:"worst_pair"     gorm:"serializer:json"`
	Analysis      GroupAnalysis `json:"analysis"       gorm:"serializer:json"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName returns the database table name for GroupCompatibilityResult.
func (GroupCompatibilityResult) TableName() string { return "group_compatibility_results" }

// Idempotency records a completed group-join submission keyed by
// (user_id, group_id, key) so that client retries of the join POST do not
// re-trigger the generation pipeline within the TTL window.
type Idempotency struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"  gorm:"type:varchar(64);not null;index;uniqueIndex:ux_idem,priority:1"`
	GroupID   string    `json:"group_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_idem,priority:2"`
	Key       string    `json:"key"      gorm:"type:varchar(200);not null;uniqueIndex:ux_idem,priority:3"`
	Status    int       `json:"status"   gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

// TableName returns the database table name for Idempotency.
func (Idempotency) TableName() string { return "idempotency_keys" }
