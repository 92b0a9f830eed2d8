// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Engagement column names derived from flattened conversation trees.
const (
	ColNumComments        = "num_comments"
	ColAvgScore           = "avg_score"
	ColConversationDepth  = "conversation_depth"
	ColConversationCount  = "conversation_count"
	ColParentInteractions = "parent_interactions"
	ColCommunityTypes     = "community_types"
)

// UserColumns is the fixed column set of the user store, in persisted order.
// Loading a store whose table differs from this set is a schema mismatch.
var UserColumns = []string{
	"user_id",
	"username",
	"created_at",
	"updated_at",
	AttrAgeRange,
	AttrGender,
	AttrLocation,
	AttrIncomeLevel,
	AttrEducationLevel,
	AttrIllnessTypes,
	AttrTreatmentHistory,
	AttrClinicalTrialInterest,
	AttrMoneyMakingInterest,
	AttrClinicalTrialsSentiment,
	AttrTreatmentSentiment,
	ColNumComments,
	ColAvgScore,
	ColConversationDepth,
	ColConversationCount,
	ColParentInteractions,
	ColCommunityTypes,
}

// UserRecord is the persisted, validated, engagement-augmented profile for
// one author. Records are replaced wholesale on re-processing; there is no
// field-level merge and no historical versioning.
type UserRecord struct {
	// UserID is the unique author identifier (the store key).
	UserID string `json:"user_id" yaml:"user_id"`

	// Username is the author's display name.
	Username string `json:"username" yaml:"username"`

	// CreatedAt is when the author was first observed in any batch.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is when the record was last recomputed.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Features is the post-validation feature set.
	Features FeatureSet `json:"features" yaml:"features"`

	// NumComments is the number of fragments the author contributed.
	NumComments int `json:"num_comments" yaml:"num_comments"`

	// AvgScore is the mean engagement score across the author's fragments.
	AvgScore float64 `json:"avg_score" yaml:"avg_score"`

	// ConversationDepth is the maximum nesting depth observed.
	ConversationDepth int `json:"conversation_depth" yaml:"conversation_depth"`

	// ConversationCount is the number of distinct conversation threads the
	// author participated in.
	ConversationCount int `json:"conversation_count" yaml:"conversation_count"`

	// ParentInteractions is the number of replies the author made to others.
	ParentInteractions int `json:"parent_interactions" yaml:"parent_interactions"`

	// CommunityTypes is the sorted set of community categories the author
	// participated in.
	CommunityTypes []string `json:"community_types" yaml:"community_types"`
}

// Column returns the value stored under a user-store column name, with nil
// for null feature attributes. The second return is false for names outside
// UserColumns; queries and ranking profiles treat those as configuration
// errors or skipped columns respectively.
func (u *UserRecord) Column(name string) (any, bool) {
	switch name {
	case "user_id":
		return u.UserID, true
	case "username":
		return u.Username, true
	case "created_at":
		return u.CreatedAt, true
	case "updated_at":
		return u.UpdatedAt, true
	case AttrAgeRange:
		return deref(u.Features.AgeRange), true
	case AttrGender:
		return deref(u.Features.Gender), true
	case AttrLocation:
		return deref(u.Features.Location), true
	case AttrIncomeLevel:
		return deref(u.Features.IncomeLevel), true
	case AttrEducationLevel:
		return deref(u.Features.EducationLevel), true
	case AttrIllnessTypes:
		return u.Features.IllnessTypes, true
	case AttrTreatmentHistory:
		return u.Features.TreatmentHistory, true
	case AttrClinicalTrialInterest:
		return deref(u.Features.ClinicalTrialInterest), true
	case AttrMoneyMakingInterest:
		return deref(u.Features.MoneyMakingInterest), true
	case AttrClinicalTrialsSentiment:
		return derefFloat(u.Features.ClinicalTrialsSentiment), true
	case AttrTreatmentSentiment:
		return derefFloat(u.Features.TreatmentSentiment), true
	case ColNumComments:
		return u.NumComments, true
	case ColAvgScore:
		return u.AvgScore, true
	case ColConversationDepth:
		return u.ConversationDepth, true
	case ColConversationCount:
		return u.ConversationCount, true
	case ColParentInteractions:
		return u.ParentInteractions, true
	case ColCommunityTypes:
		return u.CommunityTypes, true
	default:
		return nil, false
	}
}

func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
