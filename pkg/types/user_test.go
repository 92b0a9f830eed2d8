package types

import "testing"

func TestColumnCoversAllUserColumns(t *testing.T) {
	var u UserRecord
	for _, col := range UserColumns {
		if _, ok := u.Column(col); !ok {
			t.Errorf("Column(%q) not resolvable", col)
		}
	}
	if _, ok := u.Column("favorite_color"); ok {
		t.Error("Column(favorite_color) resolvable")
	}
}

func TestColumnNullFeatures(t *testing.T) {
	u := UserRecord{
		UserID:   "alice",
		Features: FeatureSet{Gender: strPtr("female")},
	}

	if v, _ := u.Column(AttrGender); v != "female" {
		t.Errorf("gender = %v, want female", v)
	}
	if v, _ := u.Column(AttrAgeRange); v != nil {
		t.Errorf("age_range = %v, want nil", v)
	}
	if v, _ := u.Column(AttrTreatmentSentiment); v != nil {
		t.Errorf("treatment_sentiment = %v, want nil", v)
	}
}
