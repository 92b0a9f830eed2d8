package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/recruit-engine/pkg/types"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func testRecord(id string) types.UserRecord {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return types.UserRecord{
		UserID:    id,
		Username:  id,
		CreatedAt: now,
		UpdatedAt: now,
		Features: types.FeatureSet{
			Gender:                  strPtr("F"),
			IllnessTypes:            []string{"fibromyalgia", "CFS"},
			ClinicalTrialsSentiment: floatPtr(0.5),
		},
		NumComments:        4,
		AvgScore:           2.5,
		ConversationDepth:  3,
		ConversationCount:  2,
		ParentInteractions: 3,
		CommunityTypes:     []string{"health"},
	}
}

func TestUpsertReplacesWholeRecord(t *testing.T) {
	s, _ := openTestStore(t)

	first := testRecord("alice")
	s.Upsert(first)

	second := testRecord("alice")
	second.Features = types.FeatureSet{Location: strPtr("Berlin")}
	second.NumComments = 1
	s.Upsert(second)

	got, ok := s.Get("alice")
	require.True(t, ok)
	assert.Nil(t, got.Features.Gender, "old feature survived replacement")
	assert.Equal(t, "Berlin", *got.Features.Location)
	assert.Equal(t, 1, got.NumComments)
	assert.Equal(t, 1, s.Len())
}

func TestPersistLoadRoundTrip(t *testing.T) {
	s, path := openTestStore(t)

	alice := testRecord("alice")
	bob := testRecord("bob")
	bob.Features = types.FeatureSet{}
	bob.CommunityTypes = nil
	s.Upsert(alice)
	s.Upsert(bob)

	require.NoError(t, s.Persist())
	s.Close()

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Load())

	require.Equal(t, 2, reopened.Len())

	got, ok := reopened.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "F", *got.Features.Gender)
	assert.Equal(t, []string{"fibromyalgia", "CFS"}, got.Features.IllnessTypes)
	assert.Equal(t, 0.5, *got.Features.ClinicalTrialsSentiment)
	assert.Equal(t, []string{"health"}, got.CommunityTypes)
	assert.True(t, got.CreatedAt.Equal(alice.CreatedAt))

	empty, ok := reopened.Get("bob")
	require.True(t, ok)
	assert.Nil(t, empty.Features.Gender)
	assert.Nil(t, empty.Features.IllnessTypes)
	assert.Nil(t, empty.Features.TreatmentSentiment)
}

func TestPersistReplacesDeletedRecords(t *testing.T) {
	s, path := openTestStore(t)

	s.Upsert(testRecord("alice"))
	s.Upsert(testRecord("bob"))
	require.NoError(t, s.Persist())

	// A fresh pass that only carries alice must drop bob on persist.
	delete(s.records, "bob")
	require.NoError(t, s.Persist())
	s.Close()

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Load())
	assert.Equal(t, 1, reopened.Len())
}

func TestLoadCorruptListColumn(t *testing.T) {
	s, path := openTestStore(t)
	s.Upsert(testRecord("alice"))
	require.NoError(t, s.Persist())

	// A corrupted list column must fail the load, not silently drop data.
	_, err := s.db.Exec(`UPDATE users SET illness_types = '{not json' WHERE user_id = 'alice'`)
	require.NoError(t, err)
	s.Close()

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	err = reopened.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illness_types")
	assert.Contains(t, err.Error(), "alice")
}

func TestOpenSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	s, err := Open(path)
	require.NoError(t, err)
	// Simulate drift from an older build.
	_, err = s.db.Exec(`ALTER TABLE users ADD COLUMN legacy_notes TEXT`)
	require.NoError(t, err)
	s.Close()

	_, err = Open(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch), "err = %v", err)
}

func TestAllSorted(t *testing.T) {
	s, _ := openTestStore(t)
	s.Upsert(testRecord("carol"))
	s.Upsert(testRecord("alice"))
	s.Upsert(testRecord("bob"))

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].UserID)
	assert.Equal(t, "bob", all[1].UserID)
	assert.Equal(t, "carol", all[2].UserID)
}
